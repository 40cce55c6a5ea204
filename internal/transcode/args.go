package transcode

import "strconv"

// reconnectArgs lets ffmpeg ride out transient drops of the remote media URL
// instead of ending the stream early.
var reconnectArgs = []string{
	"-reconnect", "1",
	"-reconnect_streamed", "1",
	"-reconnect_delay_max", "5",
}

// PlaybackArgs builds the ffmpeg invocation that transcodes mediaURL into a
// constant-bitrate stereo MP3 stream on stdout.
func PlaybackArgs(mediaURL string) []string {
	args := make([]string, 0, 16)
	args = append(args, reconnectArgs...)
	return append(args,
		"-i", mediaURL,
		"-vn",
		"-f", "mp3",
		"-acodec", "libmp3lame",
		"-ab", "192k",
		"-loglevel", "error",
		"pipe:1",
	)
}

// PCMArgs builds the ffmpeg invocation that decodes mediaURL into raw signed
// 16-bit little-endian PCM on stdout.
func PCMArgs(mediaURL string, sampleRate, channels int) []string {
	args := make([]string, 0, 20)
	args = append(args, reconnectArgs...)
	return append(args,
		"-i", mediaURL,
		"-vn",
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", strconv.Itoa(channels),
		"-loglevel", "error",
		"pipe:1",
	)
}
