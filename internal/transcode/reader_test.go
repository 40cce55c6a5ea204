package transcode_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Blackmvmba88/music/internal/transcode"
)

func TestChunkReaderBoundedChunks(t *testing.T) {
	src := bytes.Repeat([]byte{0xAB}, 10)
	r := transcode.NewChunkReader(bytes.NewReader(src), 4)

	var got []byte
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		assert.LessOrEqual(t, len(chunk), 4)
		assert.NotEmpty(t, chunk)
		got = append(got, chunk...)
	}
	assert.Equal(t, src, got)
}

func TestChunkReaderEmptySource(t *testing.T) {
	r := transcode.NewChunkReader(bytes.NewReader(nil), 8)
	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestChunkReaderPreservesOrder(t *testing.T) {
	src := make([]byte, 1000)
	for i := range src {
		src[i] = byte(i)
	}
	r := transcode.NewChunkReader(bytes.NewReader(src), 64)

	var got []byte
	for {
		chunk, err := r.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, chunk...)
	}
	assert.Equal(t, src, got)
}

func TestFrameReaderExactFrames(t *testing.T) {
	src := make([]byte, 24)
	r := transcode.NewFrameReader(bytes.NewReader(src), 8)

	for i := 0; i < 3; i++ {
		frame, err := r.Next()
		require.NoError(t, err)
		assert.Len(t, frame, 8)
	}

	_, err := r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestFrameReaderTrailingPartialFrame(t *testing.T) {
	src := make([]byte, 10)
	r := transcode.NewFrameReader(bytes.NewReader(src), 8)

	frame, err := r.Next()
	require.NoError(t, err)
	assert.Len(t, frame, 8)

	frame, err = r.Next()
	require.NoError(t, err)
	assert.Len(t, frame, 2)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

func TestPlaybackArgsShape(t *testing.T) {
	args := transcode.PlaybackArgs("http://example.com/media")
	assert.Contains(t, args, "http://example.com/media")
	assert.Contains(t, args, "mp3")
	assert.Contains(t, args, "libmp3lame")
	assert.Equal(t, "pipe:1", args[len(args)-1])
}

func TestPCMArgsShape(t *testing.T) {
	args := transcode.PCMArgs("http://example.com/media", 44100, 2)
	assert.Contains(t, args, "s16le")
	assert.Contains(t, args, "44100")
	assert.Contains(t, args, "pcm_s16le")
	assert.Equal(t, "pipe:1", args[len(args)-1])
}
