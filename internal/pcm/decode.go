// Package pcm decodes raw s16le audio frames and derives amplitude values
// from them.
package pcm

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrMalformedFrame is returned when a byte slice cannot be interpreted as a
// whole number of interleaved 16-bit samples.
var ErrMalformedFrame = errors.New("malformed PCM frame")

// DecodeFrame interprets frame as interleaved signed 16-bit little-endian
// samples. The frame length must be a multiple of 2*channels so it splits
// into whole sample groups; anything else is rejected with ErrMalformedFrame.
// Byte order is fixed little-endian regardless of the host platform.
func DecodeFrame(frame []byte, channels int) ([]int16, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: invalid channel count %d", ErrMalformedFrame, channels)
	}
	if len(frame)%(2*channels) != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of %d", ErrMalformedFrame, len(frame), 2*channels)
	}

	samples := make([]int16, len(frame)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(frame[2*i:]))
	}
	return samples, nil
}

// EncodeSamples converts interleaved int16 samples to little-endian bytes,
// the inverse of DecodeFrame.
func EncodeSamples(samples []int16) []byte {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(s))
	}
	return buf
}
