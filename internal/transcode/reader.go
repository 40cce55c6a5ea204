package transcode

import (
	"errors"
	"io"
)

// ChunkReader pulls byte chunks of at most chunkBytes from a transcoder's
// stdout. The sequence is lazy, finite and non-restartable; chunk boundaries
// carry no semantic meaning.
type ChunkReader struct {
	r   io.Reader
	buf []byte
}

func NewChunkReader(r io.Reader, chunkBytes int) *ChunkReader {
	return &ChunkReader{r: r, buf: make([]byte, chunkBytes)}
}

// Next returns the next non-empty chunk, io.EOF once the stream is
// exhausted, or the underlying read error.
func (c *ChunkReader) Next() ([]byte, error) {
	for {
		n, err := c.r.Read(c.buf)
		if n > 0 {
			chunk := make([]byte, n)
			copy(chunk, c.buf[:n])
			return chunk, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// FrameReader pulls fixed-size PCM frames from a transcoder's stdout. The
// frame size is chosen to exactly equal one decodable frame, so every read
// yields a complete unit for the decoder.
type FrameReader struct {
	r     io.Reader
	frame []byte
}

func NewFrameReader(r io.Reader, bytesPerFrame int) *FrameReader {
	return &FrameReader{r: r, frame: make([]byte, bytesPerFrame)}
}

// Next returns one full frame, or the shorter trailing frame right before
// end-of-stream. io.EOF signals a clean end with no bytes left.
func (f *FrameReader) Next() ([]byte, error) {
	n, err := io.ReadFull(f.r, f.frame)
	switch {
	case err == nil, errors.Is(err, io.ErrUnexpectedEOF):
		frame := make([]byte, n)
		copy(frame, f.frame[:n])
		return frame, nil
	default:
		// io.ReadFull returns bare io.EOF only when nothing was read.
		return nil, err
	}
}
