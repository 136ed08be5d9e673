// Package chunk splits byte streams into fixed-size blocks.
package chunk

import (
	"errors"
	"io"
)

// DefaultSize is the nominal chunk size, 1 MiB.
const DefaultSize = 1024 * 1024

// Reader yields consecutive chunks of a stream. Every chunk is size bytes long
// except possibly the last one. A stream of zero bytes yields no chunks.
type Reader struct {
	r    io.Reader
	size int
	read int64
	done bool
}

// NewReader returns a Reader over r. A non-positive size selects DefaultSize.
func NewReader(r io.Reader, size int) *Reader {
	if size <= 0 {
		size = DefaultSize
	}
	return &Reader{r: r, size: size}
}

// Next returns the next chunk, or io.EOF once the stream is exhausted.
// The returned slice is owned by the caller.
func (c *Reader) Next() ([]byte, error) {
	if c.done {
		return nil, io.EOF
	}
	buf := make([]byte, c.size)
	n, err := io.ReadFull(c.r, buf)
	c.read += int64(n)
	switch {
	case errors.Is(err, io.EOF):
		c.done = true
		return nil, io.EOF
	case errors.Is(err, io.ErrUnexpectedEOF):
		c.done = true
		return buf[:n:n], nil
	case err != nil:
		return nil, err
	}
	return buf, nil
}

// BytesRead is the number of stream bytes consumed so far.
func (c *Reader) BytesRead() int64 { return c.read }

func (c *Reader) Size() int { return c.size }

// Split reads r to the end and returns all of its chunks in order.
func Split(r io.Reader, size int) ([][]byte, error) {
	cr := NewReader(r, size)
	var chunks [][]byte
	for {
		b, err := cr.Next()
		if errors.Is(err, io.EOF) {
			return chunks, nil
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, b)
	}
}

// Count is the number of chunks a stream of n bytes splits into.
func Count(n int64, size int) int64 {
	if size <= 0 {
		size = DefaultSize
	}
	if n <= 0 {
		return 0
	}
	return (n + int64(size) - 1) / int64(size)
}
