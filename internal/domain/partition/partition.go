// Package partition cuts an input buffer into line-aligned chunks that can be
// folded independently.
package partition

import (
	"bytes"

	"github.com/okian/brc/internal/domain/record"
)

// DefaultChunkSize is the target chunk length in bytes.
const DefaultChunkSize = 8 << 20

// Chunk is a line-aligned window of the input. Data aliases the input.
type Chunk struct {
	Offset int
	Data   []byte
}

// Split cuts buf roughly every size bytes. Each cut is moved forward to just
// past the next newline, so every chunk except possibly the last ends with a
// newline and no line is split. The chunks are disjoint and in order; their
// concatenation is buf.
func Split(buf []byte, size int) []Chunk {
	if len(buf) == 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultChunkSize
	}

	chunks := make([]Chunk, 0, len(buf)/size+1)
	start := 0
	for start < len(buf) {
		end := start + size
		if end >= len(buf) {
			end = len(buf)
		} else {
			end = lineEnd(buf, end-1)
		}
		chunks = append(chunks, Chunk{Offset: start, Data: buf[start:end]})
		start = end
	}
	return chunks
}

// SplitN cuts buf into at most n chunks of about equal size.
func SplitN(buf []byte, n int) []Chunk {
	if n <= 1 {
		return Split(buf, len(buf))
	}
	size := (len(buf) + n - 1) / n
	return Split(buf, max(size, 1))
}

// lineEnd returns the index just past the first newline at or after i, or
// len(buf) when there is none.
func lineEnd(buf []byte, i int) int {
	j := bytes.IndexByte(buf[i:], record.Newline)
	if j < 0 {
		return len(buf)
	}
	return i + j + 1
}
