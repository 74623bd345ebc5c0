// Package report renders a finalized summary in the canonical output form:
//
//	{Berlin=-3.5/-3.5/-3.5, Hamburg=12.0/13.0/14.0}
package report

import (
	"fmt"
	"io"

	"github.com/okian/brc/internal/domain/stats"
)

// bytesPerEntry is a rough guess used to presize the output buffer.
const bytesPerEntry = 32

// Append appends the rendered summary, without a trailing newline, to dst.
func Append(dst []byte, s stats.Summary) []byte {
	dst = append(dst, '{')
	for i, e := range s {
		if i > 0 {
			dst = append(dst, ", "...)
		}
		dst = append(dst, e.Name...)
		dst = append(dst, '=')
		dst = e.Stats.AppendTo(dst)
	}
	return append(dst, '}')
}

// Render returns the rendered summary followed by a newline.
func Render(s stats.Summary) []byte {
	buf := make([]byte, 0, 2+len(s)*bytesPerEntry)
	return append(Append(buf, s), '\n')
}

// Write renders s to w in a single write.
func Write(w io.Writer, s stats.Summary) error {
	if _, err := w.Write(Render(s)); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}
