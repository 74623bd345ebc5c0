package stats

import (
	"bytes"
	"fmt"

	"github.com/okian/brc/internal/domain/record"
)

// Fold ingests every line of chunk into a and returns the number of records
// ingested. A final line without a newline is still a line; the empty tail
// after a trailing newline is not.
//
// In relaxed mode empty lines and lines without a separator are skipped. In
// strict mode any such line, or a malformed value, stops the fold with an
// error carrying the byte offset of the line within chunk.
func Fold(a *AggregateMap, chunk []byte, mode record.Mode) (int, error) {
	if mode == record.ModeStrict {
		return foldStrict(a, chunk)
	}

	n := 0
	for len(chunk) > 0 {
		var line []byte
		line, chunk = nextLine(chunk)
		if len(line) == 0 {
			continue
		}
		if rec, ok := record.Parse(line); ok {
			a.Ingest(rec)
			n++
		}
	}
	return n, nil
}

func foldStrict(a *AggregateMap, chunk []byte) (int, error) {
	n, offset := 0, 0
	for len(chunk) > 0 {
		var line []byte
		line, chunk = nextLine(chunk)
		rec, err := record.ParseStrict(line)
		if err != nil {
			return n, &LineError{Offset: offset, Err: err}
		}
		a.Ingest(rec)
		n++
		offset += len(line) + 1
	}
	return n, nil
}

func nextLine(b []byte) (line, rest []byte) {
	i := bytes.IndexByte(b, record.Newline)
	if i < 0 {
		return b, nil
	}
	return b[:i], b[i+1:]
}

// LineError reports a rejected line and its byte offset.
type LineError struct {
	Offset int
	Err    error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line at byte %d: %v", e.Offset, e.Err)
}

func (e *LineError) Unwrap() error { return e.Err }
