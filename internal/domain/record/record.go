// Package record splits one input line of the form name;value into a
// borrowed name and a decimal value.
package record

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/okian/brc/internal/domain/decimal"
)

// Input grammar bytes.
const (
	Separator = ';'
	Newline   = '\n'
)

// Record is a view over one line. Name aliases the input buffer and must be
// copied before the buffer goes away.
type Record struct {
	Name  []byte
	Value decimal.Tenths
}

// Mode selects how lines are parsed for a whole run.
type Mode uint8

const (
	// ModeRelaxed trusts the input: numbers are not validated and lines
	// without a separator are skipped.
	ModeRelaxed Mode = iota
	// ModeStrict validates every line and fails on the first bad one.
	ModeStrict
)

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "relaxed":
		return ModeRelaxed, nil
	case "strict":
		return ModeStrict, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeRelaxed:
		return "relaxed"
	case ModeStrict:
		return "strict"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Parse splits line at the first separator. The separator stays in front of
// the numeric part, where decimal.Parse ignores it. ok is false only when
// the line has no separator at all.
func Parse(line []byte) (rec Record, ok bool) {
	i := bytes.IndexByte(line, Separator)
	if i < 0 {
		return Record{}, false
	}
	return Record{Name: line[:i], Value: decimal.Parse(line[i:])}, true
}

// ParseStrict is the validating counterpart of Parse. Every error wraps
// ErrMalformedRecord and quotes the offending line.
func ParseStrict(line []byte) (Record, error) {
	if len(line) == 0 {
		return Record{}, ErrEmptyLine
	}
	i := bytes.IndexByte(line, Separator)
	if i < 0 {
		return Record{}, fmt.Errorf("%w: %q", ErrMissingSeparator, line)
	}
	if i == 0 {
		return Record{}, fmt.Errorf("%w: %q", ErrEmptyName, line)
	}
	v, err := decimal.ParseStrict(line[i+1:])
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q: %w", ErrMalformedRecord, line, err)
	}
	return Record{Name: line[:i], Value: v}, nil
}
