package record

import (
	"errors"
	"fmt"
)

// Sentinel kinds for record parsing. Line-level failures satisfy
// errors.Is(err, ErrMalformedRecord).
var (
	ErrMalformedRecord  = errors.New("malformed record")
	ErrEmptyLine        = fmt.Errorf("%w: empty line", ErrMalformedRecord)
	ErrMissingSeparator = fmt.Errorf("%w: missing separator", ErrMalformedRecord)
	ErrEmptyName        = fmt.Errorf("%w: empty name", ErrMalformedRecord)

	ErrUnknownMode = errors.New("unknown parse mode")
)
