package decimal

import (
	"errors"
	"fmt"
)

// Sentinel kinds for number parsing. All of them satisfy
// errors.Is(err, ErrMalformedNumber).
var (
	ErrMalformedNumber    = errors.New("malformed number")
	ErrEmpty              = fmt.Errorf("%w: empty input", ErrMalformedNumber)
	ErrInvalidCharacter   = fmt.Errorf("%w: invalid character", ErrMalformedNumber)
	ErrTrailingCharacters = fmt.Errorf("%w: trailing characters", ErrMalformedNumber)
	ErrTruncated          = fmt.Errorf("%w: truncated input", ErrMalformedNumber)
)
