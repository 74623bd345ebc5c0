// Package decimal implements a fixed-point temperature value with exactly one
// fractional digit, stored as an integer number of tenths.
//
// All arithmetic the aggregation engine needs is exact integer arithmetic, so
// sums are independent of the order in which values are accumulated.
package decimal

import (
	"math"
	"strconv"
)

// Tenths is a signed decimal with one fractional digit, e.g. -12.3 is -123.
//
// The running sum of a station is also a Tenths, so the representable range
// (about ±9.2e17 tenths) bounds the total of all readings of one station.
type Tenths int64

// Zero is the additive identity.
const Zero Tenths = 0

// Parse decodes a value that is already known to match -?[0-9]+\.[0-9].
// Any byte that is neither '-' nor a digit is skipped, which lets callers
// hand over the record separator together with the number. The result for
// input outside the grammar is unspecified.
func Parse(b []byte) Tenths {
	var t Tenths
	negative := false
	for _, c := range b {
		switch {
		case c == '-':
			negative = true
		case c >= '0' && c <= '9':
			t = t*10 + Tenths(c-'0')
		}
	}
	if negative {
		return -t
	}
	return t
}

type parseState uint8

const (
	stateSign parseState = iota
	stateDigit
	stateFrac
	stateDone
)

// ParseStrict decodes b and rejects anything outside -?[0-9]+\.[0-9].
func ParseStrict(b []byte) (Tenths, error) {
	if len(b) == 0 {
		return 0, ErrEmpty
	}

	var t Tenths
	negative, intDigits := false, false
	state := stateSign
	for _, c := range b {
		switch state {
		case stateSign:
			switch {
			case c == '-':
				negative = true
				state = stateDigit
			case isDigit(c):
				t = Tenths(c - '0')
				intDigits = true
				state = stateDigit
			default:
				return 0, ErrInvalidCharacter
			}
		case stateDigit:
			switch {
			case isDigit(c):
				t = t*10 + Tenths(c-'0')
				intDigits = true
			case c == '.' && intDigits:
				state = stateFrac
			default:
				return 0, ErrInvalidCharacter
			}
		case stateFrac:
			if !isDigit(c) {
				return 0, ErrInvalidCharacter
			}
			t = t*10 + Tenths(c-'0')
			state = stateDone
		case stateDone:
			return 0, ErrTrailingCharacters
		}
	}

	if state != stateDone {
		return 0, ErrTruncated
	}
	if negative {
		t = -t
	}
	return t, nil
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

// Add returns t+o.
func (t Tenths) Add(o Tenths) Tenths { return t + o }

// Div divides t by a positive count and rounds to the nearest tenth, halves
// away from zero. n must not be zero.
func (t Tenths) Div(n uint64) Tenths {
	if n == 0 {
		panic("decimal: division by zero count")
	}
	return Tenths(math.Round(float64(t) / float64(n)))
}

// Compare returns -1, 0 or +1.
func (t Tenths) Compare(o Tenths) int {
	switch {
	case t < o:
		return -1
	case t > o:
		return 1
	default:
		return 0
	}
}

// Float64 returns the value in display units.
func (t Tenths) Float64() float64 { return float64(t) / 10 }

// String renders the value with exactly one fractional digit.
func (t Tenths) String() string {
	return string(t.AppendTo(make([]byte, 0, 8)))
}

// AppendTo appends the rendered value to dst.
func (t Tenths) AppendTo(dst []byte) []byte {
	u := uint64(t)
	if t < 0 {
		dst = append(dst, '-')
		u = uint64(-t)
	}
	dst = strconv.AppendUint(dst, u/10, 10)
	return append(dst, '.', byte('0'+u%10))
}
