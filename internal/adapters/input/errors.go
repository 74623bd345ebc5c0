package input

import "errors"

var (
	// ErrOpen is returned when the input file cannot be opened.
	ErrOpen = errors.New("open input")
	// ErrMap is returned when the input file cannot be mapped or unmapped.
	ErrMap = errors.New("map input")
)
