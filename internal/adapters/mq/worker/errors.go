package worker

import "errors"

// Sentinel kinds for worker errors.
var (
	ErrFold = errors.New("fold failed")
)
