package generator

import "errors"

// Sentinel errors for generation.
var (
	ErrInvalidConfig = errors.New("invalid generator config")
	ErrGenerate      = errors.New("generate measurements")
)
