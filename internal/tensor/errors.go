package tensor

import "errors"

// Common errors.
var (
	ErrInvalidDimension   = errors.New("invalid dimension")
	ErrDuplicateDimension = errors.New("duplicate dimension name")
	ErrIncompatibleTypes  = errors.New("incompatible tensor types")
	ErrUnknownDimension   = errors.New("unknown dimension")
	ErrParse              = errors.New("malformed type spec")
)
