package serialization

import (
	"errors"
	"fmt"
)

// Common errors.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch: file may be corrupted")
	ErrOutOfBounds        = errors.New("cell data does not match header")
	ErrTooManySubspaces   = errors.New("too many subspaces in file")
	ErrHeaderTooLarge     = errors.New("header exceeds maximum size")
	ErrInvalidMagic       = errors.New("invalid magic bytes")
	ErrUnsupportedVersion = errors.New("unsupported format version")
)

// ValidationError provides detailed information about validation failures.
type ValidationError struct {
	Type     string // Type of error (e.g., "label_arity", "duplicate_subspace")
	Subspace string // Rendered address of the subspace involved, if any
	Details  string // Additional details
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Subspace != "" {
		return fmt.Sprintf("%s: subspace %s: %s", e.Type, e.Subspace, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Details)
}
