package serialization

import (
	"fmt"
	"strings"

	"github.com/born-ml/hybrid/internal/tensor"
)

// Validation limits for resource protection.
const (
	MaxHeaderSize   = 100 * 1024 * 1024 // 100MB - maximum header size
	MaxSubspaces    = 10_000_000        // Maximum number of subspaces in a file
	MaxLabelLen     = 4096              // Maximum label length
	MaxMetadataSize = 1024 * 1024       // 1MB - maximum metadata size
)

// ValidateHeader checks a parsed header against the size of the data
// section and returns the value type it declares.
func ValidateHeader(h *Header, dataSize int64) (tensor.Type, error) {
	t, err := tensor.ParseType(h.Type)
	if err != nil {
		return tensor.Type{}, &ValidationError{Type: "invalid_type", Details: err.Error()}
	}
	if len(h.Labels) > MaxSubspaces {
		return tensor.Type{}, fmt.Errorf("%w: got %d, max %d", ErrTooManySubspaces, len(h.Labels), MaxSubspaces)
	}

	metaSize := 0
	for k, v := range h.Metadata {
		metaSize += len(k) + len(v)
	}
	if metaSize > MaxMetadataSize {
		return tensor.Type{}, &ValidationError{
			Type:    "metadata_too_large",
			Details: fmt.Sprintf("got %d bytes, max %d", metaSize, MaxMetadataSize),
		}
	}

	numMapped := t.NumMappedDimensions()
	seen := make(map[string]struct{}, len(h.Labels))
	for _, addr := range h.Labels {
		rendered := tensor.LabelsString(tensor.InternAll(addr...))
		if len(addr) != numMapped {
			return tensor.Type{}, &ValidationError{
				Type:     "label_arity",
				Subspace: rendered,
				Details:  fmt.Sprintf("has %d labels, type %s needs %d", len(addr), t, numMapped),
			}
		}
		for _, l := range addr {
			if len(l) > MaxLabelLen {
				return tensor.Type{}, &ValidationError{
					Type:     "label_too_long",
					Subspace: rendered,
					Details:  fmt.Sprintf("label length %d, max %d", len(l), MaxLabelLen),
				}
			}
		}
		key := strings.Join(addr, "\x00")
		if _, dup := seen[key]; dup {
			return tensor.Type{}, &ValidationError{
				Type:     "duplicate_subspace",
				Subspace: rendered,
				Details:  "address listed more than once",
			}
		}
		seen[key] = struct{}{}
	}

	want := int64(len(h.Labels)) * int64(t.DenseSubspaceSize()) * int64(t.CellType().Size())
	if want != dataSize {
		return tensor.Type{}, fmt.Errorf("%w: %d subspaces of %s need %d bytes, data section has %d",
			ErrOutOfBounds, len(h.Labels), t, want, dataSize)
	}
	return t, nil
}
