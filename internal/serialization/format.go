package serialization

import (
	"time"
)

// Format constants.
const (
	MagicBytes      = "HYBV"
	FormatVersion   = 1
	HeaderAlignment = 64 // Cell data starts on a 64-byte boundary
	ChecksumSize    = 32 // SHA-256 checksum size
	FixedHeaderSize = 4 + 4 + 4 + 8 + ChecksumSize
)

// Flags for the .hyb format.
const (
	FlagHasMetadata uint32 = 1 << 0 // bit 0: custom metadata included
)

// Header represents the JSON header in a .hyb file.
type Header struct {
	FormatVersion int               `json:"format_version"`     // Version of the .hyb format
	HybridVersion string            `json:"hybrid_version"`     // Version of the engine that wrote the file
	CreatedAt     time.Time         `json:"created_at"`         // When the file was created
	Type          string            `json:"type"`               // Tensor type, e.g. "tensor<float>(k{},x[3])"
	Labels        [][]string        `json:"labels"`             // Address of each stored subspace
	Metadata      map[string]string `json:"metadata,omitempty"` // Custom metadata
}

// padding returns the number of zero bytes written after a header of the
// given size so that cell data is aligned.
func padding(headerSize int64) int64 {
	pos := int64(FixedHeaderSize) + headerSize
	return (HeaderAlignment - pos%HeaderAlignment) % HeaderAlignment
}
