package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/born-ml/hybrid/internal/tensor"
)

const hybridVersion = "0.1.0" // Current engine version

// WriteValue writes v in .hyb format.
func WriteValue(w io.Writer, v *tensor.Value, metadata map[string]string) error {
	labels := make([][]string, v.NumSubspaces())
	v.Index().Each(func(addr []tensor.Label, subspace int) {
		l := make([]string, len(addr))
		for i, a := range addr {
			l[i] = a.String()
		}
		labels[subspace] = l
	})

	header := Header{
		FormatVersion: FormatVersion,
		HybridVersion: hybridVersion,
		CreatedAt:     time.Now().UTC(),
		Type:          v.Type().String(),
		Labels:        labels,
		Metadata:      metadata,
	}
	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	var data bytes.Buffer
	switch v.CellType() {
	case tensor.Float32:
		err = binary.Write(&data, binary.LittleEndian, tensor.Cells[float32](v))
	default:
		err = binary.Write(&data, binary.LittleEndian, tensor.Cells[float64](v))
	}
	if err != nil {
		return fmt.Errorf("failed to encode cells: %w", err)
	}

	flags := uint32(0)
	if len(metadata) > 0 {
		flags |= FlagHasMetadata
	}
	checksum := ComputeChecksum(headerJSON, data.Bytes())

	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(MagicBytes); err != nil {
		return fmt.Errorf("failed to write magic bytes: %w", err)
	}
	fixed := []any{uint32(FormatVersion), flags, uint64(len(headerJSON)), checksum}
	for _, f := range fixed {
		if err := binary.Write(bw, binary.LittleEndian, f); err != nil {
			return fmt.Errorf("failed to write fixed header: %w", err)
		}
	}
	if _, err := bw.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	if _, err := bw.Write(make([]byte, padding(int64(len(headerJSON))))); err != nil {
		return fmt.Errorf("failed to write padding: %w", err)
	}
	if _, err := bw.Write(data.Bytes()); err != nil {
		return fmt.Errorf("failed to write cell data: %w", err)
	}
	return bw.Flush()
}

// SaveFile writes v to a new .hyb file at path.
func SaveFile(path string, v *tensor.Value, metadata map[string]string) (err error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for saving
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
	}()
	return WriteValue(f, v, metadata)
}
