package serialization

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/born-ml/hybrid/internal/tensor"
)

// ReaderOptions configures ReadValue.
type ReaderOptions struct {
	SkipChecksumValidation bool // Skip checksum validation (faster but less safe)
}

// ReadValue reads one value in .hyb format.
func ReadValue(r io.Reader, opts ReaderOptions) (*tensor.Value, *Header, error) {
	br := bufio.NewReader(r)

	magic := make([]byte, len(MagicBytes))
	if _, err := io.ReadFull(br, magic); err != nil {
		return nil, nil, fmt.Errorf("failed to read magic bytes: %w", err)
	}
	if string(magic) != MagicBytes {
		return nil, nil, ErrInvalidMagic
	}

	var (
		version, flags uint32
		headerSize     uint64
		checksum       [ChecksumSize]byte
	)
	if err := binary.Read(br, binary.LittleEndian, &version); err != nil {
		return nil, nil, fmt.Errorf("failed to read version: %w", err)
	}
	if version != FormatVersion {
		return nil, nil, fmt.Errorf("%w: got %d, expected %d", ErrUnsupportedVersion, version, FormatVersion)
	}
	for _, f := range []any{&flags, &headerSize, &checksum} {
		if err := binary.Read(br, binary.LittleEndian, f); err != nil {
			return nil, nil, fmt.Errorf("failed to read fixed header: %w", err)
		}
	}
	if headerSize > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: %d bytes, max %d", ErrHeaderTooLarge, headerSize, MaxHeaderSize)
	}

	headerJSON := make([]byte, headerSize)
	if _, err := io.ReadFull(br, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("failed to read header: %w", err)
	}
	var header Header
	if err := json.Unmarshal(headerJSON, &header); err != nil {
		return nil, nil, fmt.Errorf("failed to parse header: %w", err)
	}

	//nolint:gosec // G115: headerSize is bounded by MaxHeaderSize
	if _, err := br.Discard(int(padding(int64(headerSize)))); err != nil {
		return nil, nil, fmt.Errorf("failed to skip padding: %w", err)
	}
	data, err := io.ReadAll(br)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read cell data: %w", err)
	}

	t, err := ValidateHeader(&header, int64(len(data)))
	if err != nil {
		return nil, nil, fmt.Errorf("validation failed: %w", err)
	}
	if !opts.SkipChecksumValidation {
		if err := ValidateChecksum(ComputeChecksum(headerJSON, data), checksum); err != nil {
			return nil, nil, err
		}
	}

	index := tensor.NewMapIndex(t.NumMappedDimensions(), len(header.Labels))
	for _, addr := range header.Labels {
		index.Insert(tensor.InternAll(addr...))
	}

	var cells any
	n := len(header.Labels) * t.DenseSubspaceSize()
	switch t.CellType() {
	case tensor.Float32:
		c := make([]float32, n)
		err = binary.Read(bytes.NewReader(data), binary.LittleEndian, c)
		cells = c
	default:
		c := make([]float64, n)
		err = binary.Read(bytes.NewReader(data), binary.LittleEndian, c)
		cells = c
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode cells: %w", err)
	}

	v, err := tensor.NewValue(t, index, cells)
	if err != nil {
		return nil, nil, err
	}
	return v, &header, nil
}

// LoadFile reads a .hyb file with checksum validation.
func LoadFile(path string) (*tensor.Value, *Header, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for loading
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return ReadValue(f, ReaderOptions{})
}
