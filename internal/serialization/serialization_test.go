package serialization

import (
	"bytes"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"

	"github.com/born-ml/hybrid/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sparseValue(t *testing.T) *tensor.Value {
	t.Helper()
	v, err := tensor.FromSubspaces(tensor.MustParseType("tensor<float>(k{},q{},x[3])"),
		tensor.Subspace{Labels: []string{"a", "p"}, Cells: []float64{1, 2, 3}},
		tensor.Subspace{Labels: []string{"b", "p"}, Cells: []float64{4, 5, 6}},
		tensor.Subspace{Labels: []string{"a", "r,s"}, Cells: []float64{7, 8, 9}},
	)
	require.NoError(t, err)
	return v
}

func encode(t *testing.T, v *tensor.Value, meta map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteValue(&buf, v, meta))
	return buf.Bytes()
}

func TestWriteRead(t *testing.T) {
	dense, err := tensor.DenseValue(tensor.MustParseType("tensor(x[2],y[2])"), []float64{1, -2, 3.5, 4})
	require.NoError(t, err)
	empty, err := tensor.FromSubspaces(tensor.MustParseType("tensor(k{})"))
	require.NoError(t, err)

	tests := []struct {
		name  string
		value *tensor.Value
	}{
		{"sparse float", sparseValue(t)},
		{"dense double", dense},
		{"scalar", tensor.ScalarValue(42)},
		{"empty sparse", empty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := encode(t, tt.value, map[string]string{"source": "test"})
			got, header, err := ReadValue(bytes.NewReader(data), ReaderOptions{})
			require.NoError(t, err)

			assert.True(t, tt.value.Type().Equal(got.Type()))
			assert.Equal(t, tt.value.CellType(), got.CellType())
			assert.Equal(t, tt.value.Blocks(), got.Blocks())
			assert.Equal(t, FormatVersion, header.FormatVersion)
			assert.Equal(t, "test", header.Metadata["source"])
			assert.Equal(t, tt.value.Type().String(), header.Type)
		})
	}
}

func TestWriteValue_Layout(t *testing.T) {
	data := encode(t, sparseValue(t), nil)
	assert.Equal(t, MagicBytes, string(data[:4]))
	assert.Equal(t, uint32(FormatVersion), binary.LittleEndian.Uint32(data[4:8]))
	assert.Equal(t, uint32(0), binary.LittleEndian.Uint32(data[8:12]), "no metadata flag")

	headerSize := int64(binary.LittleEndian.Uint64(data[12:20]))
	dataStart := FixedHeaderSize + headerSize + padding(headerSize)
	assert.Zero(t, dataStart%HeaderAlignment)
	assert.Equal(t, int64(3*3*4), int64(len(data))-dataStart)

	flagged := encode(t, sparseValue(t), map[string]string{"k": "v"})
	assert.Equal(t, FlagHasMetadata, binary.LittleEndian.Uint32(flagged[8:12]))
}

func TestReadValue_Corruption(t *testing.T) {
	good := encode(t, sparseValue(t), nil)

	t.Run("checksum", func(t *testing.T) {
		data := bytes.Clone(good)
		data[len(data)-1] ^= 0xff
		_, _, err := ReadValue(bytes.NewReader(data), ReaderOptions{})
		assert.ErrorIs(t, err, ErrChecksumMismatch)

		_, _, err = ReadValue(bytes.NewReader(data), ReaderOptions{SkipChecksumValidation: true})
		assert.NoError(t, err)
	})

	t.Run("magic", func(t *testing.T) {
		data := bytes.Clone(good)
		copy(data, "BORN")
		_, _, err := ReadValue(bytes.NewReader(data), ReaderOptions{})
		assert.ErrorIs(t, err, ErrInvalidMagic)
	})

	t.Run("version", func(t *testing.T) {
		data := bytes.Clone(good)
		binary.LittleEndian.PutUint32(data[4:8], 9)
		_, _, err := ReadValue(bytes.NewReader(data), ReaderOptions{})
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("header size", func(t *testing.T) {
		data := bytes.Clone(good)
		binary.LittleEndian.PutUint64(data[12:20], MaxHeaderSize+1)
		_, _, err := ReadValue(bytes.NewReader(data), ReaderOptions{})
		assert.ErrorIs(t, err, ErrHeaderTooLarge)
	})

	t.Run("truncated", func(t *testing.T) {
		_, _, err := ReadValue(bytes.NewReader(good[:len(good)-4]), ReaderOptions{})
		assert.ErrorIs(t, err, ErrOutOfBounds)

		_, _, err = ReadValue(bytes.NewReader(good[:10]), ReaderOptions{})
		assert.Error(t, err)
	})
}

func TestValidateHeader(t *testing.T) {
	tests := []struct {
		name   string
		header Header
		size   int64
		kind   string
	}{
		{"bad type", Header{Type: "matrix"}, 0, "invalid_type"},
		{"arity", Header{Type: "tensor(k{})", Labels: [][]string{{"a", "b"}}}, 8, "label_arity"},
		{"duplicate", Header{Type: "tensor(k{})", Labels: [][]string{{"a"}, {"a"}}}, 16, "duplicate_subspace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateHeader(&tt.header, tt.size)
			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "got %v", err)
			assert.Equal(t, tt.kind, verr.Type)
		})
	}

	// Labels that only collide once joined with commas are distinct.
	h := Header{Type: "tensor(k{},q{})", Labels: [][]string{{"a,b", "c"}, {"a", "b,c"}}}
	typ, err := ValidateHeader(&h, 16)
	require.NoError(t, err)
	assert.Equal(t, 2, typ.NumMappedDimensions())
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "value.hyb")
	v := sparseValue(t)
	require.NoError(t, SaveFile(path, v, nil))

	got, header, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, v.Blocks(), got.Blocks())
	assert.Len(t, header.Labels, 3)

	_, _, err = LoadFile(filepath.Join(t.TempDir(), "missing.hyb"))
	assert.Error(t, err)
}
