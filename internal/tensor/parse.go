package tensor

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseType parses a type spec such as "tensor<float>(x{},y[3])".
//
// Only the subset the engine needs is accepted: an optional cell type of
// float or double, and a list of name{} or name[size] dimensions. The bare
// spec "double" denotes the scalar type.
func ParseType(spec string) (Type, error) {
	s := strings.TrimSpace(spec)
	if s == "double" {
		return NewType(Float64)
	}

	rest, ok := strings.CutPrefix(s, "tensor")
	if !ok {
		return Type{}, fmt.Errorf("%w: %q must start with tensor", ErrParse, spec)
	}

	cellType := Float64
	if strings.HasPrefix(rest, "<") {
		end := strings.IndexByte(rest, '>')
		if end < 0 {
			return Type{}, fmt.Errorf("%w: %q has unterminated cell type", ErrParse, spec)
		}
		switch rest[1:end] {
		case "float":
			cellType = Float32
		case "double":
			cellType = Float64
		default:
			return Type{}, fmt.Errorf("%w: %q has unsupported cell type %q", ErrParse, spec, rest[1:end])
		}
		rest = rest[end+1:]
	}

	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return Type{}, fmt.Errorf("%w: %q is missing dimension list", ErrParse, spec)
	}
	body := strings.TrimSpace(rest[1 : len(rest)-1])
	if body == "" {
		return NewType(cellType)
	}

	var dims []Dimension
	for _, item := range strings.Split(body, ",") {
		d, err := parseDimension(strings.TrimSpace(item))
		if err != nil {
			return Type{}, fmt.Errorf("%w: %q: %v", ErrParse, spec, err)
		}
		dims = append(dims, d)
	}
	return NewType(cellType, dims...)
}

// MustParseType is like ParseType but panics on error.
func MustParseType(spec string) Type {
	t, err := ParseType(spec)
	if err != nil {
		panic(fmt.Sprintf("tensor: %v", err))
	}
	return t
}

func parseDimension(item string) (Dimension, error) {
	if name, ok := strings.CutSuffix(item, "{}"); ok {
		if !validName(name) {
			return Dimension{}, fmt.Errorf("bad dimension name %q", name)
		}
		return MappedDim(name), nil
	}
	open := strings.IndexByte(item, '[')
	if open < 0 || !strings.HasSuffix(item, "]") {
		return Dimension{}, fmt.Errorf("bad dimension %q", item)
	}
	name := item[:open]
	if !validName(name) {
		return Dimension{}, fmt.Errorf("bad dimension name %q", name)
	}
	size, err := strconv.Atoi(item[open+1 : len(item)-1])
	if err != nil || size < 0 {
		return Dimension{}, fmt.Errorf("bad size in %q", item)
	}
	return IndexedDim(name, size), nil
}

func validName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
