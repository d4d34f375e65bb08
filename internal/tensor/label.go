package tensor

import (
	"hash/maphash"
	"unique"
)

// Label is an interned mapped-dimension coordinate. Labels compare and hash
// in constant time regardless of the length of the underlying string.
type Label struct {
	h unique.Handle[string]
}

// Intern returns the canonical Label for s.
func Intern(s string) Label {
	return Label{h: unique.Make(s)}
}

// InternAll interns every string in ss.
func InternAll(ss ...string) []Label {
	out := make([]Label, len(ss))
	for i, s := range ss {
		out[i] = Intern(s)
	}
	return out
}

// String returns the label text.
func (l Label) String() string {
	return l.h.Value()
}

// HashLabels hashes an address with the given seed.
func HashLabels(seed maphash.Seed, addr []Label) uint64 {
	var h maphash.Hash
	h.SetSeed(seed)
	for _, l := range addr {
		maphash.WriteComparable(&h, l)
	}
	return h.Sum64()
}

// LabelsString renders an address as "{a,b}" for logs and test failures.
func LabelsString(addr []Label) string {
	buf := make([]byte, 0, 2+8*len(addr))
	buf = append(buf, '{')
	for i, l := range addr {
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = append(buf, l.String()...)
	}
	buf = append(buf, '}')
	return string(buf)
}
