// Package serialization provides the native .hyb format for saving and
// loading tensor values.
//
// The .hyb format is a small binary container holding exactly one value:
//
//	Format Structure:
//	  [4 bytes: Magic "HYBV"]
//	  [4 bytes: Version (uint32 LE)]
//	  [4 bytes: Flags (uint32 LE)]
//	  [8 bytes: Header Size (uint64 LE)]
//	  [32 bytes: SHA-256 of header and data]
//	  [Header: JSON with the type and the address of every subspace]
//	  [Cell data: little-endian float32 or float64, 64-byte aligned]
//
// Subspaces are stored in the order listed by the header, each as one dense
// block in row-major order of the indexed dimensions.
//
// Example usage:
//
//	if err := serialization.SaveFile("weights.hyb", v, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	v, header, err := serialization.LoadFile("weights.hyb")
//	if err != nil {
//	    log.Fatal(err)
//	}
package serialization
