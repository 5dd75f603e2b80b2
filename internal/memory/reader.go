// Package memory provides read-only access to another process's address
// space: attaching by pid or executable name, enumerating loaded modules,
// reading typed values at absolute addresses, and scanning module images
// for byte signatures.
//
// Everything above this package consumes the narrow Reader interface, so
// higher layers can be exercised against synthetic memory in tests.
package memory

import (
	"encoding/binary"
	"fmt"
)

// Reader reads raw bytes from an absolute address in the target process.
// A failed read means the range was not readable (unmapped, protected, or
// the process is gone); it never means "the bytes were semantically wrong".
type Reader interface {
	// ReadAt fills buf with len(buf) bytes starting at addr. Partial reads
	// are errors.
	ReadAt(buf []byte, addr uint64) error
}

// The target is x86-64; all multi-byte values are little-endian.
var byteOrder = binary.LittleEndian

// ReadUint16 reads a 2-byte unsigned integer at addr.
func ReadUint16(r Reader, addr uint64) (uint16, error) {
	var buf [2]byte
	if err := r.ReadAt(buf[:], addr); err != nil {
		return 0, err
	}
	return byteOrder.Uint16(buf[:]), nil
}

// ReadUint32 reads a 4-byte unsigned integer at addr.
func ReadUint32(r Reader, addr uint64) (uint32, error) {
	var buf [4]byte
	if err := r.ReadAt(buf[:], addr); err != nil {
		return 0, err
	}
	return byteOrder.Uint32(buf[:]), nil
}

// ReadUint64 reads an 8-byte unsigned integer at addr.
func ReadUint64(r Reader, addr uint64) (uint64, error) {
	var buf [8]byte
	if err := r.ReadAt(buf[:], addr); err != nil {
		return 0, err
	}
	return byteOrder.Uint64(buf[:]), nil
}

// ReadPointer reads a pointer-sized value at addr.
func ReadPointer(r Reader, addr uint64) (uint64, error) {
	return ReadUint64(r, addr)
}

// readStringChunk is the granularity of ReadString's incremental reads.
const readStringChunk = 64

// ReadString reads a NUL-terminated string starting at addr, reading at
// most max bytes. The terminator is not included in the result. A string
// that fills max bytes without a terminator is returned as-is.
func ReadString(r Reader, addr uint64, max int) (string, error) {
	if max <= 0 {
		return "", fmt.Errorf("memory: non-positive string limit %d", max)
	}

	out := make([]byte, 0, readStringChunk)
	for len(out) < max {
		n := readStringChunk
		if remaining := max - len(out); remaining < n {
			n = remaining
		}

		chunk := make([]byte, n)
		if err := r.ReadAt(chunk, addr+uint64(len(out))); err != nil {
			return "", err
		}

		for i, b := range chunk {
			if b == 0 {
				return string(append(out, chunk[:i]...)), nil
			}
		}
		out = append(out, chunk...)
	}

	return string(out), nil
}
