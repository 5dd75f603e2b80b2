package schema

import (
	"encoding/binary"
	"fmt"

	"github.com/s2kit/schemadump/internal/memory"
)

// fakeMemory is a synthetic target address space. Reads touching any byte
// not explicitly populated fail with memory.ErrUnreadable, and every read
// is recorded so tests can assert on the exact call sequence.
type fakeMemory struct {
	data  map[uint64]byte
	reads []fakeRead
}

type fakeRead struct {
	addr uint64
	size int
}

func newFakeMemory() *fakeMemory {
	return &fakeMemory{data: make(map[uint64]byte)}
}

func (m *fakeMemory) ReadAt(buf []byte, addr uint64) error {
	m.reads = append(m.reads, fakeRead{addr: addr, size: len(buf)})
	for i := range buf {
		b, ok := m.data[addr+uint64(i)]
		if !ok {
			return fmt.Errorf("%w: %#x", memory.ErrUnreadable, addr+uint64(i))
		}
		buf[i] = b
	}
	return nil
}

func (m *fakeMemory) putBytes(addr uint64, b []byte) {
	for i, v := range b {
		m.data[addr+uint64(i)] = v
	}
}

func (m *fakeMemory) putUint16(addr uint64, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	m.putBytes(addr, b[:])
}

func (m *fakeMemory) putUint32(addr uint64, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.putBytes(addr, b[:])
}

func (m *fakeMemory) putUint64(addr uint64, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	m.putBytes(addr, b[:])
}

// putString writes a NUL-terminated string padded with zeros to a 64-byte
// multiple, matching the chunk granularity memory.ReadString reads at.
func (m *fakeMemory) putString(addr uint64, s string) {
	padded := (len(s)/64 + 1) * 64
	b := make([]byte, padded)
	copy(b, s)
	m.putBytes(addr, b)
}

// readCount reports how many reads have been issued so far.
func (m *fakeMemory) readCount() int { return len(m.reads) }

// readAddrs returns the addresses of all reads issued so far.
func (m *fakeMemory) readAddrs() []uint64 {
	out := make([]uint64, len(m.reads))
	for i, r := range m.reads {
		out[i] = r.addr
	}
	return out
}
