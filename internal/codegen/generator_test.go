package codegen

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/s2kit/schemadump/internal/memory"
	"github.com/s2kit/schemadump/internal/schema"
)

// fakeMemory mirrors the target's metadata conventions byte for byte:
// scope module name at +0x08 (inline), class table count/base at
// +0x558/+0x560, class name ptr at +0x08, field count/table at +0x1C/+0x28,
// field name/type/offset at +0x00/+0x08/+0x10, 0x20-byte table stride.
type fakeMemory struct {
	data map[uint64]byte
}

func newFakeMemory() *fakeMemory { return &fakeMemory{data: make(map[uint64]byte)} }

func (m *fakeMemory) ReadAt(buf []byte, addr uint64) error {
	for i := range buf {
		b, ok := m.data[addr+uint64(i)]
		if !ok {
			return fmt.Errorf("%w: %#x", memory.ErrUnreadable, addr+uint64(i))
		}
		buf[i] = b
	}
	return nil
}

func (m *fakeMemory) put16(addr uint64, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	m.putBytes(addr, b[:])
}

func (m *fakeMemory) put32(addr uint64, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	m.putBytes(addr, b[:])
}

func (m *fakeMemory) put64(addr uint64, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	m.putBytes(addr, b[:])
}

// putString pads to the 64-byte granularity memory.ReadString reads at.
func (m *fakeMemory) putString(addr uint64, s string) {
	padded := (len(s)/64 + 1) * 64
	b := make([]byte, padded)
	copy(b, s)
	m.putBytes(addr, b)
}

func (m *fakeMemory) putBytes(addr uint64, b []byte) {
	for i, v := range b {
		m.data[addr+uint64(i)] = v
	}
}

// buildScope lays out one scope ("client.dll") with two classes:
// CAnimScriptBase { m_bIsValid bool @ 0x8 } and
// EmptyTestScript { m_hTest CAnimScriptParam<float> @ 0x10 }.
func buildScope(mem *fakeMemory) *schema.TypeScope {
	const (
		scopeAddr  = 0x10000
		classTable = 0x11000
		classA     = 0x12000
		classB     = 0x13000
		fieldTblA  = 0x14000
		fieldTblB  = 0x15000
		fieldA     = 0x16000
		fieldB     = 0x17000
		typeA      = 0x18000
		typeB      = 0x19000
		strings0   = 0x1A000
	)

	mem.putString(scopeAddr+0x08, "client.dll")
	mem.put32(scopeAddr+0x558, 2)
	mem.put64(scopeAddr+0x560, classTable)
	mem.put64(classTable, classA)
	mem.put64(classTable+8, classB)

	mem.put64(classA+0x08, strings0)
	mem.putString(strings0, "CAnimScriptBase")
	mem.put16(classA+0x1C, 1)
	mem.put64(classA+0x28, fieldTblA)
	mem.put64(fieldTblA, fieldA)

	mem.put64(fieldA+0x00, strings0+0x100)
	mem.putString(strings0+0x100, "m_bIsValid")
	mem.put64(fieldA+0x08, typeA)
	mem.put32(fieldA+0x10, 0x8)
	mem.put64(typeA+0x08, strings0+0x200)
	mem.putString(strings0+0x200, "bool")

	mem.put64(classB+0x08, strings0+0x300)
	mem.putString(strings0+0x300, "EmptyTestScript")
	mem.put16(classB+0x1C, 1)
	mem.put64(classB+0x28, fieldTblB)
	mem.put64(fieldTblB, fieldB)

	mem.put64(fieldB+0x00, strings0+0x400)
	mem.putString(strings0+0x400, "m_hTest")
	mem.put64(fieldB+0x08, typeB)
	mem.put32(fieldB+0x10, 0x10)
	mem.put64(typeB+0x08, strings0+0x500)
	mem.putString(strings0+0x500, "CAnimScriptParam<float>")

	return schema.NewTypeScope(mem, scopeAddr)
}

func TestCollect(t *testing.T) {
	mem := newFakeMemory()
	scope := buildScope(mem)

	g := New(t.TempDir(), zap.NewNop())
	dump, err := g.Collect(scope)
	require.NoError(t, err)

	assert.Equal(t, "client.dll", dump.Module)
	require.Len(t, dump.Classes, 2)

	// Classes come out name-sorted.
	assert.Equal(t, "CAnimScriptBase", dump.Classes[0].Name)
	require.Len(t, dump.Classes[0].Fields, 1)
	assert.Equal(t, FieldDump{Name: "m_bIsValid", Offset: 0x8, Type: "bool"}, dump.Classes[0].Fields[0])

	assert.Equal(t, "EmptyTestScript", dump.Classes[1].Name)
	require.Len(t, dump.Classes[1].Fields, 1)
	assert.Equal(t, FieldDump{Name: "m_hTest", Offset: 0x10, Type: "CAnimScriptParam<float>"}, dump.Classes[1].Fields[0])
}

func TestCollectSkipsUnreadableFieldTable(t *testing.T) {
	mem := newFakeMemory()
	scope := buildScope(mem)

	// Break CAnimScriptBase's field table pointer.
	for i := uint64(0); i < 8; i++ {
		delete(mem.data, 0x12000+0x28+i)
	}

	g := New(t.TempDir(), zap.NewNop())
	dump, err := g.Collect(scope)
	require.NoError(t, err)

	// The broken class is skipped; the other survives.
	require.Len(t, dump.Classes, 1)
	assert.Equal(t, "EmptyTestScript", dump.Classes[0].Name)
}

func TestCollectSkipsUnreadableField(t *testing.T) {
	mem := newFakeMemory()
	scope := buildScope(mem)

	// Break m_bIsValid's name pointer; the class stays, the field goes.
	for i := uint64(0); i < 8; i++ {
		delete(mem.data, 0x16000+i)
	}

	g := New(t.TempDir(), zap.NewNop())
	dump, err := g.Collect(scope)
	require.NoError(t, err)

	require.Len(t, dump.Classes, 2)
	assert.Empty(t, dump.Classes[0].Fields)
	assert.Len(t, dump.Classes[1].Fields, 1)
}

func TestCollectToleratesUnreadableType(t *testing.T) {
	mem := newFakeMemory()
	scope := buildScope(mem)

	// Break the type record; the field survives with an empty type.
	for i := uint64(0); i < 16; i++ {
		delete(mem.data, 0x18000+i)
	}

	g := New(t.TempDir(), zap.NewNop())
	dump, err := g.Collect(scope)
	require.NoError(t, err)

	require.Len(t, dump.Classes[0].Fields, 1)
	assert.Equal(t, "", dump.Classes[0].Fields[0].Type)
	assert.Equal(t, "m_bIsValid", dump.Classes[0].Fields[0].Name)
}

func TestWriteHeader(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, nil)

	dump := &ScopeDump{
		Module: "client.dll",
		Classes: []ClassDump{
			{Name: "CAnimScriptBase", Fields: []FieldDump{{Name: "m_bIsValid", Offset: 0x8, Type: "bool"}}},
			{Name: "EmptyTestScript", Fields: []FieldDump{{Name: "m_hTest", Offset: 0x10, Type: "CAnimScriptParam<float>"}}},
		},
	}

	paths, err := g.Write(dump, []string{FormatHeader})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, filepath.Join(dir, "client.dll.hpp"), paths[0])

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	got := string(data)

	assert.True(t, strings.HasPrefix(got, "#pragma once\n"))
	assert.Contains(t, got, "namespace CAnimScriptBase {\n")
	assert.Contains(t, got, "    constexpr std::ptrdiff_t m_bIsValid = 0x8; // bool\n")
	assert.Contains(t, got, "    constexpr std::ptrdiff_t m_hTest = 0x10; // CAnimScriptParam<float>\n")
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, nil)

	dump := &ScopeDump{
		Module: "client.dll",
		Classes: []ClassDump{
			{Name: "CAnimScriptBase", Fields: []FieldDump{{Name: "m_bIsValid", Offset: 0x8}}},
		},
	}

	paths, err := g.Write(dump, []string{FormatJSON})
	require.NoError(t, err)

	data, err := os.ReadFile(paths[0])
	require.NoError(t, err)

	var doc map[string]map[string]uint32
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, uint32(0x8), doc["CAnimScriptBase"]["m_bIsValid"])
}

func TestWriteUnknownFormat(t *testing.T) {
	g := New(t.TempDir(), nil)
	_, err := g.Write(&ScopeDump{Module: "client.dll"}, []string{"yaml"})
	assert.Error(t, err)
}

func TestWriteManifest(t *testing.T) {
	dir := t.TempDir()
	g := New(dir, nil)

	m := NewManifest("cs2.exe", 4242)
	m.AddScope("client.dll", 12, []string{"client.dll.hpp", "client.dll.json"})

	path, err := g.WriteManifest(m)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Manifest
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "cs2.exe", got.Process)
	assert.Equal(t, int32(4242), got.Pid)
	assert.NotEmpty(t, got.RunID)
	require.Len(t, got.Scopes, 1)
	assert.Equal(t, 12, got.Scopes[0].Classes)
}

func TestSanitizeIdentifier(t *testing.T) {
	tests := map[string]string{
		"CBaseEntity":             "CBaseEntity",
		"CHandle< CBaseEntity >":  "CHandle__CBaseEntity__",
		"9starts_with_digit":      "_starts_with_digit",
		"":                        "_",
		"CUtlVector<int, CAlloc>": "CUtlVector_int__CAlloc_",
	}
	for in, want := range tests {
		if got := sanitizeIdentifier(in); got != want {
			t.Errorf("sanitizeIdentifier(%q) = %q, want %q", in, got, want)
		}
	}
}
