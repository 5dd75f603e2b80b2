package schema

import "github.com/s2kit/schemadump/internal/memory"

// FieldDescriptor is a view of one field's metadata record. It is inert
// until an accessor is invoked; each accessor performs its own reads and
// surfaces the read error unchanged.
type FieldDescriptor struct {
	reader  memory.Reader
	address uint64
}

// NewFieldDescriptor anchors a descriptor at a field metadata record.
// It performs no memory access.
func NewFieldDescriptor(r memory.Reader, address uint64) *FieldDescriptor {
	return &FieldDescriptor{reader: r, address: address}
}

// Address returns the field metadata record's address in the target.
func (f *FieldDescriptor) Address() uint64 { return f.address }

// Name reads the field's declared name.
func (f *FieldDescriptor) Name() (string, error) {
	namePtr, err := memory.ReadPointer(f.reader, f.address+fieldNameOffset)
	if err != nil {
		return "", err
	}
	return memory.ReadString(f.reader, namePtr, nameMax)
}

// Type reads the field's type record pointer.
func (f *FieldDescriptor) Type() (*TypeDescriptor, error) {
	typePtr, err := memory.ReadPointer(f.reader, f.address+fieldTypeOffset)
	if err != nil {
		return nil, err
	}
	return &TypeDescriptor{reader: f.reader, address: typePtr}, nil
}

// Offset reads the field's storage offset within instances of the owning
// class.
func (f *FieldDescriptor) Offset() (uint32, error) {
	return memory.ReadUint32(f.reader, f.address+fieldInstanceOffset)
}

// TypeDescriptor is a view of a type record referenced by a field.
type TypeDescriptor struct {
	reader  memory.Reader
	address uint64
}

// Address returns the type record's address in the target.
func (t *TypeDescriptor) Address() uint64 { return t.address }

// Name reads the type's display name, e.g. "int32" or
// "CHandle< CBaseEntity >".
func (t *TypeDescriptor) Name() (string, error) {
	namePtr, err := memory.ReadPointer(t.reader, t.address+typeNameOffset)
	if err != nil {
		return "", err
	}
	return memory.ReadString(t.reader, namePtr, nameMax)
}
