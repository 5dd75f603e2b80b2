package schema

import "github.com/s2kit/schemadump/internal/memory"

// ClassDescriptor is a view of one class's metadata record in the target
// process. The address is fixed at construction; the display name is
// supplied by the caller (typically read once during scope enumeration)
// and is not re-derived from target memory.
type ClassDescriptor struct {
	reader  memory.Reader
	address uint64
	name    string
}

// NewClassDescriptor anchors a descriptor at a class metadata record.
// It performs no memory access.
func NewClassDescriptor(r memory.Reader, address uint64, name string) *ClassDescriptor {
	return &ClassDescriptor{reader: r, address: address, name: name}
}

// Name returns the label supplied at construction, unmodified.
func (c *ClassDescriptor) Name() string { return c.name }

// Address returns the class metadata record's address in the target.
func (c *ClassDescriptor) Address() uint64 { return c.address }

// FieldCount reads the class's declared field count.
func (c *ClassDescriptor) FieldCount() (uint16, error) {
	return memory.ReadUint16(c.reader, c.address+classFieldCountOffset)
}

// InstanceSize reads the byte size of instances of this class.
func (c *ClassDescriptor) InstanceSize() (uint32, error) {
	return memory.ReadUint32(c.reader, c.address+classSizeOffset)
}

// Fields enumerates the class's declared fields in declaration order.
//
// The target stores the field table as count + base pointer; table slots
// sit at a fixed stride from the base, each holding the address of one
// field record. A slot holding zero marks an unpopulated entry and is
// skipped silently; the count is not updated atomically with the table in
// the target, so gaps are expected and are not errors. Any failed read
// fails the whole call with no partial result.
func (c *ClassDescriptor) Fields() ([]*FieldDescriptor, error) {
	count, err := c.FieldCount()
	if err != nil {
		return nil, err
	}

	base, err := memory.ReadPointer(c.reader, c.address+classFieldTableOffset)
	if err != nil {
		return nil, err
	}

	fields := make([]*FieldDescriptor, 0, count)
	for i := uint64(0); i < uint64(count); i++ {
		record, err := memory.ReadPointer(c.reader, base+i*fieldRecordStride)
		if err != nil {
			return nil, err
		}
		if record == 0 {
			continue
		}
		fields = append(fields, NewFieldDescriptor(c.reader, record))
	}
	return fields, nil
}
