package schema

import "github.com/s2kit/schemadump/internal/memory"

// TypeScope is a view of one per-module type scope in the target's schema
// system. A scope owns the class records declared by a single binary
// module (e.g. client.dll).
type TypeScope struct {
	reader  memory.Reader
	address uint64
}

// NewTypeScope anchors a scope view. It performs no memory access.
func NewTypeScope(r memory.Reader, address uint64) *TypeScope {
	return &TypeScope{reader: r, address: address}
}

// Address returns the scope record's address in the target.
func (s *TypeScope) Address() uint64 { return s.address }

// ModuleName reads the scope's module name, stored inline in the scope
// record as a fixed-size NUL-terminated buffer.
func (s *TypeScope) ModuleName() (string, error) {
	return memory.ReadString(s.reader, s.address+scopeModuleNameOffset, scopeModuleNameMax)
}

// Classes enumerates the scope's declared classes. The scope stores class
// record pointers as count + table, like the field tables; null entries are
// unpopulated slots and are skipped. Each class's display name is read once
// here so the returned descriptors carry it as a plain label.
func (s *TypeScope) Classes() ([]*ClassDescriptor, error) {
	count, err := memory.ReadUint32(s.reader, s.address+scopeClassCountOffset)
	if err != nil {
		return nil, err
	}

	table, err := memory.ReadPointer(s.reader, s.address+scopeClassTableOffset)
	if err != nil {
		return nil, err
	}

	classes := make([]*ClassDescriptor, 0, count)
	for i := uint64(0); i < uint64(count); i++ {
		record, err := memory.ReadPointer(s.reader, table+i*8)
		if err != nil {
			return nil, err
		}
		if record == 0 {
			continue
		}

		namePtr, err := memory.ReadPointer(s.reader, record+classNameOffset)
		if err != nil {
			return nil, err
		}
		name, err := memory.ReadString(s.reader, namePtr, nameMax)
		if err != nil {
			return nil, err
		}

		classes = append(classes, NewClassDescriptor(s.reader, record, name))
	}
	return classes, nil
}

// FindClass returns the scope's class with the given name, or nil when the
// scope does not declare it.
func (s *TypeScope) FindClass(name string) (*ClassDescriptor, error) {
	classes, err := s.Classes()
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if c.Name() == name {
			return c, nil
		}
	}
	return nil, nil
}
