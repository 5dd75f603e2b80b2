package schema

import "github.com/s2kit/schemadump/internal/memory"

// Module and interface the target registers its schema system under.
const (
	systemModule    = "schemasystem.dll"
	systemInterface = "SchemaSystem_001"
)

// System is a view of the target's schema system singleton, the root from
// which all type scopes hang.
type System struct {
	reader  memory.Reader
	address uint64
}

// NewSystem anchors a system view at a known singleton address. It performs
// no memory access.
func NewSystem(r memory.Reader, address uint64) *System {
	return &System{reader: r, address: address}
}

// LocateSystem resolves the schema system singleton through the target's
// interface registration list and returns a view anchored at it.
func LocateSystem(p *memory.Process) (*System, error) {
	addr, err := p.InterfaceAddress(systemModule, systemInterface)
	if err != nil {
		return nil, err
	}
	return NewSystem(p, addr), nil
}

// Address returns the schema system singleton's address in the target.
func (s *System) Address() uint64 { return s.address }

// TypeScopes enumerates the system's per-module type scopes, skipping null
// table entries.
func (s *System) TypeScopes() ([]*TypeScope, error) {
	count, err := memory.ReadUint32(s.reader, s.address+systemScopeCountOffset)
	if err != nil {
		return nil, err
	}

	table, err := memory.ReadPointer(s.reader, s.address+systemScopeTableOffset)
	if err != nil {
		return nil, err
	}

	scopes := make([]*TypeScope, 0, count)
	for i := uint64(0); i < uint64(count); i++ {
		record, err := memory.ReadPointer(s.reader, table+i*8)
		if err != nil {
			return nil, err
		}
		if record == 0 {
			continue
		}
		scopes = append(scopes, NewTypeScope(s.reader, record))
	}
	return scopes, nil
}
