package memory

import "fmt"

// Interface registration node layout, as maintained by modules that expose
// a CreateInterface factory: a singly linked list of
// { create thunk ptr, name ptr, next ptr }.
const (
	interfaceCreateOffset = 0x00
	interfaceNameOffset   = 0x08
	interfaceNextOffset   = 0x10

	interfaceNameMax = 256

	// Hard cap on list traversal so a torn pointer cannot spin us forever.
	interfaceWalkLimit = 512
)

// InterfaceAddress resolves a named interface singleton registered in the
// given module. The module's exported CreateInterface begins with a
// RIP-relative load of the registration list head; each node's create thunk
// is a RIP-relative lea of the singleton it returns.
func (p *Process) InterfaceAddress(moduleName, interfaceName string) (uint64, error) {
	mod, err := p.ModuleByName(moduleName)
	if err != nil {
		return 0, err
	}
	return interfaceAddress(p, mod.Base, interfaceName)
}

func interfaceAddress(r Reader, moduleBase uint64, interfaceName string) (uint64, error) {
	export, err := ExportAddress(r, moduleBase, "CreateInterface")
	if err != nil {
		return 0, err
	}

	listAnchor, err := ResolveRelative(r, export)
	if err != nil {
		return 0, err
	}
	node, err := ReadPointer(r, listAnchor)
	if err != nil {
		return 0, err
	}

	for walked := 0; node != 0 && walked < interfaceWalkLimit; walked++ {
		namePtr, err := ReadPointer(r, node+interfaceNameOffset)
		if err != nil {
			return 0, err
		}
		name, err := ReadString(r, namePtr, interfaceNameMax)
		if err != nil {
			return 0, err
		}

		if name == interfaceName {
			thunk, err := ReadPointer(r, node+interfaceCreateOffset)
			if err != nil {
				return 0, err
			}
			return ResolveRelative(r, thunk)
		}

		node, err = ReadPointer(r, node+interfaceNextOffset)
		if err != nil {
			return 0, err
		}
	}

	return 0, fmt.Errorf("%w: %s", ErrInterfaceNotFound, interfaceName)
}
