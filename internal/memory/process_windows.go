//go:build windows

package memory

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// Read-only access is all this tool ever needs; asking for less than
// PROCESS_ALL_ACCESS keeps the attach working under stricter ACLs.
const processReadAccess = windows.PROCESS_QUERY_INFORMATION | windows.PROCESS_VM_READ

type procHandle struct {
	h   windows.Handle
	pid int32
}

func openProcess(pid int32) (procHandle, error) {
	h, err := windows.OpenProcess(processReadAccess, false, uint32(pid))
	if err != nil {
		return procHandle{}, err
	}
	return procHandle{h: h, pid: pid}, nil
}

func (h *procHandle) close() error {
	if h.h == 0 {
		return nil
	}
	err := windows.CloseHandle(h.h)
	h.h = 0
	return err
}

func (h *procHandle) readAt(buf []byte, addr uint64) error {
	if h.h == 0 {
		return ErrProcessNotOpen
	}
	if len(buf) == 0 {
		return nil
	}

	var read uintptr
	err := windows.ReadProcessMemory(h.h, uintptr(addr), &buf[0], uintptr(len(buf)), &read)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if read != uintptr(len(buf)) {
		return fmt.Errorf("%w: short read (%d of %d bytes)", ErrUnreadable, read, len(buf))
	}
	return nil
}

// Modules enumerates the target's loaded modules via a toolhelp snapshot.
func (p *Process) Modules() ([]Module, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(
		windows.TH32CS_SNAPMODULE|windows.TH32CS_SNAPMODULE32, uint32(p.pid))
	if err != nil {
		return nil, fmt.Errorf("memory: module snapshot for pid %d: %w", p.pid, err)
	}
	defer windows.CloseHandle(snapshot)

	var entry windows.ModuleEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	var mods []Module
	err = windows.Module32First(snapshot, &entry)
	for err == nil {
		mods = append(mods, Module{
			Name: windows.UTF16ToString(entry.Module[:]),
			Base: uint64(entry.ModBaseAddr),
			Size: entry.ModBaseSize,
		})
		err = windows.Module32Next(snapshot, &entry)
	}
	if err != windows.ERROR_NO_MORE_FILES {
		return nil, fmt.Errorf("memory: walk module snapshot: %w", err)
	}
	return mods, nil
}
