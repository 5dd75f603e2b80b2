//go:build !windows && !linux

package memory

import (
	"fmt"
	"runtime"
)

type procHandle struct{}

func openProcess(pid int32) (procHandle, error) {
	return procHandle{}, fmt.Errorf("memory: attaching is not supported on %s", runtime.GOOS)
}

func (h *procHandle) close() error { return nil }

func (h *procHandle) readAt(buf []byte, addr uint64) error {
	return ErrProcessNotOpen
}

// Modules is unsupported on this platform.
func (p *Process) Modules() ([]Module, error) {
	return nil, fmt.Errorf("memory: module enumeration is not supported on %s", runtime.GOOS)
}
