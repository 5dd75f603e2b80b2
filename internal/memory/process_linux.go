//go:build linux

package memory

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// On Linux the target's memory is read through /proc/<pid>/mem, which
// honors the same ptrace access checks as PTRACE_ATTACH.
type procHandle struct {
	mem *os.File
	pid int32
}

func openProcess(pid int32) (procHandle, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/mem", pid))
	if err != nil {
		return procHandle{}, err
	}
	return procHandle{mem: f, pid: pid}, nil
}

func (h *procHandle) close() error {
	if h.mem == nil {
		return nil
	}
	err := h.mem.Close()
	h.mem = nil
	return err
}

func (h *procHandle) readAt(buf []byte, addr uint64) error {
	if h.mem == nil {
		return ErrProcessNotOpen
	}
	if len(buf) == 0 {
		return nil
	}
	if addr > math.MaxInt64 {
		return fmt.Errorf("%w: address %#x out of range", ErrUnreadable, addr)
	}

	n, err := h.mem.ReadAt(buf, int64(addr))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadable, err)
	}
	if n != len(buf) {
		return fmt.Errorf("%w: short read (%d of %d bytes)", ErrUnreadable, n, len(buf))
	}
	return nil
}

// Modules reconstructs the loaded-module list from /proc/<pid>/maps,
// merging contiguous mappings that back the same file.
func (p *Process) Modules() ([]Module, error) {
	f, err := os.Open(fmt.Sprintf("/proc/%d/maps", p.pid))
	if err != nil {
		return nil, fmt.Errorf("memory: open maps for pid %d: %w", p.pid, err)
	}
	defer f.Close()

	type span struct {
		base uint64
		end  uint64
	}
	spans := make(map[string]*span)
	var order []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 6 || !strings.HasPrefix(fields[5], "/") {
			continue
		}
		path := fields[5]

		rng := strings.SplitN(fields[0], "-", 2)
		if len(rng) != 2 {
			continue
		}
		start, err := strconv.ParseUint(rng[0], 16, 64)
		if err != nil {
			continue
		}
		end, err := strconv.ParseUint(rng[1], 16, 64)
		if err != nil {
			continue
		}

		if s, ok := spans[path]; ok {
			if start < s.base {
				s.base = start
			}
			if end > s.end {
				s.end = end
			}
		} else {
			spans[path] = &span{base: start, end: end}
			order = append(order, path)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("memory: read maps for pid %d: %w", p.pid, err)
	}

	mods := make([]Module, 0, len(order))
	for _, path := range order {
		s := spans[path]
		mods = append(mods, Module{
			Name: filepath.Base(path),
			Base: s.base,
			Size: uint32(s.end - s.base),
		})
	}
	return mods, nil
}
