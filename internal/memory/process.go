package memory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shirou/gopsutil/v3/process"
)

// Module describes one executable image loaded in the target process.
type Module struct {
	Name string
	Base uint64
	Size uint32
}

// Process is an attached, read-only view of a running process. It satisfies
// Reader; all other helpers in this package build on that.
//
// A Process is safe for concurrent reads: the underlying OS primitive takes
// an absolute address per call and holds no shared cursor.
type Process struct {
	pid    int32
	name   string
	handle procHandle
}

// Pid returns the target's process id.
func (p *Process) Pid() int32 { return p.pid }

// Name returns the executable name the process was attached by.
func (p *Process) Name() string { return p.name }

// Attach finds a running process whose executable name matches name
// (case-insensitively) and opens it for reading.
func Attach(name string) (*Process, error) {
	pid, err := FindPid(name)
	if err != nil {
		return nil, err
	}
	return AttachPid(pid, name)
}

// AttachPid opens the process with the given pid for reading. The name is
// a display label only.
func AttachPid(pid int32, name string) (*Process, error) {
	h, err := openProcess(pid)
	if err != nil {
		return nil, fmt.Errorf("memory: open pid %d: %w", pid, err)
	}
	return &Process{pid: pid, name: name, handle: h}, nil
}

// Close releases the process handle. Reads after Close fail with
// ErrProcessNotOpen.
func (p *Process) Close() error {
	return p.handle.close()
}

// ReadAt implements Reader against the live target.
func (p *Process) ReadAt(buf []byte, addr uint64) error {
	if err := p.handle.readAt(buf, addr); err != nil {
		return fmt.Errorf("memory: read %d bytes at %#x: %w", len(buf), addr, err)
	}
	return nil
}

// ModuleByName returns the loaded module matching name, case-insensitively.
func (p *Process) ModuleByName(name string) (Module, error) {
	mods, err := p.Modules()
	if err != nil {
		return Module{}, err
	}
	for _, m := range mods {
		if strings.EqualFold(m.Name, name) {
			return m, nil
		}
	}
	return Module{}, fmt.Errorf("%w: %s", ErrModuleNotFound, name)
}

// FindPid returns the pid of a running process whose executable name equals
// name, ignoring case. When several match, the lowest pid wins.
func FindPid(name string) (int32, error) {
	procs, err := process.Processes()
	if err != nil {
		return 0, fmt.Errorf("memory: list processes: %w", err)
	}

	var found []int32
	for _, pr := range procs {
		n, err := pr.Name()
		if err != nil {
			continue
		}
		if strings.EqualFold(n, name) {
			found = append(found, pr.Pid)
		}
	}
	if len(found) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrProcessNotFound, name)
	}

	sort.Slice(found, func(i, j int) bool { return found[i] < found[j] })
	return found[0], nil
}

// RunningProcess pairs a pid with its executable name, for process pickers.
type RunningProcess struct {
	Pid  int32
	Name string
}

// ListProcesses returns every running process the caller may observe,
// sorted by executable name then pid.
func ListProcesses() ([]RunningProcess, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, fmt.Errorf("memory: list processes: %w", err)
	}

	out := make([]RunningProcess, 0, len(procs))
	for _, pr := range procs {
		n, err := pr.Name()
		if err != nil || n == "" {
			continue
		}
		out = append(out, RunningProcess{Pid: pr.Pid, Name: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Pid < out[j].Pid
	})
	return out, nil
}
