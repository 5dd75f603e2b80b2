// Package offsets resolves well-known global addresses in the target by
// signature-scanning its code. Each entry names an instruction pattern
// whose RIP-relative operand points at the global of interest.
package offsets

import (
	"github.com/s2kit/schemadump/internal/memory"
)

// Target is the slice of process capability this package needs. It is
// satisfied by *memory.Process.
type Target interface {
	memory.Reader
	FindPattern(moduleName, signature string) (uint64, error)
	ModuleByName(name string) (memory.Module, error)
}

// Entry describes one signature-resolved global.
type Entry struct {
	Name      string
	Module    string
	Signature string

	// Deref follows the resolved address one pointer deep before applying
	// Extra, for globals reached through an intermediate pointer.
	Deref bool
	Extra uint64
}

// WellKnown lists the globals the dump and offsets commands resolve by
// default. The signatures are fixed against the target build and go stale
// when it updates; a stale signature reports as a per-entry error.
var WellKnown = []Entry{
	{
		Name:      "dwEntityList",
		Module:    "client.dll",
		Signature: "48 8B 0D ? ? ? ? 48 89 7C 24 ? 8B FA C1 EB",
	},
	{
		Name:      "dwLocalPlayerController",
		Module:    "client.dll",
		Signature: "48 8B 0D ? ? ? ? F2 0F 11 44 24 ? F2 41 0F 10 00",
		Deref:     true,
		Extra:     0x50,
	},
	{
		Name:      "dwViewMatrix",
		Module:    "client.dll",
		Signature: "48 8D 0D ? ? ? ? 48 C1 E0 06",
	},
}

// Result is the outcome of resolving one entry. Err is set when the
// signature was not found or a read failed; other entries are unaffected.
type Result struct {
	Entry    Entry
	Address  uint64
	Relative uint64
	Err      error
}

// Resolve resolves a single entry to an absolute address and its offset
// relative to the owning module's base.
func Resolve(tgt Target, e Entry) (Result, error) {
	res := Result{Entry: e}

	match, err := tgt.FindPattern(e.Module, e.Signature)
	if err != nil {
		return res, err
	}

	addr, err := memory.ResolveRelative(tgt, match)
	if err != nil {
		return res, err
	}

	if e.Deref {
		addr, err = memory.ReadPointer(tgt, addr)
		if err != nil {
			return res, err
		}
	}
	addr += e.Extra

	mod, err := tgt.ModuleByName(e.Module)
	if err != nil {
		return res, err
	}

	res.Address = addr
	res.Relative = addr - mod.Base
	return res, nil
}

// ResolveAll resolves every entry, recording failures per entry rather than
// aborting the batch.
func ResolveAll(tgt Target, entries []Entry) []Result {
	out := make([]Result, 0, len(entries))
	for _, e := range entries {
		res, err := Resolve(tgt, e)
		res.Err = err
		out = append(out, res)
	}
	return out
}
