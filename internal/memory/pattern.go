package memory

import (
	"fmt"
	"strconv"
	"strings"
)

// Pattern is a compiled byte signature in the conventional hex-and-wildcard
// notation, e.g. "48 8B 0D ? ? ? ? 8B FA". Each element is either a literal
// byte value or ? / ?? matching any byte.
type Pattern struct {
	source string
	bytes  []int16 // 0..255 literal, -1 wildcard
}

// ParsePattern compiles a signature string. Tokens must be two-digit hex
// byte values or wildcards, separated by spaces.
func ParsePattern(s string) (Pattern, error) {
	tokens := strings.Fields(s)
	if len(tokens) == 0 {
		return Pattern{}, fmt.Errorf("memory: empty pattern")
	}

	compiled := make([]int16, 0, len(tokens))
	for _, tok := range tokens {
		switch tok {
		case "?", "??":
			compiled = append(compiled, -1)
		default:
			v, err := strconv.ParseUint(tok, 16, 8)
			if err != nil {
				return Pattern{}, fmt.Errorf("memory: bad pattern byte %q in %q", tok, s)
			}
			compiled = append(compiled, int16(v))
		}
	}
	return Pattern{source: s, bytes: compiled}, nil
}

// String returns the original signature text.
func (p Pattern) String() string { return p.source }

// Len returns the number of bytes the pattern matches.
func (p Pattern) Len() int { return len(p.bytes) }

// Find returns the offset of the first match in data, or -1.
func (p Pattern) Find(data []byte) int {
	if len(p.bytes) == 0 || len(data) < len(p.bytes) {
		return -1
	}

	for i := 0; i <= len(data)-len(p.bytes); i++ {
		match := true
		for j, want := range p.bytes {
			if want >= 0 && data[i+j] != byte(want) {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

// FindPattern scans the named module's mapped image for the signature and
// returns the absolute address of the first match.
func (p *Process) FindPattern(moduleName, signature string) (uint64, error) {
	pat, err := ParsePattern(signature)
	if err != nil {
		return 0, err
	}

	mod, err := p.ModuleByName(moduleName)
	if err != nil {
		return 0, err
	}

	image, err := readImage(p, mod)
	if err != nil {
		return 0, err
	}

	off := pat.Find(image)
	if off < 0 {
		return 0, fmt.Errorf("%w: %q in %s", ErrPatternNotFound, signature, moduleName)
	}
	return mod.Base + uint64(off), nil
}

// readImage copies the module's whole mapped image out of the target. The
// PE headers are the authority on image size; the snapshot size is only a
// fallback for non-PE mappings.
func readImage(r Reader, mod Module) ([]byte, error) {
	size, err := ImageSize(r, mod.Base)
	if err != nil {
		size = mod.Size
	}
	if size == 0 {
		return nil, fmt.Errorf("%w: module %s has zero size", ErrBadImage, mod.Name)
	}

	image := make([]byte, size)
	if err := r.ReadAt(image, mod.Base); err != nil {
		return nil, err
	}
	return image, nil
}

// ResolveRelative resolves the target of a RIP-relative operand in a 7-byte
// instruction (opcode + modrm + disp32), the common encoding for
// `mov reg, [rip+disp]` and `lea reg, [rip+disp]` on x86-64: the 32-bit
// displacement sits at address+3 and is relative to the next instruction.
func ResolveRelative(r Reader, address uint64) (uint64, error) {
	disp, err := ReadUint32(r, address+3)
	if err != nil {
		return 0, err
	}
	return address + 7 + uint64(int64(int32(disp))), nil
}
