// Package disasm provides x86-64 disassembly for JIT-emitted code bytes.
package disasm

import (
	"fmt"
	"strings"

	"golang.org/x/arch/x86/x86asm"
)

// Separator joins instructions within one disassembly string. Downstream
// aggregation counts instructions by splitting on it.
const Separator = "; "

// Func decodes a byte sequence into disassembly text. The ingestor consumes
// the disassembler through this type so tests can substitute their own.
type Func func(code []byte) (string, error)

// Disasm decodes x86-64 instructions from code and returns them as
// Intel-syntax text joined with Separator. Empty input yields "".
// A byte sequence that does not decode cleanly returns an error; callers
// record a placeholder and continue.
func Disasm(code []byte) (string, error) {
	if len(code) == 0 {
		return "", nil
	}
	var parts []string
	var pc uint64
	for off := 0; off < len(code); {
		inst, err := x86asm.Decode(code[off:], 64)
		if err != nil {
			return "", fmt.Errorf("decode at offset %d: %w", off, err)
		}
		parts = append(parts, strings.ToLower(x86asm.IntelSyntax(inst, pc, nil)))
		off += inst.Len
		pc += uint64(inst.Len)
	}
	return strings.Join(parts, Separator), nil
}

// Placeholder returns the diagnostic text recorded when disassembly fails.
func Placeholder(err error) string {
	return fmt.Sprintf("(disasm error: %v)", err)
}

// Split breaks a joined disassembly string back into individual
// instructions, dropping empty parts.
func Split(disasm string) []string {
	if strings.TrimSpace(disasm) == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(disasm, ";") {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Count returns the number of instructions in a joined disassembly string.
func Count(disasm string) int {
	return len(Split(disasm))
}
