package disasm

import (
	"strings"
	"testing"
)

func TestDisasmSingle(t *testing.T) {
	// x86-64 NOP.
	text, err := Disasm([]byte{0x90})
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	if !strings.Contains(strings.ToLower(text), "nop") {
		t.Errorf("expected nop, got: %s", text)
	}
}

func TestDisasmSequence(t *testing.T) {
	// mov [rsp+0x10], rbp ; ret
	code := []byte{0x48, 0x89, 0x6c, 0x24, 0x10, 0xc3}
	text, err := Disasm(code)
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	parts := Split(text)
	if len(parts) != 2 {
		t.Fatalf("got %d instructions, want 2: %q", len(parts), text)
	}
	if !strings.Contains(parts[0], "mov") {
		t.Errorf("first instruction = %q, want mov", parts[0])
	}
	if !strings.Contains(parts[1], "ret") {
		t.Errorf("second instruction = %q, want ret", parts[1])
	}
}

func TestDisasmEmpty(t *testing.T) {
	text, err := Disasm(nil)
	if err != nil {
		t.Fatalf("Disasm(nil): %v", err)
	}
	if text != "" {
		t.Errorf("got %q for nil input, want empty", text)
	}
}

func TestDisasmTruncated(t *testing.T) {
	// mov cut off before its ModRM byte.
	if _, err := Disasm([]byte{0x48, 0x89}); err == nil {
		t.Fatal("expected error for truncated instruction")
	}
}

func TestDisasmDeterministic(t *testing.T) {
	code := []byte{0x48, 0x89, 0x6c, 0x24, 0x10, 0x90, 0xc3}
	a, err := Disasm(code)
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	b, err := Disasm(code)
	if err != nil {
		t.Fatalf("Disasm: %v", err)
	}
	if a != b {
		t.Error("non-deterministic output")
	}
}

func TestSplitAndCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"  ", 0},
		{"nop", 1},
		{"nop; ret", 2},
		{"nop;; ret; ", 2},
		{"mov eax, 1; add eax, 2; ret", 3},
	}
	for _, c := range cases {
		if got := Count(c.in); got != c.want {
			t.Errorf("Count(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestPlaceholder(t *testing.T) {
	// 0F 04 is an undefined opcode.
	_, err := Disasm([]byte{0x0f, 0x04})
	if err == nil {
		t.Fatal("expected decode error")
	}
	p := Placeholder(err)
	if !strings.HasPrefix(p, "(disasm error:") {
		t.Errorf("placeholder = %q", p)
	}
}
