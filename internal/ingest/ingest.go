// Package ingest scans a raw JIT compiler dump and emits one CodeRecord per
// "Emitted code" entry, tagged with the enclosing compilation and block.
package ingest

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/disasm"
)

// CodeRecord is one emitted-code entry from the compiler dump.
type CodeRecord struct {
	CompilationID string
	BlockID       string
	LIRClass      string
	Bytes         string // whitespace-normalized hex byte string
	HasSource     bool
	Source        string
	Disasm        string
}

// Header is the column list of the code-record table.
var Header = []string{"compilation_id", "block_id", "lir_class", "bytes", "has_source", "source", "disasm"}

// Row renders the record as one table row, columns in Header order.
func (r CodeRecord) Row() []string {
	return []string{
		r.CompilationID,
		r.BlockID,
		r.LIRClass,
		r.Bytes,
		strconv.FormatBool(r.HasSource),
		r.Source,
		r.Disasm,
	}
}

// ScanState carries the enclosing compilation and block across lines.
// It is a value: the classifier returns the successor state instead of
// mutating shared fields.
type ScanState struct {
	Compilation string
	BlockID     string
}

// Emitted is a structurally recognized "Emitted code" line before
// disassembly.
type Emitted struct {
	LIRClass string
	BytesHex string // normalized
	Source   string
}

var (
	compilationRE = regexp.MustCompile(`^\s*CompilationId\s*:(.*)$`)
	blockRE       = regexp.MustCompile(`^\s*Block ID\s*:(\d+)\s*$`)
	emittedRE     = regexp.MustCompile(`^\s*Emitted code for class\s+(.+?)\s*:\s*([0-9A-Fa-f]{2}(?:\s+[0-9A-Fa-f]{2})*)\s+source:\s*(.*)$`)
)

// ScanLine classifies one dump line. It returns the successor state and,
// for an emitted-code line seen inside an established compilation/block
// context, the recognized entry. Unrecognized lines and entries without
// context are noise.
func ScanLine(st ScanState, line string) (ScanState, *Emitted) {
	if m := compilationRE.FindStringSubmatch(line); m != nil {
		return ScanState{Compilation: strings.TrimSpace(m[1])}, nil
	}
	if m := blockRE.FindStringSubmatch(line); m != nil {
		st.BlockID = m[1]
		return st, nil
	}
	if m := emittedRE.FindStringSubmatch(line); m != nil {
		if st.Compilation == "" || st.BlockID == "" {
			return st, nil // orphaned entry
		}
		return st, &Emitted{
			LIRClass: strings.TrimSpace(m[1]),
			BytesHex: normalizeSpaces(m[2]),
			Source:   strings.TrimSpace(m[3]),
		}
	}
	return st, nil
}

// Sink receives records as they are produced, in input order.
type Sink func(CodeRecord) error

// Stats summarizes one ingestion pass.
type Stats struct {
	Records        int
	DisasmFailures int
}

// Ingest reads dump lines from r, disassembles each emitted-code entry with
// dis, and streams the resulting records into sink. Disassembly failures
// record a placeholder and continue; only read or sink errors abort.
func Ingest(r io.Reader, dis disasm.Func, sink Sink, log *zap.Logger) (Stats, error) {
	if log == nil {
		log = zap.NewNop()
	}
	var stats Stats
	var st ScanState

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		var e *Emitted
		st, e = ScanLine(st, sc.Text())
		if e == nil {
			continue
		}

		code, err := parseHex(e.BytesHex)
		var text string
		if err == nil {
			text, err = dis(code)
		}
		if err != nil {
			text = disasm.Placeholder(err)
			stats.DisasmFailures++
			log.Debug("disassembly failed",
				zap.String("block", st.BlockID),
				zap.Error(err))
		}

		rec := CodeRecord{
			CompilationID: st.Compilation,
			BlockID:       st.BlockID,
			LIRClass:      e.LIRClass,
			Bytes:         e.BytesHex,
			HasSource:     !strings.EqualFold(e.Source, "null"),
			Source:        e.Source,
			Disasm:        text,
		}
		if err := sink(rec); err != nil {
			return stats, fmt.Errorf("write record: %w", err)
		}
		stats.Records++
	}
	if err := sc.Err(); err != nil {
		return stats, fmt.Errorf("read dump: %w", err)
	}
	return stats, nil
}

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func parseHex(hexWithSpaces string) ([]byte, error) {
	parts := strings.Fields(hexWithSpaces)
	out := make([]byte, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseUint(p, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad hex byte %q: %w", p, err)
		}
		out[i] = byte(v)
	}
	return out, nil
}
