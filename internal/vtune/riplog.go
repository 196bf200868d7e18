// Package vtune extracts per-block instruction listings with timing from
// the profiler's raw disassembly dump.
package vtune

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"

	"go.uber.org/zap"
)

// TimedLine is one addressed instruction inside a profiler block. Times
// stay textual: an absent per-line time is the empty string, and a block
// CPU time the profiler reported as null is the empty string too.
type TimedLine struct {
	BlockID      string
	BlockCpuTime string
	Text         string
	Time         string
}

// TimedHeader is the column list of the timed-instruction table.
var TimedHeader = []string{"block_id", "block_cpu_time", "line_text", "line_time"}

var (
	blockHdrRE = regexp.MustCompile(`^Block\s+Block\s+(\d+)\s*:\s*$`)
	cpuTimeRE  = regexp.MustCompile(`(?i)^CPU\s+Time:\s*(null|\d+(?:\.\d+)?)\s*$`)
	// Addressed instruction with an optional trailing " 0.015s" time.
	addrLineRE  = regexp.MustCompile(`^(0x[0-9a-fA-F]+)\s+(.*?)(?:\s+(\d+(?:\.\d+)?)s\s*)?$`)
	bareBlockRE = regexp.MustCompile(`^Block\s+(\d+)\s*$`)
)

// ParseRip reads the profiler's raw dump and returns the timed instruction
// lines in encounter order. Lines before the first block header and lines
// matching no recognized shape are noise. The profiler repeats a "Block N"
// pseudo-instruction inside block N; it is skipped.
func ParseRip(r io.Reader, log *zap.Logger) ([]TimedLine, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var out []TimedLine
	var blockID, blockCpuTime string

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}

		if m := blockHdrRE.FindStringSubmatch(line); m != nil {
			blockID = m[1]
			blockCpuTime = ""
			continue
		}
		if m := cpuTimeRE.FindStringSubmatch(line); m != nil {
			if strings.EqualFold(m[1], "null") {
				blockCpuTime = ""
			} else {
				blockCpuTime = m[1]
			}
			continue
		}
		if m := addrLineRE.FindStringSubmatch(line); m != nil {
			if blockID == "" {
				continue
			}
			text := strings.TrimSpace(m[2])
			if bm := bareBlockRE.FindStringSubmatch(text); bm != nil && bm[1] == blockID {
				continue // the block's self-referential header row
			}
			out = append(out, TimedLine{
				BlockID:      blockID,
				BlockCpuTime: blockCpuTime,
				Text:         text,
				Time:         m[3],
			})
		}
	}
	if err := sc.Err(); err != nil {
		return out, fmt.Errorf("read rip dump: %w", err)
	}
	log.Debug("parsed rip dump", zap.Int("lines", len(out)))
	return out, nil
}

// WriteTimed writes the timed-instruction table.
func WriteTimed(w io.Writer, lines []TimedLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(TimedHeader); err != nil {
		return fmt.Errorf("write timed header: %w", err)
	}
	for _, l := range lines {
		row := []string{l.BlockID, l.BlockCpuTime, l.Text, l.Time}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write timed row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
