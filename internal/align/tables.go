package align

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/HumphreyHCB/BuboExperiments/internal/disasm"
)

// ErrMissingColumns marks an input table whose header lacks a required
// column. main maps it to exit code 1.
var ErrMissingColumns = errors.New("missing required columns")

// Header aliases accepted for each logical column, matched
// case-insensitively in table order.
var (
	blockAliases  = []string{"block_id", "blockid", "block"}
	textAliases   = []string{"line_text", "asm", "disasm", "instruction"}
	timeAliases   = []string{"line_time", "time", "time_sec"}
	sourceAliases = []string{"source", "src"}
)

// TimedLine is one externally timed instruction.
type TimedLine struct {
	Text    string
	Time    float64
	HasTime bool
}

// SummaryLine is one compiler-side instruction with its source annotation.
type SummaryLine struct {
	Text   string
	Source string
}

func findColumn(header []string, aliases []string) int {
	byName := make(map[string]int, len(header))
	for i := len(header) - 1; i >= 0; i-- {
		byName[strings.ToLower(strings.TrimSpace(header[i]))] = i
	}
	for _, a := range aliases {
		if i, ok := byName[a]; ok {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

// LoadTimed reads the timed-instruction table grouped by normalized block
// id, preserving block encounter order. The block and text columns are
// required; a row's time cell that fails to parse reads as no time.
func LoadTimed(r io.Reader) (map[string][]TimedLine, []string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, fmt.Errorf("timed table: %w", ErrMissingColumns)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read timed header: %w", err)
	}
	iBlock := findColumn(header, blockAliases)
	iText := findColumn(header, textAliases)
	iTime := findColumn(header, timeAliases)
	if iBlock < 0 || iText < 0 {
		return nil, nil, fmt.Errorf("timed table needs block and instruction columns: %w", ErrMissingColumns)
	}

	byBlock := make(map[string][]TimedLine)
	var order []string
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read timed row: %w", err)
		}
		block := cell(row, iBlock)
		text := cell(row, iText)
		if block == "" || text == "" {
			continue
		}
		key := NormalizeID(block)
		if _, seen := byBlock[key]; !seen {
			order = append(order, key)
		}

		tl := TimedLine{Text: strings.TrimSpace(text)}
		if raw := strings.TrimSpace(cell(row, iTime)); raw != "" {
			if t, err := strconv.ParseFloat(raw, 64); err == nil {
				tl.Time = t
				tl.HasTime = true
			}
		}
		byBlock[key] = append(byBlock[key], tl)
	}
	return byBlock, order, nil
}

// LoadSummary reads the block-summary table and explodes each block's
// joined disassembly into one line per instruction, all carrying the row's
// source cell (empty when the table has no source column).
func LoadSummary(r io.Reader) (map[string][]SummaryLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("summary table: %w", ErrMissingColumns)
	}
	if err != nil {
		return nil, fmt.Errorf("read summary header: %w", err)
	}
	iBlock := findColumn(header, blockAliases)
	iText := findColumn(header, textAliases)
	iSource := findColumn(header, sourceAliases)
	if iBlock < 0 || iText < 0 {
		return nil, fmt.Errorf("summary table needs block and instruction columns: %w", ErrMissingColumns)
	}

	byBlock := make(map[string][]SummaryLine)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read summary row: %w", err)
		}
		block := cell(row, iBlock)
		text := cell(row, iText)
		if block == "" || text == "" {
			continue
		}
		key := NormalizeID(block)
		source := cell(row, iSource)
		for _, instr := range disasm.Split(text) {
			byBlock[key] = append(byBlock[key], SummaryLine{Text: instr, Source: source})
		}
	}
	return byBlock, nil
}

// AlignedRow is one position in the zip of an external block's timed lines
// against its mapped internal block's instructions. The shorter side's
// cells are empty.
type AlignedRow struct {
	ExternalBlockID string
	ExternalIndex   string
	InternalBlockID string
	InternalIndex   string
	ExternalText    string
	InternalText    string
	Source          string
	Time            string
}

// RowHeader is the column list of the aligned-rows table.
var RowHeader = []string{"VTuneBlockID", "VtuneLineNumber", "GraalBlockID", "GraalLineNumber", "VtuneASM", "GraalASM", "source", "Time"}

// Rows zips every externally timed block against its mapped internal
// block, by position, up to the longer side. Blocks come out in the timed
// table's encounter order; unmapped blocks align against nothing.
func Rows(order []string, timed map[string][]TimedLine, bridge map[string]string, summary map[string][]SummaryLine) []AlignedRow {
	var out []AlignedRow
	for _, vtKey := range order {
		vtLines := timed[vtKey]
		grKey := bridge[vtKey]
		grLines := summary[grKey]

		n := len(vtLines)
		if len(grLines) > n {
			n = len(grLines)
		}
		for i := 0; i < n; i++ {
			row := AlignedRow{
				ExternalBlockID: vtKey,
				InternalBlockID: grKey,
			}
			if i < len(vtLines) {
				row.ExternalIndex = strconv.Itoa(i)
				row.ExternalText = vtLines[i].Text
				if vtLines[i].HasTime {
					row.Time = fmtTime(vtLines[i].Time)
				}
			}
			if i < len(grLines) {
				row.InternalIndex = strconv.Itoa(i)
				row.InternalText = grLines[i].Text
				row.Source = grLines[i].Source
			}
			out = append(out, row)
		}
	}
	return out
}

// WriteRows writes the aligned-rows table.
func WriteRows(w io.Writer, rows []AlignedRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(RowHeader); err != nil {
		return fmt.Errorf("write aligned header: %w", err)
	}
	for _, r := range rows {
		rec := []string{
			r.ExternalBlockID, r.ExternalIndex,
			r.InternalBlockID, r.InternalIndex,
			r.ExternalText, r.InternalText,
			r.Source, r.Time,
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write aligned row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
