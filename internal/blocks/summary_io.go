package blocks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Column positions in the block-summary table.
const (
	colBlockID = 0
	colTotal   = 1
	colCounts  = 5
)

// Mix is the slice of a block the attributor needs: identity, instruction
// total, and the ordered source histogram.
type Mix struct {
	ID                string
	TotalInstructions int64
	Sources           *Histogram
}

// WriteSummary writes the block-summary table, one row per block in the
// given order.
func WriteSummary(w io.Writer, bs []*Block) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(SummaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	for _, b := range bs {
		if err := cw.Write(b.SummaryRow()); err != nil {
			return fmt.Errorf("write summary row %s: %w", b.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadSummary loads the summary table into a block-id lookup. Rows with
// fewer columns than the schema are skipped; an unparsable instruction
// total reads as zero. A table without a header row is ErrEmptyInput.
func ReadSummary(r io.Reader) (map[string]*Mix, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err == io.EOF {
		return nil, ErrEmptyInput
	} else if err != nil {
		return nil, fmt.Errorf("read summary header: %w", err)
	}

	mixes := make(map[string]*Mix)
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read summary row: %w", err)
		}
		if len(row) <= colCounts {
			continue
		}
		id := row[colBlockID]
		if id == "" {
			continue
		}
		total, _ := strconv.ParseInt(row[colTotal], 10, 64)
		mixes[id] = &Mix{
			ID:                id,
			TotalInstructions: total,
			Sources:           DecodeCounts(row[colCounts]),
		}
	}
	return mixes, nil
}
