package blocks

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/HumphreyHCB/BuboExperiments/internal/ingest"
)

// ReadRecords streams the persisted code-record table into fn in row
// order. Rows with fewer fields than the schema are skipped. A table
// without a header row is ErrEmptyInput.
func ReadRecords(r io.Reader, fn func(ingest.CodeRecord) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	if _, err := cr.Read(); err == io.EOF {
		return ErrEmptyInput
	} else if err != nil {
		return fmt.Errorf("read records header: %w", err)
	}

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read records row: %w", err)
		}
		if len(row) < len(ingest.Header) {
			continue
		}
		rec := ingest.CodeRecord{
			CompilationID: row[0],
			BlockID:       row[1],
			LIRClass:      row[2],
			Bytes:         row[3],
			HasSource:     strings.EqualFold(row[4], "true"),
			Source:        row[5],
			Disasm:        row[6],
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}
