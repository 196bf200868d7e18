// Package blocks aggregates code records into per-block instruction and
// source histograms for one target compilation.
package blocks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/HumphreyHCB/BuboExperiments/internal/disasm"
	"github.com/HumphreyHCB/BuboExperiments/internal/ingest"
)

// ErrEmptyInput marks a required input table that is empty or missing its
// header row. main maps it to exit code 1.
var ErrEmptyInput = errors.New("empty input")

// Block is the per-block histogram built from code records.
type Block struct {
	ID                string
	TotalInstructions int64
	Disasm            string // all record disassemblies, joined
	WithSource        int64  // instructions carrying a non-null source
	Sources           *Histogram
}

// DistinctSources counts source buckets excluding the null bucket.
func (b *Block) DistinctSources() int {
	n := 0
	for _, k := range b.Sources.Keys() {
		if k != NullSource {
			n++
		}
	}
	return n
}

// SourceRatio is instructions-with-known-source over total, zero for an
// empty block.
func (b *Block) SourceRatio() float64 {
	if b.TotalInstructions == 0 {
		return 0
	}
	return float64(b.WithSource) / float64(b.TotalInstructions)
}

// Aggregator folds code records into blocks, keyed by block id, filtered to
// one compilation. Blocks come out in first-seen order.
type Aggregator struct {
	target string
	order  []*Block
	byID   map[string]*Block
}

func NewAggregator(targetCompilation string) *Aggregator {
	return &Aggregator{target: targetCompilation, byID: make(map[string]*Block)}
}

// Add folds one record in. Records from other compilations, records without
// a block id, and records with zero decoded instructions contribute nothing.
func (a *Aggregator) Add(rec ingest.CodeRecord) {
	if rec.CompilationID != a.target || rec.BlockID == "" {
		return
	}
	n := int64(disasm.Count(rec.Disasm))
	if n == 0 {
		return
	}

	b := a.byID[rec.BlockID]
	if b == nil {
		b = &Block{ID: rec.BlockID, Sources: NewHistogram()}
		a.byID[rec.BlockID] = b
		a.order = append(a.order, b)
	}

	if b.Disasm != "" && strings.TrimSpace(rec.Disasm) != "" {
		b.Disasm += disasm.Separator
	}
	b.Disasm += rec.Disasm

	b.TotalInstructions += n
	source := rec.Source
	if !rec.HasSource {
		source = NullSource
	}
	if rec.HasSource {
		b.WithSource += n
	}
	b.Sources.Add(source, n)
}

// Blocks returns the aggregated blocks in first-seen order.
func (a *Aggregator) Blocks() []*Block {
	return a.order
}

// SummaryHeader is the column list of the block-summary table.
var SummaryHeader = []string{"block_id", "total_instructions", "disasm", "distinct_sources", "has_source_ratio", "source_counts_json"}

// SummaryRow renders the block as one summary-table row.
func (b *Block) SummaryRow() []string {
	return []string{
		b.ID,
		strconv.FormatInt(b.TotalInstructions, 10),
		b.Disasm,
		strconv.Itoa(b.DistinctSources()),
		fmt.Sprintf("%.3f", b.SourceRatio()),
		EncodeCounts(b.Sources),
	}
}
