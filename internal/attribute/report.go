package attribute

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// ReportHeader is the column list of the method-time report.
var ReportHeader = []string{"method", "time", "percent_of_total", "blocks_contributing"}

// WriteReport writes the per-method report sorted by time descending.
// The sort is stable over first-attribution order, so reruns on the same
// inputs are byte-identical. Percent is zero when no marker time exists.
func (r *Result) WriteReport(w io.Writer) error {
	rows := make([]*MethodTime, len(r.order))
	copy(rows, r.order)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Time > rows[j].Time })

	cw := csv.NewWriter(w)
	if err := cw.Write(ReportHeader); err != nil {
		return fmt.Errorf("write report header: %w", err)
	}
	for _, mt := range rows {
		pct := 0.0
		if r.TotalMarkerTime != 0 {
			pct = mt.Time * 100 / r.TotalMarkerTime
		}
		row := []string{
			mt.Method,
			fmt.Sprintf("%.3f", mt.Time),
			fmt.Sprintf("%.2f", pct),
			strconv.Itoa(len(mt.Blocks)),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write report row %s: %w", mt.Method, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
