// Package markers loads the external profiler's per-block timing samples.
package markers

import (
	"errors"
	"io/fs"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/jsonx"
)

// Marker is one timing sample: a block identifier in the profiler's own
// numbering plus the measured CPU time. Duplicate identifiers are distinct
// events and are never merged.
type Marker struct {
	BlockID     string
	BaseCpuTime float64
}

// Field aliases accepted for the two required fields, matched
// case-sensitively; the first alias present wins. Everything else in a
// sample object is ignored.
var (
	BlockIDAliases = []string{"GraalID", "GraalBlockID", "BlockId", "block_id"}
	TimeAliases    = []string{"BaseCpuTime", "CpuTime", "base_cpu_time", "time"}
)

// Load reads the marker file. A missing file is an empty dataset, not an
// error: the attribution pass then reports every block unmatched.
func Load(path string, log *zap.Logger) ([]Marker, error) {
	if log == nil {
		log = zap.NewNop()
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn("marker file missing, continuing with no samples", zap.String("path", path))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return Parse(string(data), log), nil
}

// Parse extracts markers from a JSON-ish document in encounter order.
// Objects missing either required field, or whose values do not yield an
// id and a non-negative time, are skipped.
func Parse(text string, log *zap.Logger) []Marker {
	if log == nil {
		log = zap.NewNop()
	}
	var out []Marker
	skipped := 0
	for _, frag := range jsonx.Fragments(text) {
		for _, obj := range jsonx.Objects(frag) {
			if len(obj) == 0 {
				continue
			}
			m, ok := markerFromObject(obj)
			if !ok {
				skipped++
				continue
			}
			out = append(out, m)
		}
	}
	if skipped > 0 {
		log.Debug("skipped marker objects without usable fields", zap.Int("count", skipped))
	}
	return out
}

func markerFromObject(obj []jsonx.Pair) (Marker, bool) {
	id, ok := lookupID(obj, BlockIDAliases)
	if !ok {
		return Marker{}, false
	}
	t, ok := lookupTime(obj, TimeAliases)
	if !ok || t < 0 {
		return Marker{}, false
	}
	return Marker{BlockID: id, BaseCpuTime: t}, true
}

func lookupID(obj []jsonx.Pair, aliases []string) (string, bool) {
	for _, a := range aliases {
		for _, p := range obj {
			if p.Key != a {
				continue
			}
			if id, ok := jsonx.FirstInt(p.String()); ok {
				return id, true
			}
		}
	}
	return "", false
}

func lookupTime(obj []jsonx.Pair, aliases []string) (float64, bool) {
	for _, a := range aliases {
		for _, p := range obj {
			if p.Key != a {
				continue
			}
			if t, err := strconv.ParseFloat(p.String(), 64); err == nil {
				return t, true
			}
		}
	}
	return 0, false
}

// Total sums the measured time of all markers.
func Total(ms []Marker) float64 {
	var t float64
	for _, m := range ms {
		t += m.BaseCpuTime
	}
	return t
}
