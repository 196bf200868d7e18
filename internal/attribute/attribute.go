// Package attribute distributes profiler timing samples across per-block
// source histograms and aggregates the shares by originating method.
package attribute

import (
	"strings"

	"github.com/HumphreyHCB/BuboExperiments/internal/blocks"
	"github.com/HumphreyHCB/BuboExperiments/internal/markers"
)

// MethodTime accumulates one method's share of the measured time and the
// blocks that contributed to it.
type MethodTime struct {
	Method string
	Time   float64
	Blocks map[string]struct{}
}

// Result is one full attribution pass over a marker list.
type Result struct {
	ReassignNull bool

	Matched   int
	Unmatched int

	TotalMarkerTime   float64
	MatchedTime       float64
	UnmatchedTime     float64
	UnknownSourceTime float64 // null-bucket time inside matched blocks

	order    []*MethodTime
	byMethod map[string]*MethodTime
}

// Methods returns per-method totals in first-attribution order.
func (r *Result) Methods() []*MethodTime {
	return r.order
}

// AttributedTime is the matched time that reached a named method.
func (r *Result) AttributedTime() float64 {
	return r.MatchedTime - r.UnknownSourceTime
}

// Run attributes every marker against the block lookup. A marker whose
// block is absent, empty, or instruction-free is unmatched and keeps its
// full time in UnmatchedTime. For matched markers the time is split
// proportionally over the block's per-source instruction counts; the null
// bucket's share lands in UnknownSourceTime. With reassignNull set, each
// matched histogram first donates its null count to the entry immediately
// following the null bucket (one-shot, forward only; a trailing null
// bucket keeps its mass).
func Run(ms []markers.Marker, mixes map[string]*blocks.Mix, reassignNull bool) *Result {
	r := &Result{
		ReassignNull:    reassignNull,
		TotalMarkerTime: markers.Total(ms),
		byMethod:        make(map[string]*MethodTime),
	}

	for _, m := range ms {
		mix := mixes[m.BlockID]
		if mix == nil || mix.TotalInstructions <= 0 || mix.Sources.Len() == 0 {
			r.Unmatched++
			r.UnmatchedTime += m.BaseCpuTime
			continue
		}
		r.Matched++
		r.MatchedTime += m.BaseCpuTime

		counts := mix.Sources
		if reassignNull && counts.Get(blocks.NullSource) > 0 {
			counts = counts.Clone()
			ReassignNullForward(counts)
		}

		total := float64(mix.TotalInstructions)
		for _, src := range counts.Keys() {
			cnt := counts.Get(src)
			if cnt <= 0 {
				continue
			}
			t := m.BaseCpuTime * float64(cnt) / total

			if src == blocks.NullSource {
				r.UnknownSourceTime += t
				continue
			}
			mt := r.byMethod[MethodKey(src)]
			if mt == nil {
				mt = &MethodTime{Method: MethodKey(src), Blocks: make(map[string]struct{})}
				r.byMethod[mt.Method] = mt
				r.order = append(r.order, mt)
			}
			mt.Time += t
			mt.Blocks[m.BlockID] = struct{}{}
		}
	}
	return r
}

// ReassignNullForward moves the whole null count into the entry directly
// after the null bucket, in stored order. If no entry follows, the null
// bucket is left untouched. This is a single forward donation, not a
// redistribution.
func ReassignNullForward(h *blocks.Histogram) {
	nullCnt := h.Get(blocks.NullSource)
	if nullCnt <= 0 {
		return
	}
	keys := h.Keys()
	for i, k := range keys {
		if k != blocks.NullSource {
			continue
		}
		if i+1 < len(keys) {
			next := keys[i+1]
			h.Set(next, h.Get(next)+nullCnt)
			h.Set(blocks.NullSource, 0)
		}
		return
	}
}

// MethodKey derives the method name from a source annotation: strips a
// leading "at " prefix, then truncates at the first parenthesis and at the
// first space.
func MethodKey(source string) string {
	s := strings.TrimSpace(source)
	if s == "" {
		return "(unknown)"
	}
	if rest, ok := strings.CutPrefix(s, "at "); ok {
		s = strings.TrimSpace(rest)
	}
	if i := strings.IndexByte(s, '('); i > 0 {
		s = s[:i]
	}
	if i := strings.IndexByte(s, ' '); i > 0 {
		s = s[:i]
	}
	if s == "" {
		return "(unknown)"
	}
	return s
}
