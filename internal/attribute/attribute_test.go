package attribute

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/HumphreyHCB/BuboExperiments/internal/blocks"
	"github.com/HumphreyHCB/BuboExperiments/internal/markers"
)

func mix(id string, total int64, pairs ...any) *blocks.Mix {
	h := blocks.NewHistogram()
	for i := 0; i < len(pairs); i += 2 {
		h.Add(pairs[i].(string), int64(pairs[i+1].(int)))
	}
	return &blocks.Mix{ID: id, TotalInstructions: total, Sources: h}
}

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestAttributeNullLast(t *testing.T) {
	// Histogram {"methodA":6, "null":4}, total 10, marker 2.0s:
	// methodA 1.2s, unknown 0.8s. Reassignment does nothing because null
	// is the last bucket.
	mixes := map[string]*blocks.Mix{
		"1": mix("1", 10, "at Queens.methodA(Queens.java:5)", 6, "null", 4),
	}
	ms := []markers.Marker{{BlockID: "1", BaseCpuTime: 2.0}}

	for _, reassign := range []bool{false, true} {
		r := Run(ms, mixes, reassign)
		if r.Matched != 1 || r.Unmatched != 0 {
			t.Fatalf("reassign=%v: matched=%d unmatched=%d", reassign, r.Matched, r.Unmatched)
		}
		if !approx(r.UnknownSourceTime, 0.8) {
			t.Errorf("reassign=%v: unknown = %f, want 0.8", reassign, r.UnknownSourceTime)
		}
		methods := r.Methods()
		if len(methods) != 1 || methods[0].Method != "Queens.methodA" {
			t.Fatalf("reassign=%v: methods = %+v", reassign, methods)
		}
		if !approx(methods[0].Time, 1.2) {
			t.Errorf("reassign=%v: methodA = %f, want 1.2", reassign, methods[0].Time)
		}
	}
}

func TestAttributeNullFirstDonates(t *testing.T) {
	// Histogram {"null":4, "methodB":6}: reassignment moves the 4 into
	// methodB, which then receives the full 2.0s.
	mixes := map[string]*blocks.Mix{
		"1": mix("1", 10, "null", 4, "at Queens.methodB(Queens.java:9)", 6),
	}
	ms := []markers.Marker{{BlockID: "1", BaseCpuTime: 2.0}}

	plain := Run(ms, mixes, false)
	if !approx(plain.UnknownSourceTime, 0.8) {
		t.Errorf("plain unknown = %f, want 0.8", plain.UnknownSourceTime)
	}

	reass := Run(ms, mixes, true)
	if !approx(reass.UnknownSourceTime, 0) {
		t.Errorf("reassigned unknown = %f, want 0", reass.UnknownSourceTime)
	}
	methods := reass.Methods()
	if len(methods) != 1 || !approx(methods[0].Time, 2.0) {
		t.Fatalf("methods = %+v, want methodB 2.0", methods)
	}

	// The donation must not touch the shared histogram.
	if got := mixes["1"].Sources.Get("null"); got != 4 {
		t.Errorf("source histogram mutated: null = %d, want 4", got)
	}
}

func TestAttributeUnmatched(t *testing.T) {
	mixes := map[string]*blocks.Mix{
		"1": mix("1", 10, "at A.b(A.java:1)", 10),
		"2": mix("2", 0),
		"3": {ID: "3", TotalInstructions: 5, Sources: blocks.NewHistogram()},
	}
	ms := []markers.Marker{
		{BlockID: "99", BaseCpuTime: 1.0}, // no such block
		{BlockID: "2", BaseCpuTime: 2.0},  // zero instructions
		{BlockID: "3", BaseCpuTime: 3.0},  // empty histogram
		{BlockID: "1", BaseCpuTime: 4.0},
	}
	r := Run(ms, mixes, false)
	if r.Matched != 1 || r.Unmatched != 3 {
		t.Fatalf("matched=%d unmatched=%d, want 1/3", r.Matched, r.Unmatched)
	}
	if !approx(r.UnmatchedTime, 6.0) || !approx(r.MatchedTime, 4.0) {
		t.Errorf("times: matched=%f unmatched=%f", r.MatchedTime, r.UnmatchedTime)
	}
}

func TestConservation(t *testing.T) {
	mixes := map[string]*blocks.Mix{
		"1": mix("1", 10, "null", 4, "at A.b(A.java:1)", 6),
		"2": mix("2", 3, "at C.d(C.java:2)", 3),
	}
	ms := []markers.Marker{
		{BlockID: "1", BaseCpuTime: 2.0},
		{BlockID: "2", BaseCpuTime: 0.5},
		{BlockID: "1", BaseCpuTime: 1.25},
		{BlockID: "404", BaseCpuTime: 0.75},
	}

	for _, reassign := range []bool{false, true} {
		r := Run(ms, mixes, reassign)
		if !approx(r.MatchedTime+r.UnmatchedTime, r.TotalMarkerTime) {
			t.Errorf("reassign=%v: conservation broken: %f + %f != %f",
				reassign, r.MatchedTime, r.UnmatchedTime, r.TotalMarkerTime)
		}
		if r.UnknownSourceTime > r.MatchedTime+1e-9 {
			t.Errorf("reassign=%v: unknown %f exceeds matched %f",
				reassign, r.UnknownSourceTime, r.MatchedTime)
		}
	}

	// Reassignment never decreases attributed time.
	plain := Run(ms, mixes, false)
	reass := Run(ms, mixes, true)
	if reass.AttributedTime() < plain.AttributedTime()-1e-9 {
		t.Errorf("attributed time decreased: %f -> %f",
			plain.AttributedTime(), reass.AttributedTime())
	}
	if !approx(reass.MatchedTime, plain.MatchedTime) {
		t.Errorf("reassignment changed matched time: %f -> %f",
			plain.MatchedTime, reass.MatchedTime)
	}
}

func TestReassignNullForward(t *testing.T) {
	h := blocks.NewHistogram()
	h.Add("null", 4)
	h.Add("b", 6)
	h.Add("c", 2)
	before := h.Total()
	ReassignNullForward(h)
	if h.Get("null") != 0 || h.Get("b") != 10 || h.Get("c") != 2 {
		t.Errorf("donation wrong: null=%d b=%d c=%d (only the immediate successor receives)",
			h.Get("null"), h.Get("b"), h.Get("c"))
	}
	if h.Total() != before {
		t.Errorf("total changed: %d -> %d", before, h.Total())
	}

	// Null last: untouched.
	h2 := blocks.NewHistogram()
	h2.Add("a", 6)
	h2.Add("null", 4)
	ReassignNullForward(h2)
	if h2.Get("null") != 4 || h2.Get("a") != 6 {
		t.Error("trailing null bucket must keep its mass")
	}

	// No null: no-op.
	h3 := blocks.NewHistogram()
	h3.Add("a", 6)
	ReassignNullForward(h3)
	if h3.Get("a") != 6 {
		t.Error("histogram without null changed")
	}
}

func TestMethodKey(t *testing.T) {
	cases := []struct{ in, want string }{
		{"at Queens.placeQueen(Queens.java:42)", "Queens.placeQueen"},
		{"Queens.getRow(Queens.java:9)", "Queens.getRow"},
		{"at Queens.run extra trailing", "Queens.run"},
		{"plain", "plain"},
		{"", "(unknown)"},
		{"   ", "(unknown)"},
		// A leading parenthesis is not a truncation point.
		{"(starts.with.paren)", "(starts.with.paren)"},
	}
	for _, c := range cases {
		if got := MethodKey(c.in); got != c.want {
			t.Errorf("MethodKey(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestWriteReport(t *testing.T) {
	mixes := map[string]*blocks.Mix{
		"1": mix("1", 4, "at A.slow(A.java:1)", 1, "at B.fast(B.java:2)", 3),
		"2": mix("2", 2, "at A.slow(A.java:1)", 2),
	}
	ms := []markers.Marker{
		{BlockID: "1", BaseCpuTime: 4.0},
		{BlockID: "2", BaseCpuTime: 2.0},
		{BlockID: "9", BaseCpuTime: 2.0},
	}
	r := Run(ms, mixes, false)

	var buf bytes.Buffer
	if err := r.WriteReport(&buf); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), buf.String())
	}
	if lines[0] != "method,time,percent_of_total,blocks_contributing" {
		t.Errorf("header = %q", lines[0])
	}
	// A.slow: 1.0 + 2.0 = 3.0 over two blocks; B.fast: 3.0 over one block.
	// Equal times keep first-attribution order (A.slow was seen first).
	if lines[1] != "A.slow,3.000,37.50,2" {
		t.Errorf("row 1 = %q", lines[1])
	}
	if lines[2] != "B.fast,3.000,37.50,1" {
		t.Errorf("row 2 = %q", lines[2])
	}
}

func TestWriteReportZeroTotal(t *testing.T) {
	r := Run(nil, nil, false)
	var buf bytes.Buffer
	if err := r.WriteReport(&buf); err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "method,time,percent_of_total,blocks_contributing" {
		t.Errorf("empty run report = %q", got)
	}
}
