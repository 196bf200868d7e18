package markers

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestParseBasic(t *testing.T) {
	doc := `[
  {"GraalID": "12", "BaseCpuTime": 0.25, "Tool": "vtune"},
  {"GraalID": 7, "BaseCpuTime": "1.5"},
  {"GraalID": "12", "BaseCpuTime": 0.75}
]`
	ms := Parse(doc, nil)
	if len(ms) != 3 {
		t.Fatalf("got %d markers, want 3", len(ms))
	}
	if ms[0].BlockID != "12" || ms[0].BaseCpuTime != 0.25 {
		t.Errorf("ms[0] = %+v", ms[0])
	}
	if ms[1].BlockID != "7" || ms[1].BaseCpuTime != 1.5 {
		t.Errorf("ms[1] = %+v", ms[1])
	}
	// Duplicate ids stay distinct events.
	if ms[2].BlockID != "12" || ms[2].BaseCpuTime != 0.75 {
		t.Errorf("ms[2] = %+v", ms[2])
	}
	if got := Total(ms); math.Abs(got-2.5) > 1e-9 {
		t.Errorf("Total = %f, want 2.5", got)
	}
}

func TestParseSchemaDrift(t *testing.T) {
	// Concatenated objects, unrelated fields, alternate field names.
	doc := `log preamble
{"block_id": "Block 4", "time": 2.0, "junk": [1,2,3]}
{"CpuTime": 0.5, "GraalBlockID": "9"}
{"unrelated": true}
{"GraalID": "3"}
{"GraalID": "abc", "BaseCpuTime": 1.0}
`
	ms := Parse(doc, nil)
	if len(ms) != 2 {
		t.Fatalf("got %d markers, want 2: %+v", len(ms), ms)
	}
	if ms[0].BlockID != "4" || ms[0].BaseCpuTime != 2.0 {
		t.Errorf("ms[0] = %+v (decorated id should normalize to digits)", ms[0])
	}
	if ms[1].BlockID != "9" || ms[1].BaseCpuTime != 0.5 {
		t.Errorf("ms[1] = %+v", ms[1])
	}
}

func TestParseAliasPrecedence(t *testing.T) {
	// BaseCpuTime outranks time in the alias table regardless of field order.
	ms := Parse(`{"GraalID":1,"time":9.0,"BaseCpuTime":2.0}`, nil)
	if len(ms) != 1 || ms[0].BaseCpuTime != 2.0 {
		t.Fatalf("ms = %+v, want BaseCpuTime 2.0", ms)
	}
}

func TestParseNegativeTimeSkipped(t *testing.T) {
	ms := Parse(`{"GraalID":1,"BaseCpuTime":-2.0}`, nil)
	if len(ms) != 0 {
		t.Fatalf("negative time should be skipped: %+v", ms)
	}
}

func TestLoadMissingFile(t *testing.T) {
	ms, err := Load(filepath.Join(t.TempDir(), "absent.json"), nil)
	if err != nil {
		t.Fatalf("missing file should not be an error: %v", err)
	}
	if len(ms) != 0 {
		t.Fatalf("got %d markers from missing file", len(ms))
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "markers.json")
	if err := os.WriteFile(path, []byte(`{"GraalID":5,"BaseCpuTime":1.0}`), 0o644); err != nil {
		t.Fatal(err)
	}
	ms, err := Load(path, nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(ms) != 1 || ms[0].BlockID != "5" {
		t.Fatalf("ms = %+v", ms)
	}
}
