package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Records != "ProcessedMachineCode.csv" {
		t.Errorf("records = %q", cfg.Records)
	}
	if cfg.Bridge != cfg.Markers {
		t.Errorf("bridge should default to the marker document: %q vs %q", cfg.Bridge, cfg.Markers)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
}

func TestLoadOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blocktime.yaml")
	body := `dump: dump.txt
compilation: "HotSpotCompilation-78[Queens.placeQueen(int)]"
markers: samples.json
log_level: debug
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Dump != "dump.txt" || cfg.LogLevel != "debug" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Compilation != "HotSpotCompilation-78[Queens.placeQueen(int)]" {
		t.Errorf("compilation = %q", cfg.Compilation)
	}
	// Unset fields keep their defaults; bridge follows the marker file.
	if cfg.Report != "MethodTimeReport.csv" {
		t.Errorf("report = %q", cfg.Report)
	}
	if cfg.Bridge != "samples.json" {
		t.Errorf("bridge = %q", cfg.Bridge)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("missing config file must error")
	}
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("malformed config must error")
	}
}
