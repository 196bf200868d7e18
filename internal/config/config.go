// Package config holds the explicit pipeline configuration: every input
// and output path plus the target compilation filter, passed into each
// stage at construction instead of living in package globals.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config enumerates the pipeline's files and knobs.
type Config struct {
	// Dump is the raw compiler machine-code dump to ingest.
	Dump string `yaml:"dump"`
	// Records is the code-record table produced by ingestion.
	Records string `yaml:"records"`
	// Compilation filters aggregation to one compilation unit id.
	Compilation string `yaml:"compilation"`
	// Blocks is the block-summary table.
	Blocks string `yaml:"blocks"`
	// Markers is the profiler's timing sample document.
	Markers string `yaml:"markers"`
	// Report and ReportReassigned are the two method-time reports (the
	// plain pass and the null-reassignment pass).
	Report           string `yaml:"report"`
	ReportReassigned string `yaml:"report_reassigned"`
	// RipDump is the profiler's raw per-block instruction listing and
	// Timed the table extracted from it.
	RipDump string `yaml:"rip_dump"`
	Timed   string `yaml:"timed"`
	// Bridge associates profiler block ids with compiler block ids;
	// defaults to the marker document, which usually carries both.
	Bridge string `yaml:"bridge"`
	// Aligned is the position-aligned instruction table.
	Aligned string `yaml:"aligned"`
	// Graph is the DOT contribution graph.
	Graph string `yaml:"graph"`

	LogLevel string `yaml:"log_level"`
}

// Default returns the conventional file layout.
func Default() Config {
	return Config{
		Records:          "ProcessedMachineCode.csv",
		Blocks:           "BlockSummary.csv",
		Markers:          "MarkerPhaseInfo.json",
		Report:           "MethodTimeReport.csv",
		ReportReassigned: "MethodTimeReport_BestGuess.csv",
		Timed:            "BlockInstructionTimes.csv",
		Aligned:          "AlignedRows.csv",
		Graph:            "Contributions.dot",
		LogLevel:         "info",
	}
}

// Load reads a YAML config over the defaults. An empty path returns the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if cfg.Bridge == "" {
		cfg.Bridge = cfg.Markers
	}
	return cfg, nil
}
