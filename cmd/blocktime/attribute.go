package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/attribute"
	"github.com/HumphreyHCB/BuboExperiments/internal/blocks"
	"github.com/HumphreyHCB/BuboExperiments/internal/config"
	"github.com/HumphreyHCB/BuboExperiments/internal/markers"
)

func cmdAttribute(args []string) error {
	fs := flag.NewFlagSet("attribute", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	blocksIn := fs.String("blocks", "", "block-summary table")
	markersIn := fs.String("markers", "", "profiler marker document")
	out := fs.String("out", "", "method-time report to write")
	outReassigned := fs.String("out-reassigned", "", "null-reassigned report to write")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.Blocks, *blocksIn)
	applyFlag(&cfg.Markers, *markersIn)
	applyFlag(&cfg.Report, *out)
	applyFlag(&cfg.ReportReassigned, *outReassigned)
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runAttribute(cfg, log)
}

// loadAttributionInputs reads the block-summary table and the marker
// document. A missing marker file yields an empty marker list.
func loadAttributionInputs(cfg config.Config, log *zap.Logger) (map[string]*blocks.Mix, []markers.Marker, error) {
	bf, err := os.Open(cfg.Blocks)
	if err != nil {
		return nil, nil, fmt.Errorf("open blocks: %w", err)
	}
	mixes, err := blocks.ReadSummary(bf)
	bf.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", cfg.Blocks, err)
	}

	ms, err := markers.Load(cfg.Markers, log)
	if err != nil {
		return nil, nil, err
	}
	return mixes, ms, nil
}

func runAttribute(cfg config.Config, log *zap.Logger) error {
	mixes, ms, err := loadAttributionInputs(cfg, log)
	if err != nil {
		return err
	}

	plain := attribute.Run(ms, mixes, false)
	guess := attribute.Run(ms, mixes, true)

	if err := writeReportFile(cfg.Report, plain); err != nil {
		return err
	}
	if err := writeReportFile(cfg.ReportReassigned, guess); err != nil {
		return err
	}

	log.Info("attribution done",
		zap.Int("markers", len(ms)),
		zap.Int("methods", len(plain.Methods())))
	printAttributionSummary(os.Stdout, cfg, plain, guess)
	return nil
}

func writeReportFile(path string, res *attribute.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := res.WriteReport(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

func printAttributionSummary(w io.Writer, cfg config.Config, plain, guess *attribute.Result) {
	fmt.Fprintf(w, "Markers: %d matched, %d unmatched\n", plain.Matched, plain.Unmatched)
	fmt.Fprintf(w, "Total marker time:    %.3f\n", plain.TotalMarkerTime)
	fmt.Fprintf(w, "Matched time:         %.3f\n", plain.MatchedTime)
	fmt.Fprintf(w, "Unmatched time:       %.3f\n", plain.UnmatchedTime)
	fmt.Fprintf(w, "Unknown-source time:  %.3f\n", plain.UnknownSourceTime)
	fmt.Fprintf(w, "Attributed time:      %.3f plain, %.3f with null reassignment (+%.3f)\n",
		plain.AttributedTime(), guess.AttributedTime(),
		guess.AttributedTime()-plain.AttributedTime())
	fmt.Fprintf(w, "Reports: %s, %s\n", cfg.Report, cfg.ReportReassigned)
}
