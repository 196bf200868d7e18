package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/blocks"
	"github.com/HumphreyHCB/BuboExperiments/internal/config"
	"github.com/HumphreyHCB/BuboExperiments/internal/ingest"
)

func cmdBlocks(args []string) error {
	fs := flag.NewFlagSet("blocks", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	in := fs.String("in", "", "code-record table to aggregate")
	out := fs.String("out", "", "block-summary table to write")
	compilation := fs.String("compilation", "", "target compilation unit id")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.Records, *in)
	applyFlag(&cfg.Blocks, *out)
	applyFlag(&cfg.Compilation, *compilation)
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runBlocks(cfg, log)
}

func runBlocks(cfg config.Config, log *zap.Logger) error {
	if cfg.Compilation == "" {
		return fmt.Errorf("%w: blocks needs --compilation (or compilation: in the config)", errUsage)
	}

	in, err := os.Open(cfg.Records)
	if err != nil {
		return fmt.Errorf("open records: %w", err)
	}
	defer in.Close()

	agg := blocks.NewAggregator(cfg.Compilation)
	if err := blocks.ReadRecords(in, func(rec ingest.CodeRecord) error {
		agg.Add(rec)
		return nil
	}); err != nil {
		return fmt.Errorf("%s: %w", cfg.Records, err)
	}

	bs := agg.Blocks()
	log.Info("aggregated records",
		zap.String("compilation", cfg.Compilation),
		zap.Int("blocks", len(bs)))

	out, err := os.Create(cfg.Blocks)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Blocks, err)
	}
	if err := blocks.WriteSummary(out, bs); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", cfg.Blocks, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cfg.Blocks, err)
	}

	fmt.Printf("Aggregated %d blocks -> %s\n", len(bs), cfg.Blocks)
	return nil
}
