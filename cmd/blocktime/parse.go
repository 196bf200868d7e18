package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/config"
	"github.com/HumphreyHCB/BuboExperiments/internal/disasm"
	"github.com/HumphreyHCB/BuboExperiments/internal/ingest"
)

func cmdParse(args []string) error {
	fs := flag.NewFlagSet("parse", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	in := fs.String("in", "", "compiler dump to ingest")
	out := fs.String("out", "", "code-record table to write")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.Dump, *in)
	applyFlag(&cfg.Records, *out)
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runParse(cfg, log)
}

func runParse(cfg config.Config, log *zap.Logger) error {
	if cfg.Dump == "" {
		return fmt.Errorf("%w: parse needs --in (or dump: in the config)", errUsage)
	}

	in, err := os.Open(cfg.Dump)
	if err != nil {
		return fmt.Errorf("open dump: %w", err)
	}
	defer in.Close()

	out, err := os.Create(cfg.Records)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Records, err)
	}

	cw := csv.NewWriter(out)
	if err := cw.Write(ingest.Header); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", cfg.Records, err)
	}
	stats, err := ingest.Ingest(in, disasm.Disasm, func(rec ingest.CodeRecord) error {
		return cw.Write(rec.Row())
	}, log)
	if err != nil {
		out.Close()
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", cfg.Records, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cfg.Records, err)
	}

	if stats.DisasmFailures > 0 {
		log.Warn("some entries did not disassemble",
			zap.Int("failures", stats.DisasmFailures),
			zap.Int("records", stats.Records))
	}
	fmt.Printf("Parsed %d records -> %s\n", stats.Records, cfg.Records)
	return nil
}
