package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/config"
	"github.com/HumphreyHCB/BuboExperiments/internal/vtune"
)

func cmdTimed(args []string) error {
	fs := flag.NewFlagSet("timed", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	in := fs.String("in", "", "profiler rip dump to extract")
	out := fs.String("out", "", "timed-instruction table to write")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.RipDump, *in)
	applyFlag(&cfg.Timed, *out)
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runTimed(cfg, log)
}

func runTimed(cfg config.Config, log *zap.Logger) error {
	if cfg.RipDump == "" {
		return fmt.Errorf("%w: timed needs --in (or rip_dump: in the config)", errUsage)
	}

	in, err := os.Open(cfg.RipDump)
	if err != nil {
		return fmt.Errorf("open rip dump: %w", err)
	}
	defer in.Close()

	lines, err := vtune.ParseRip(in, log)
	if err != nil {
		return err
	}

	out, err := os.Create(cfg.Timed)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Timed, err)
	}
	if err := vtune.WriteTimed(out, lines); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", cfg.Timed, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cfg.Timed, err)
	}

	fmt.Printf("Extracted %d timed lines -> %s\n", len(lines), cfg.Timed)
	return nil
}
