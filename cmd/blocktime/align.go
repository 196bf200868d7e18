package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/align"
	"github.com/HumphreyHCB/BuboExperiments/internal/config"
)

func cmdAlign(args []string) error {
	fs := flag.NewFlagSet("align", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	timedIn := fs.String("timed", "", "timed-instruction table")
	blocksIn := fs.String("blocks", "", "block-summary table")
	bridgeIn := fs.String("bridge", "", "block-id bridge document")
	out := fs.String("out", "", "aligned-rows table to write")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.Timed, *timedIn)
	applyFlag(&cfg.Blocks, *blocksIn)
	applyFlag(&cfg.Bridge, *bridgeIn)
	applyFlag(&cfg.Aligned, *out)
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runAlign(cfg, log)
}

func runAlign(cfg config.Config, log *zap.Logger) error {
	tf, err := os.Open(cfg.Timed)
	if err != nil {
		return fmt.Errorf("open timed table: %w", err)
	}
	timed, order, err := align.LoadTimed(tf)
	tf.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Timed, err)
	}

	sf, err := os.Open(cfg.Blocks)
	if err != nil {
		return fmt.Errorf("open blocks: %w", err)
	}
	summary, err := align.LoadSummary(sf)
	sf.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", cfg.Blocks, err)
	}

	pairs, err := align.LoadBridge(cfg.Bridge, log)
	if err != nil {
		return err
	}
	dir := align.ChooseDirection(pairs)
	if dir == align.Inverted {
		log.Info("bridge pairs look inverted, swapping sides",
			zap.Int("pairs", len(pairs)))
	}
	bridge := align.BuildMap(pairs, dir)

	rows := align.Rows(order, timed, bridge, summary)

	out, err := os.Create(cfg.Aligned)
	if err != nil {
		return fmt.Errorf("create %s: %w", cfg.Aligned, err)
	}
	if err := align.WriteRows(out, rows); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", cfg.Aligned, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", cfg.Aligned, err)
	}

	fmt.Printf("Aligned %d rows across %d blocks -> %s\n", len(rows), len(order), cfg.Aligned)
	return nil
}
