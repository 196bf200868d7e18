package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/HumphreyHCB/BuboExperiments/internal/attribute"
	"github.com/HumphreyHCB/BuboExperiments/internal/config"
	"github.com/HumphreyHCB/BuboExperiments/internal/methodgraph"
)

func cmdGraph(args []string) error {
	fs := flag.NewFlagSet("graph", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	blocksIn := fs.String("blocks", "", "block-summary table")
	markersIn := fs.String("markers", "", "profiler marker document")
	out := fs.String("out", "", "DOT graph to write")
	reassign := fs.Bool("reassign", false, "graph the null-reassigned pass")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.Blocks, *blocksIn)
	applyFlag(&cfg.Markers, *markersIn)
	applyFlag(&cfg.Graph, *out)
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	return runGraph(cfg, log, *reassign)
}

func runGraph(cfg config.Config, log *zap.Logger, reassign bool) error {
	mixes, ms, err := loadAttributionInputs(cfg, log)
	if err != nil {
		return err
	}

	res := attribute.Run(ms, mixes, reassign)
	dot := methodgraph.DOT(res, "contributions")

	if err := os.WriteFile(cfg.Graph, []byte(dot), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", cfg.Graph, err)
	}

	fmt.Printf("Wrote contribution graph (%d methods) -> %s\n", len(res.Methods()), cfg.Graph)
	return nil
}
