package main

import (
	"flag"
	"fmt"

	"github.com/HumphreyHCB/BuboExperiments/internal/config"
)

// cmdRun drives the full pipeline from a config file. Stages whose inputs
// the config does not name are skipped.
func cmdRun(args []string) error {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	cfgPath := fs.String("config", "", "YAML config file")
	level := fs.String("log-level", "", "debug, info, warn, error")
	fs.Parse(args)

	if *cfgPath == "" {
		return fmt.Errorf("%w: run needs --config", errUsage)
	}
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	applyFlag(&cfg.LogLevel, *level)

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	if cfg.Dump != "" {
		if err := runParse(cfg, log); err != nil {
			return err
		}
	}
	if cfg.Compilation == "" {
		return fmt.Errorf("%w: run needs compilation: in the config", errUsage)
	}
	if err := runBlocks(cfg, log); err != nil {
		return err
	}
	if err := runAttribute(cfg, log); err != nil {
		return err
	}
	if cfg.RipDump != "" {
		if err := runTimed(cfg, log); err != nil {
			return err
		}
		if err := runAlign(cfg, log); err != nil {
			return err
		}
	}
	if cfg.Graph != "" {
		if err := runGraph(cfg, log, false); err != nil {
			return err
		}
	}
	return nil
}
