package main

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/HumphreyHCB/BuboExperiments/internal/align"
	"github.com/HumphreyHCB/BuboExperiments/internal/blocks"
)

// errUsage marks bad invocations: missing flags, unknown commands.
var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "parse":
		err = cmdParse(os.Args[2:])
	case "blocks":
		err = cmdBlocks(os.Args[2:])
	case "timed":
		err = cmdTimed(os.Args[2:])
	case "attribute":
		err = cmdAttribute(os.Args[2:])
	case "align":
		err = cmdAlign(os.Args[2:])
	case "graph":
		err = cmdGraph(os.Args[2:])
	case "run":
		err = cmdRun(os.Args[2:])
	case "help", "-h", "--help":
		usage()
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		usage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode classifies failures: empty or column-deficient required inputs
// and bad invocations exit 1, I/O failures exit 2.
func exitCode(err error) int {
	switch {
	case errors.Is(err, errUsage),
		errors.Is(err, blocks.ErrEmptyInput),
		errors.Is(err, align.ErrMissingColumns):
		return 1
	default:
		return 2
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `blocktime: attribute profiler block times to JIT-compiled source methods

Usage:
  blocktime parse     --in <dump> --out <csv>                  Ingest compiler dump into code records
  blocktime blocks    --in <csv> --out <csv> --compilation <id>  Aggregate records into block summaries
  blocktime timed     --in <rip> --out <csv>                   Extract timed instructions from profiler dump
  blocktime attribute --blocks <csv> --markers <json> --out <csv> --out-reassigned <csv>
                                                                  Split marker time across block sources
  blocktime align     --timed <csv> --blocks <csv> --bridge <json> --out <csv>
                                                                  Position-align profiler and compiler blocks
  blocktime graph     --blocks <csv> --markers <json> --out <dot> [--reassign]
                                                                  Render block->method contribution graph
  blocktime run       --config <yaml>                           Run the whole pipeline from a config

Flags:
  --config <path>       YAML config supplying defaults for any flag
  --log-level <level>   debug, info, warn, error (default info)
`)
}

// applyFlag lets an explicit flag override the config value.
func applyFlag(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func newLogger(level string) (*zap.Logger, error) {
	var zapLevel zapcore.Level
	switch level {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(zapLevel),
		Encoding:         "console",
		EncoderConfig:    zap.NewProductionEncoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	return cfg.Build()
}
