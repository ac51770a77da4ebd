// SPDX-License-Identifier: EPL-2.0

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ik5/audcap/internal/config"
	"github.com/ik5/audcap/internal/metrics"
)

const usage = `usage: audcap [flags] <command> [command flags]

commands:
  devices    list capture devices
  record     capture from a device or decode a file into WAV/AIFF
  probe      list the records of an ADTS file
  rtp2adts   receive RTP AAC on UDP and write an ADTS file
  adts2rtp   send an ADTS file as RTP AAC over UDP

flags:
`

// env is what every command receives.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	metrics *metrics.Metrics
	stdout  io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"devices":  runDevices,
	"record":   runRecord,
	"probe":    runProbe,
	"rtp2adts": runRTPToADTS,
	"adts2rtp": runADTSToRTP,
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("audcap", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	configPath := fs.String("config", "", "Path to configuration file")
	logLevel := fs.String("log-level", "", "Override logging.level")
	logFormat := fs.String("log-format", "", "Override logging.format")
	metricsAddr := fs.String("metrics", "", "Override metrics.listen, e.g. :9100")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cmd, ok := commands[fs.Arg(0)]
	if !ok {
		fmt.Fprintf(stderr, "unknown command %q\n\n", fs.Arg(0))
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load configuration: %v\n", err)
			return 1
		}
	}

	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Logging.Format = *logFormat
	}
	if *metricsAddr != "" {
		cfg.Metrics.Listen = *metricsAddr
	}

	if err := cfg.Logging.Validate(); err != nil {
		fmt.Fprintf(stderr, "Invalid logging flags: %v\n", err)
		return 2
	}

	logger, closeLog := initLogger(cfg.Logging, stderr)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	e := &env{
		cfg:     cfg,
		logger:  logger,
		metrics: metrics.New(),
		stdout:  stdout,
	}

	if cfg.Metrics.Listen != "" {
		go func() {
			if err := e.metrics.Serve(ctx, cfg.Metrics.Listen, logger); err != nil {
				logger.Error("metrics endpoint failed", slog.String("error", err.Error()))
			}
		}()
	}

	err := cmd(ctx, e, fs.Args()[1:])
	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, errUsage):
		fmt.Fprintf(stderr, "%s: %v\n", fs.Arg(0), err)
		return 2
	default:
		logger.Error("command failed", slog.String("command", fs.Arg(0)), slog.String("error", err.Error()))
		return 1
	}
}

var errUsage = errors.New("invalid arguments")

// initLogger creates the structured logger described by cfg. The returned
// function closes a log file when one was opened.
func initLogger(cfg config.LoggingConfig, stderr io.Writer) (*slog.Logger, func()) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	output := stderr
	closer := func() {}
	switch cfg.Output {
	case "stderr", "":
	case "stdout":
		output = os.Stdout
	default:
		// Assume it's a file path
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to open log file %s: %v, falling back to stderr\n", cfg.Output, err)
		} else {
			output = file
			closer = func() { _ = file.Close() }
		}
	}

	var handler slog.Handler
	switch cfg.Format {
	case "json":
		handler = slog.NewJSONHandler(output, opts)
	default:
		handler = slog.NewTextHandler(output, opts)
	}

	return slog.New(handler), closer
}
