// Package cli parses command-line arguments into an app.Config.
package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/vk/spikegridgo/internal/app"
	"github.com/vk/spikegridgo/internal/engine"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Parse processes command-line arguments. It returns a populated app.Config,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*app.Config, bool, error) {
	slog.Debug("CLI parser started.")
	flagSet := flag.NewFlagSet("spikegridgo", flag.ContinueOnError)
	flagSet.SetOutput(output)

	// Custom usage/help text function
	flagSet.Usage = func() {
		fmt.Fprint(output, `
SpikeGridGo - A concurrency-first engine for stepping graph simulations.

Usage:
  spikegridgo [options] [NETWORK_PATH]

Arguments:
  NETWORK_PATH
    Path to a single .hcl network file or a directory containing .hcl files.

Options:
`)
		flagSet.PrintDefaults()
	}

	networkFlag := flagSet.String("network", "", "Path to the network file or directory.")
	nFlag := flagSet.String("n", "", "Path to the network file or directory (shorthand).")
	stepsFlag := flagSet.Int("steps", 100, "Number of timesteps to simulate.")
	workersFlag := flagSet.Int("workers", -1, "Concurrency budget; 0 runs sequentially, -1 defers to the network's engine block.")
	strategyFlag := flagSet.String("strategy", "", "Concurrency backend. Options: 'pool' or 'spawn'.")
	stepTimeoutFlag := flagSet.Duration("step-timeout", 0, "Per-phase barrier deadline. 0 is disabled.")
	healthPortFlag := flagSet.Int("healthcheck-port", 0, "Port for the HTTP health check server. 0 is disabled.")
	logFormatFlag := flagSet.String("log-format", "json", "Log output format. Options: 'text' or 'json'.")
	logLevelFlag := flagSet.String("log-level", "info", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	streamURLFlag := flagSet.String("stream-url", "", "socket.io collector URL for step reports. Empty is disabled.")
	seedFlag := flagSet.Uint64("seed", 1, "Seed for input encoding.")
	learningFlag := flagSet.Bool("learning", true, "Enable the update-weights phase.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	slog.Debug("Arguments parsed successfully.")

	path := ""
	if *networkFlag != "" {
		path = *networkFlag
	} else if *nFlag != "" {
		path = *nFlag
	} else if flagSet.NArg() > 0 {
		path = flagSet.Arg(0)
	}
	slog.Debug("Network path determined.", "path", path)

	if path == "" {
		slog.Debug("No network path provided, printing usage and exiting.")
		flagSet.Usage()
		return nil, true, nil
	}

	logFormat := strings.ToLower(*logFormatFlag)
	if logFormat != "text" && logFormat != "json" {
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	logLevel := strings.ToLower(*logLevelFlag)
	switch logLevel {
	case "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	if *strategyFlag != "" {
		if _, err := engine.ParseStrategy(*strategyFlag); err != nil {
			return nil, false, &ExitError{Code: 2, Message: err.Error()}
		}
	}
	if *stepTimeoutFlag < 0 {
		return nil, false, &ExitError{Code: 2, Message: "invalid step-timeout: must not be negative"}
	}
	slog.Debug("CLI parameter validation complete.")

	config, err := app.NewConfig(app.Config{
		NetworkPath:     path,
		Steps:           *stepsFlag,
		Workers:         *workersFlag,
		Strategy:        strings.ToLower(*strategyFlag),
		StepTimeout:     time.Duration(*stepTimeoutFlag),
		HealthcheckPort: *healthPortFlag,
		LogFormat:       logFormat,
		LogLevel:        logLevel,
		StreamURL:       *streamURLFlag,
		Seed:            *seedFlag,
		Learning:        *learningFlag,
	})

	if err != nil {
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}

	slog.Debug("CLI parser finished successfully.", "config", config)
	return config, false, nil
}
