package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/exoscope/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short and long forms):
//
//	-a, -api string       API base URL
//	-d, -db string        local database path
//	-t, -timeout int      request timeout (seconds)
//	-i, -interval int     online check interval (seconds)
//	-log-level string     debug|info|warn|error
//
// Only these flags are picked out of args via flagx.FilterArgs, so cobra
// subcommand flags and positional arguments pass through untouched.
func parseFlags(cfg *Config, args []string) error {
	filtered := flagx.FilterArgs(args, "a", "api", "d", "db", "t", "timeout", "i", "interval", "log-level")

	fs := flag.NewFlagSet("exoscope", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.APIBaseURL, "api", cfg.APIBaseURL, "API base URL")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.DatabasePath, "db", cfg.DatabasePath, "local database path")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level")

	timeout := int(cfg.RequestTimeout.Seconds())
	fs.IntVar(&timeout, "t", timeout, "request timeout (in seconds)")
	fs.IntVar(&timeout, "timeout", timeout, "request timeout (in seconds)")

	interval := int(cfg.OnlineCheckInterval.Seconds())
	fs.IntVar(&interval, "i", interval, "online check interval (in seconds)")
	fs.IntVar(&interval, "interval", interval, "online check interval (in seconds)")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if timeout <= 0 || interval <= 0 {
		return fmt.Errorf("timeout and interval must be positive")
	}

	cfg.RequestTimeout = time.Duration(timeout) * time.Second
	cfg.OnlineCheckInterval = time.Duration(interval) * time.Second
	return nil
}
