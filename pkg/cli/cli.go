// Package cli parses command-line flags and environment variables into the
// application configuration.
package cli

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the settings parsed from flags and the environment.
type Config struct {
	ScenePath string        // scene directory with compiled scripts and assets
	SoundFont string        // SoundFont (.sf2) path for MIDI playback, optional
	Timeout   time.Duration // run duration limit, 0 means unlimited
	LogLevel  string        // debug, info, warn, error
	Headless  bool          // run without a window
	ShowHelp  bool
}

// ParseArgs parses command-line arguments into a Config. Flags win over
// environment variables (HEADLESS, TIMEOUT, LOG_LEVEL).
func ParseArgs(args []string) (*Config, error) {
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("hakoniwa", flag.ContinueOnError)

	config := &Config{}

	var timeoutSec int
	fs.IntVar(&timeoutSec, "timeout", 0, "exit after this many seconds")
	fs.IntVar(&timeoutSec, "t", 0, "exit after this many seconds (shorthand)")
	fs.StringVar(&config.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	fs.StringVar(&config.LogLevel, "l", "info", "log level (shorthand)")
	fs.StringVar(&config.SoundFont, "soundfont", "", "SoundFont (.sf2) file for MIDI playback")
	fs.BoolVar(&config.Headless, "headless", false, "run without a window")
	fs.BoolVar(&config.ShowHelp, "help", false, "show help")
	fs.BoolVar(&config.ShowHelp, "h", false, "show help (shorthand)")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	if fs.NArg() > 0 {
		config.ScenePath = fs.Arg(0)
	}

	return config, nil
}

// reorderArgs moves flags before positional arguments so a scene path may
// appear anywhere on the command line.
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// Value-taking flags consume the next argument.
			if i+1 < len(args) && len(args[i+1]) > 0 && args[i+1][0] != '-' {
				if !isBoolFlag(arg) {
					i++
					flags = append(flags, args[i])
				}
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

func isBoolFlag(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "h", "help", "headless":
		return true
	}
	return false
}

// PrintHelp writes the usage message to stdout.
func PrintHelp() {
	fmt.Fprintf(os.Stdout, `hakoniwa - cooperative script-execution engine

Usage:
  hakoniwa [options] [scene-path]

Arguments:
  scene-path    directory holding the scene's scripts and assets (optional;
                a built-in demo scene runs when omitted)

Options:
  -t, --timeout <seconds>     exit after the given number of seconds (default: unlimited)
  -l, --log-level <level>     log level: debug, info, warn, error (default: info)
  --soundfont <path>          SoundFont (.sf2) file for MIDI playback
  --headless                  run without a window
  -h, --help                  show this help

Environment Variables:
  HEADLESS=1                  enable headless mode
  TIMEOUT=<seconds>           run duration limit
  LOG_LEVEL=<level>           log level

Examples:
  hakoniwa /path/to/scene         run a scene directory
  hakoniwa --timeout 10           exit after 10 seconds
  hakoniwa --headless             run without a window
  LOG_LEVEL=debug hakoniwa        enable debug logging
`)
}
