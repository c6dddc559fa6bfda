package cli

import (
	"testing"
	"time"
)

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name: "defaults",
			args: []string{},
			expected: Config{
				LogLevel: "info",
			},
		},
		{
			name: "scene path",
			args: []string{"/path/to/scene"},
			expected: Config{
				ScenePath: "/path/to/scene",
				LogLevel:  "info",
			},
		},
		{
			name: "timeout",
			args: []string{"--timeout", "10"},
			expected: Config{
				Timeout:  10 * time.Second,
				LogLevel: "info",
			},
		},
		{
			name: "timeout shorthand",
			args: []string{"-t", "5"},
			expected: Config{
				Timeout:  5 * time.Second,
				LogLevel: "info",
			},
		},
		{
			name: "log level",
			args: []string{"--log-level", "debug"},
			expected: Config{
				LogLevel: "debug",
			},
		},
		{
			name: "log level shorthand",
			args: []string{"-l", "error"},
			expected: Config{
				LogLevel: "error",
			},
		},
		{
			name: "headless",
			args: []string{"--headless"},
			expected: Config{
				LogLevel: "info",
				Headless: true,
			},
		},
		{
			name: "soundfont",
			args: []string{"--soundfont", "/sf/gm.sf2"},
			expected: Config{
				SoundFont: "/sf/gm.sf2",
				LogLevel:  "info",
			},
		},
		{
			name: "help",
			args: []string{"--help"},
			expected: Config{
				LogLevel: "info",
				ShowHelp: true,
			},
		},
		{
			name: "help shorthand",
			args: []string{"-h"},
			expected: Config{
				LogLevel: "info",
				ShowHelp: true,
			},
		},
		{
			name: "multiple options",
			args: []string{"--timeout", "30", "--log-level", "warn", "--headless", "/path/to/scene"},
			expected: Config{
				ScenePath: "/path/to/scene",
				Timeout:   30 * time.Second,
				LogLevel:  "warn",
				Headless:  true,
			},
		},
		{
			name: "flags after positional argument",
			args: []string{"-log-level", "debug", "./scenes/garden", "--timeout", "5"},
			expected: Config{
				ScenePath: "./scenes/garden",
				Timeout:   5 * time.Second,
				LogLevel:  "debug",
			},
		},
		{
			name: "positional argument first",
			args: []string{"/path/to/scene", "--timeout", "10", "--headless"},
			expected: Config{
				ScenePath: "/path/to/scene",
				Timeout:   10 * time.Second,
				LogLevel:  "info",
				Headless:  true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if config.ScenePath != tt.expected.ScenePath {
				t.Errorf("ScenePath = %q, want %q", config.ScenePath, tt.expected.ScenePath)
			}
			if config.SoundFont != tt.expected.SoundFont {
				t.Errorf("SoundFont = %q, want %q", config.SoundFont, tt.expected.SoundFont)
			}
			if config.Timeout != tt.expected.Timeout {
				t.Errorf("Timeout = %v, want %v", config.Timeout, tt.expected.Timeout)
			}
			if config.LogLevel != tt.expected.LogLevel {
				t.Errorf("LogLevel = %q, want %q", config.LogLevel, tt.expected.LogLevel)
			}
			if config.Headless != tt.expected.Headless {
				t.Errorf("Headless = %v, want %v", config.Headless, tt.expected.Headless)
			}
			if config.ShowHelp != tt.expected.ShowHelp {
				t.Errorf("ShowHelp = %v, want %v", config.ShowHelp, tt.expected.ShowHelp)
			}
		})
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{
			name: "negative timeout",
			args: []string{"--timeout", "-10"},
		},
		{
			name: "invalid log level",
			args: []string{"--log-level", "invalid"},
		},
		{
			name: "invalid log level shorthand",
			args: []string{"-l", "trace"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.args)
			if err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}
