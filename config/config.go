// Package config loads and saves the TOML-based settings shared by
// the pasm and pemu command-line tools.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds every setting either CLI consults. Both tools share one
// file so a project can keep its image-size and port-map conventions
// in one place.
type Config struct {
	// Assemble settings govern pasm. MaxMacroDepth is stored but not
	// read; the preprocessor uses the asm.MaxMacroDepth constant.
	Assemble struct {
		ImageSize    int  `toml:"image_size"`
		Verbose      bool `toml:"verbose"`
		MaxMacroDepth int `toml:"max_macro_depth"`
	} `toml:"assemble"`

	// Machine settings govern pemu's port map and serial buffer size.
	// TickNanos and MaxCycles are stored but not read: Run paces by the
	// vm.TickInterval constant and has no cycle limit.
	Machine struct {
		RAMSize        int   `toml:"ram_size"`
		KeyboardBegin  int   `toml:"keyboard_begin"`
		KeyboardEnd    int   `toml:"keyboard_end"`
		FloppyBegin    int   `toml:"floppy_begin"`
		FloppyEnd      int   `toml:"floppy_end"`
		SerialBegin    int   `toml:"serial_begin"`
		SerialEnd      int   `toml:"serial_end"`
		SerialBuffer   int   `toml:"serial_buffer"`
		// TerminalBegin/TerminalEnd are both 0 by default, meaning no
		// terminal device is mapped: the canonical 252/253/255/256
		// layout already uses the full 256-byte address space. Carve
		// out room for one (by shrinking RAMSize and pointing these at
		// the freed range) to exercise the scrollback terminal instead
		// of the plain write-only serial sink.
		TerminalBegin int   `toml:"terminal_begin"`
		TerminalEnd   int   `toml:"terminal_end"`
		TickNanos     int64 `toml:"tick_nanos"`
		MaxCycles     uint64 `toml:"max_cycles"`
	} `toml:"machine"`

	// Monitor settings govern the post-halt snapshot inspector.
	Monitor struct {
		Enabled      bool `toml:"enabled"`
		BytesPerLine int  `toml:"bytes_per_line"`
	} `toml:"monitor"`
}

// DefaultConfig returns the reference configuration: a 252-byte RAM
// region, the keyboard/floppy/serial ports at the addresses the
// original's start_computer() wires up, and a 100ns step pace.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Assemble.ImageSize = 252
	cfg.Assemble.Verbose = false
	cfg.Assemble.MaxMacroDepth = 256

	cfg.Machine.RAMSize = 252
	cfg.Machine.KeyboardBegin = 252
	cfg.Machine.KeyboardEnd = 253
	cfg.Machine.FloppyBegin = 253
	cfg.Machine.FloppyEnd = 255
	cfg.Machine.SerialBegin = 255
	cfg.Machine.SerialEnd = 256
	cfg.Machine.SerialBuffer = 4096
	cfg.Machine.TerminalBegin = 0
	cfg.Machine.TerminalEnd = 0
	cfg.Machine.TickNanos = 100
	cfg.Machine.MaxCycles = 0 // 0 means unbounded

	cfg.Monitor.Enabled = true
	cfg.Monitor.BytesPerLine = 16

	return cfg
}

// GetConfigPath returns the platform-specific config file path:
// Windows %APPDATA%, macOS/Linux XDG-style ~/.config.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "poc8")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "poc8")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// Load loads configuration from the default config file.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, falling back to
// DefaultConfig() when the file does not exist.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
