// Package config provides configuration management for the player51 agent.
// Configuration is loaded from environment variables with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	// Default values
	DefaultPort     = 5151
	DefaultLogLevel = "info"
	DefaultDataDir  = ".player51"

	// Environment variable names
	EnvPort     = "PLAYER51_PORT"
	EnvLogLevel = "PLAYER51_LOG_LEVEL"
	EnvDataDir  = "PLAYER51_DATA_DIR"

	// Playback environment variable names
	EnvFrameZeroOffset = "PLAYER51_FRAME_ZERO_OFFSET"
	EnvDefaultRate     = "PLAYER51_DEFAULT_FRAME_RATE"
	EnvPaletteSize     = "PLAYER51_PALETTE_SIZE"
	EnvFFprobePath     = "PLAYER51_FFPROBE"
	EnvFetchTimeout    = "PLAYER51_FETCH_TIMEOUT_S"

	// Database filename
	DBFilename = "player51.db"

	// Playback defaults
	DefaultFrameZeroOffset = 1
	DefaultFrameRate       = 30.0
	DefaultPaletteSize     = 36
	DefaultFetchTimeout    = 30 // seconds
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	LogLevel() string
	DataDir() string
	DBPath() string
	FrameZeroOffset() int
	DefaultFrameRate() float64
	PaletteSize() int
	FFprobePath() string
	FetchTimeout() time.Duration
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port            int
	logLevel        string
	dataDir         string
	frameZeroOffset int
	frameRate       float64
	paletteSize     int
	ffprobePath     string
	fetchTimeout    time.Duration
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:            DefaultPort,
		logLevel:        DefaultLogLevel,
		dataDir:         defaultDataDir(),
		frameZeroOffset: DefaultFrameZeroOffset,
		frameRate:       DefaultFrameRate,
		paletteSize:     DefaultPaletteSize,
		fetchTimeout:    DefaultFetchTimeout * time.Second,
	}

	// Override port from environment
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	// Override log level from environment
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	// Override data directory from environment
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	if fz := os.Getenv(EnvFrameZeroOffset); fz != "" {
		offset, err := strconv.Atoi(fz)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFrameZeroOffset, err)
		}
		if offset != 0 && offset != 1 {
			return nil, fmt.Errorf("invalid %s: offset must be 0 or 1", EnvFrameZeroOffset)
		}
		cfg.frameZeroOffset = offset
	}

	if fr := os.Getenv(EnvDefaultRate); fr != "" {
		rate, err := strconv.ParseFloat(fr, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvDefaultRate, err)
		}
		if rate <= 0 {
			return nil, fmt.Errorf("invalid %s: frame rate must be positive", EnvDefaultRate)
		}
		cfg.frameRate = rate
	}

	if ps := os.Getenv(EnvPaletteSize); ps != "" {
		size, err := strconv.Atoi(ps)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPaletteSize, err)
		}
		if size < 1 {
			return nil, fmt.Errorf("invalid %s: palette size must be positive", EnvPaletteSize)
		}
		cfg.paletteSize = size
	}

	cfg.ffprobePath = os.Getenv(EnvFFprobePath)

	if ft := os.Getenv(EnvFetchTimeout); ft != "" {
		secs, err := strconv.Atoi(ft)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvFetchTimeout, err)
		}
		cfg.fetchTimeout = time.Duration(secs) * time.Second
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

// FrameZeroOffset returns the offset used when deriving frame numbers
// from playback time (0 or 1)
func (c *EnvConfig) FrameZeroOffset() int {
	return c.frameZeroOffset
}

// DefaultFrameRate returns the frame rate assumed when probing fails
// to report one
func (c *EnvConfig) DefaultFrameRate() float64 {
	return c.frameRate
}

// PaletteSize returns the number of hues in the overlay color palette
func (c *EnvConfig) PaletteSize() int {
	return c.paletteSize
}

func (c *EnvConfig) FFprobePath() string {
	return c.ffprobePath
}

func (c *EnvConfig) FetchTimeout() time.Duration {
	return c.fetchTimeout
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
