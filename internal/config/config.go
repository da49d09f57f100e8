package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"mask-hysteresis/internal/codec"
	"mask-hysteresis/internal/format"
)

// Config holds the inputs, outputs and run settings of one hysteresis run.
type Config struct {
	// Paths
	Seed      string `json:"seed"`
	Candidate string `json:"candidate"`
	OutputDir string `json:"output_dir"`

	// Filter settings
	Planes []int  `json:"planes"`
	Depth  string `json:"depth"`

	// Run settings
	OutputFormat string `json:"output_format"`
	Workers      int    `json:"workers"`
	LogLevel     string `json:"log_level"`
}

// Load reads a JSON config file and returns Config.
// Fields not set in the file keep their zero values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	return cfg, nil
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	Seed         string
	Candidate    string
	OutputDir    string
	Planes       string
	Depth        string
	OutputFormat string
	Workers      int
	LogLevel     string
}

// Resolve applies CLI overrides, then fills any empty field with its default.
func (c *Config) Resolve(flags Flags) error {
	// CLI flags override config file
	if flags.Seed != "" {
		c.Seed = flags.Seed
	}
	if flags.Candidate != "" {
		c.Candidate = flags.Candidate
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.Planes != "" {
		planes, err := ParsePlanes(flags.Planes)
		if err != nil {
			return err
		}
		c.Planes = planes
	}
	if flags.Depth != "" {
		c.Depth = flags.Depth
	}
	if flags.OutputFormat != "" {
		c.OutputFormat = flags.OutputFormat
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	// Defaults
	c.OutputFormat = strings.TrimPrefix(strings.ToLower(c.OutputFormat), ".")
	if c.OutputFormat == "" {
		c.OutputFormat = "png"
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.OutputDir == "" && c.Seed != "" {
		c.OutputDir = defaultOutputDir(c.Seed)
	}
	return nil
}

// defaultOutputDir places results next to the seed: <dir>-hysteresis for a
// directory clip, hysteresis-out beside a single file.
func defaultOutputDir(seed string) string {
	clean := filepath.Clean(seed)
	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return clean + "-hysteresis"
	}
	return filepath.Join(filepath.Dir(clean), "hysteresis-out")
}

// Validate reports configuration errors that can be detected without
// opening any input.
func (c *Config) Validate() error {
	var errs []error
	if c.Seed == "" {
		errs = append(errs, errors.New("config: seed clip is required"))
	}
	if c.Candidate == "" {
		errs = append(errs, errors.New("config: candidate clip is required"))
	}
	if !codec.CanWrite(c.OutputFormat) {
		errs = append(errs, fmt.Errorf("config: unsupported output format %q", c.OutputFormat))
	}
	if c.Depth != "" {
		if _, _, err := format.ParseDepth(c.Depth); err != nil {
			errs = append(errs, fmt.Errorf("config: %w", err))
		}
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParsePlanes parses a comma separated plane list such as "0,2".
func ParsePlanes(s string) ([]int, error) {
	var planes []int
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("config: plane %q: %w", part, err)
		}
		planes = append(planes, p)
	}
	return planes, nil
}

// ParseLevel maps a log level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: log level %q: %w", s, err)
	}
	return l, nil
}
