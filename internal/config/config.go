package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Submission controls archive naming and the default evaluation task.
type Submission struct {
	// Leaderboard is the leading component of the archive filename,
	// <leaderboard>_<dataset>_<name>.zip.
	Leaderboard string `toml:"leaderboard"`
	// TaskMode is "reid" or "reid-geoloc".
	TaskMode string `toml:"task_mode"`
}

// Validation bounds the spatial columns of every output record.
type Validation struct {
	FrameWidth  uint64 `toml:"frame_width"`
	FrameHeight uint64 `toml:"frame_height"`
}

// Logging configures structured log output.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// History configures the local SQLite log of packaging runs.
type History struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Metrics configures the external scoring collaborator.
type Metrics struct {
	Binary         string `toml:"binary"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Generator configures synthetic data generation.
type Generator struct {
	FFprobeBinary string `toml:"ffprobe_binary"`
	Subjects      int    `toml:"subjects"`
	Seed          int64  `toml:"seed"`
}

// Config is the root configuration document.
type Config struct {
	Submission Submission          `toml:"submission"`
	Validation Validation          `toml:"validation"`
	Logging    Logging             `toml:"logging"`
	History    History             `toml:"history"`
	Metrics    Metrics             `toml:"metrics"`
	Generator  Generator           `toml:"generator"`
	Datasets   map[string][]string `toml:"datasets"`
}

// DatasetVideos returns the video list for a dataset name.
func (c *Config) DatasetVideos(name string) ([]string, error) {
	videos, ok := c.Datasets[name]
	if !ok {
		known := c.DatasetNames()
		return nil, fmt.Errorf("unknown dataset %q (configured: %s)", name, strings.Join(known, ", "))
	}
	return videos, nil
}

// DatasetNames returns the configured dataset names in sorted order.
func (c *Config) DatasetNames() []string {
	names := make([]string, 0, len(c.Datasets))
	for name := range c.Datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultConfigPath returns the canonical config location.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".config", "reidsubmit", "config.toml"), nil
}

// Load reads the config at path, or at the default location when path is
// empty. A missing file yields pure defaults. It returns the config, the
// resolved path, and whether a file existed there.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}
	return &cfg, resolvedPath, exists, nil
}

// CreateSample writes the embedded sample configuration to path.
func CreateSample(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure config directory: %w", err)
	}
	return os.WriteFile(path, []byte(sampleConfig), 0o644)
}

// ExpandPath resolves tilde shortcuts and relative segments in a
// user-supplied path.
func ExpandPath(path string) (string, error) {
	return expandPath(path)
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	if _, err := os.Stat(defaultPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return defaultPath, false, nil
		}
		return "", false, fmt.Errorf("stat config: %w", err)
	}
	return defaultPath, true, nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}
