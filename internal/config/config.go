// Package config loads mixcut settings from a TOML file, environment
// overrides and built-in defaults.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// FFmpeg configures the media engine binaries.
type FFmpeg struct {
	Binary  string `toml:"binary"`
	FFprobe string `toml:"ffprobe"`
	// Preset is the x264 speed preset used for segment renders.
	Preset string `toml:"preset"`
}

// Narration configures the speech synthesizer.
type Narration struct {
	Binary string `toml:"binary"`
	Voice  string `toml:"voice"`
}

type Pipeline struct {
	// Parallelism is the processor count the render gate is sized from; 0
	// uses every available CPU.
	Parallelism          int `toml:"parallelism"`
	ConcatTimeoutSeconds int `toml:"concat_timeout_seconds"`
}

type Config struct {
	CacheDir  string    `toml:"cache_dir"`
	OutDir    string    `toml:"out_dir"`
	FontsDir  string    `toml:"fonts_dir"`
	FFmpeg    FFmpeg    `toml:"ffmpeg"`
	Narration Narration `toml:"narration"`
	Pipeline  Pipeline  `toml:"pipeline"`
}

// Default returns the settings used when no file is present.
func Default() Config {
	return Config{
		CacheDir: ".cache",
		OutDir:   "out",
		FFmpeg: FFmpeg{
			Binary:  "ffmpeg",
			FFprobe: "ffprobe",
			Preset:  "veryfast",
		},
		Narration: Narration{
			Binary: "edge-tts",
		},
		Pipeline: Pipeline{
			ConcatTimeoutSeconds: 300,
		},
	}
}

// DefaultPath is the project-local settings file.
const DefaultPath = "mixcut.toml"

// Load reads path (or DefaultPath when empty), applies environment overrides
// and validates the result. A missing file is not an error; the returned bool
// reports whether one was read.
func Load(path string) (Config, bool, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath
	}
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, false, fmt.Errorf("open config: %w", err)
	default:
		defer f.Close()
		if err := toml.NewDecoder(f).DisallowUnknownFields().Decode(&cfg); err != nil {
			return Config{}, false, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	exists := f != nil

	cfg.applyEnv()
	if err := cfg.normalize(); err != nil {
		return Config{}, false, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, false, err
	}
	return cfg, exists, nil
}

// ConcatTimeout is the per-variant concatenation limit.
func (c Config) ConcatTimeout() time.Duration {
	return time.Duration(c.Pipeline.ConcatTimeoutSeconds) * time.Second
}

func (c *Config) applyEnv() {
	for env, dst := range map[string]*string{
		"MIXCUT_FFMPEG":    &c.FFmpeg.Binary,
		"MIXCUT_FFPROBE":   &c.FFmpeg.FFprobe,
		"MIXCUT_TTS_BIN":   &c.Narration.Binary,
		"MIXCUT_CACHE_DIR": &c.CacheDir,
	} {
		if v, ok := os.LookupEnv(env); ok && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
}

func (c *Config) normalize() error {
	var err error
	if c.CacheDir, err = expandPath(c.CacheDir); err != nil {
		return fmt.Errorf("cache_dir: %w", err)
	}
	if c.OutDir, err = expandPath(c.OutDir); err != nil {
		return fmt.Errorf("out_dir: %w", err)
	}
	if c.FontsDir, err = expandPath(c.FontsDir); err != nil {
		return fmt.Errorf("fonts_dir: %w", err)
	}
	c.FFmpeg.Binary = strings.TrimSpace(c.FFmpeg.Binary)
	c.FFmpeg.FFprobe = strings.TrimSpace(c.FFmpeg.FFprobe)
	c.FFmpeg.Preset = strings.TrimSpace(c.FFmpeg.Preset)
	c.Narration.Binary = strings.TrimSpace(c.Narration.Binary)
	c.Narration.Voice = strings.TrimSpace(c.Narration.Voice)
	return nil
}

func expandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil
	}
	if p == "~" || strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p[1:], "/"))
	}
	return filepath.Abs(filepath.Clean(p))
}

// CreateSample writes a commented settings file to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
