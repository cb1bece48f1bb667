package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/forPelevin/mixcut/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"MIXCUT_FFMPEG", "MIXCUT_FFPROBE", "MIXCUT_TTS_BIN", "MIXCUT_CACHE_DIR"} {
		t.Setenv(k, "")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	cfg, exists, err := config.Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if exists {
		t.Fatal("expected no config file")
	}
	if !filepath.IsAbs(cfg.CacheDir) || filepath.Base(cfg.CacheDir) != ".cache" {
		t.Fatalf("unexpected cache dir: %q", cfg.CacheDir)
	}
	if cfg.FFmpeg.Preset != "veryfast" || cfg.Narration.Binary != "edge-tts" {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.ConcatTimeout() != 5*time.Minute {
		t.Fatalf("unexpected concat timeout: %v", cfg.ConcatTimeout())
	}
}

func TestLoadFileAndEnvOverrides(t *testing.T) {
	clearEnv(t)
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("MIXCUT_FFMPEG", "/opt/ffmpeg/bin/ffmpeg")

	path := filepath.Join(t.TempDir(), "mixcut.toml")
	body := `
cache_dir = "~/scratch"
out_dir = "/tmp/mixcut-out"

[ffmpeg]
binary = "ffmpeg-from-file"
preset = "fast"

[pipeline]
parallelism = 6
concat_timeout_seconds = 42
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to be read")
	}
	if cfg.CacheDir != filepath.Join(home, "scratch") {
		t.Fatalf("cache dir not expanded: %q", cfg.CacheDir)
	}
	if cfg.FFmpeg.Binary != "/opt/ffmpeg/bin/ffmpeg" {
		t.Fatalf("env override ignored: %q", cfg.FFmpeg.Binary)
	}
	if cfg.FFmpeg.FFprobe != "ffprobe" {
		t.Fatalf("default lost: %q", cfg.FFmpeg.FFprobe)
	}
	if cfg.Pipeline.Parallelism != 6 || cfg.ConcatTimeout() != 42*time.Second {
		t.Fatalf("pipeline section not applied: %+v", cfg.Pipeline)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "mixcut.toml")
	if err := os.WriteFile(path, []byte("cache_dri = \"x\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := config.Load(path); err == nil {
		t.Fatal("expected error for misspelled key")
	}
}

func TestValidate(t *testing.T) {
	base := config.Default()
	base.CacheDir = "/c"
	base.OutDir = "/o"

	cases := []struct {
		name string
		mut  func(*config.Config)
		want string
	}{
		{name: "ok", mut: func(*config.Config) {}},
		{name: "same dirs", mut: func(c *config.Config) { c.OutDir = c.CacheDir }, want: "must differ"},
		{name: "preset", mut: func(c *config.Config) { c.FFmpeg.Preset = "turbo" }, want: "ffmpeg.preset"},
		{name: "tts", mut: func(c *config.Config) { c.Narration.Binary = "" }, want: "narration.binary"},
		{name: "parallelism", mut: func(c *config.Config) { c.Pipeline.Parallelism = -1 }, want: "parallelism"},
		{name: "timeout", mut: func(c *config.Config) { c.Pipeline.ConcatTimeoutSeconds = 0 }, want: "concat_timeout_seconds"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := base
			tc.mut(&c)
			err := c.Validate()
			if tc.want == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestSampleConfigParses(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "mixcut.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := toml.Unmarshal(b, &raw); err != nil {
		t.Fatalf("sample is not valid TOML: %v", err)
	}
	if _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample does not load: %v", err)
	}
}
