package config

import (
	"errors"
	"fmt"
)

var presets = map[string]bool{
	"ultrafast": true, "superfast": true, "veryfast": true, "faster": true,
	"fast": true, "medium": true, "slow": true, "slower": true, "veryslow": true,
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if c.CacheDir == "" {
		return errors.New("cache_dir must be set")
	}
	if c.OutDir == "" {
		return errors.New("out_dir must be set")
	}
	if c.CacheDir == c.OutDir {
		return errors.New("cache_dir and out_dir must differ: the cache is cleared on every run")
	}
	if c.FFmpeg.Binary == "" || c.FFmpeg.FFprobe == "" {
		return errors.New("ffmpeg.binary and ffmpeg.ffprobe must be set")
	}
	if !presets[c.FFmpeg.Preset] {
		return fmt.Errorf("ffmpeg.preset %q is not an x264 preset", c.FFmpeg.Preset)
	}
	if c.Narration.Binary == "" {
		return errors.New("narration.binary must be set")
	}
	if c.Pipeline.Parallelism < 0 {
		return errors.New("pipeline.parallelism must be >= 0")
	}
	if c.Pipeline.ConcatTimeoutSeconds <= 0 {
		return errors.New("pipeline.concat_timeout_seconds must be > 0")
	}
	return nil
}
