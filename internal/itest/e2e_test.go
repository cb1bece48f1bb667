//go:build integration

package itest

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/mixcut/internal/pipeline"
	"github.com/forPelevin/mixcut/internal/types"
)

// ttsStub stands in for edge-tts: it writes three seconds of tone to the
// --write-media target.
const ttsStub = `#!/bin/sh
prev=""
for a in "$@"; do
  if [ "$prev" = "--write-media" ]; then out="$a"; fi
  prev="$a"
done
exec ffmpeg -y -hide_banner -loglevel error -f lavfi -i "sine=frequency=440:duration=3" -c:a pcm_s16le -f wav "$out"
`

func TestE2E(t *testing.T) {
	tmp := t.TempDir()

	withAudio := filepath.Join(tmp, "with-audio.mp4")
	if err := lavfi(
		"-f", "lavfi", "-i", "testsrc=size=1280x720:rate=30:duration=7",
		"-f", "lavfi", "-i", "sine=frequency=220:duration=7",
		"-shortest", "-c:v", "libx264", "-pix_fmt", "yuv420p", "-c:a", "aac",
		withAudio,
	); err != nil {
		t.Fatal(err)
	}
	silent := filepath.Join(tmp, "silent.mp4")
	if err := lavfi(
		"-f", "lavfi", "-i", "color=c=blue:s=720x1280:rate=30:d=5",
		"-c:v", "libx264", "-pix_fmt", "yuv420p",
		silent,
	); err != nil {
		t.Fatal(err)
	}
	bg := filepath.Join(tmp, "bg.wav")
	if err := lavfi("-f", "lavfi", "-i", "sine=frequency=660:duration=2", bg); err != nil {
		t.Fatal(err)
	}
	tts := filepath.Join(tmp, "edge-tts")
	if err := os.WriteFile(tts, []byte(ttsStub), 0o755); err != nil {
		t.Fatal(err)
	}

	job := types.Job{
		Name:   "e2e",
		Width:  1080,
		Height: 1920,
		Clips: []types.Clip{
			{
				Videos:          []types.MediaAsset{{Path: withAudio}},
				OpenOriginAudio: true,
				Narration: types.NarrationConfig{
					Text:  "第一句话。第二句话，稍微长一点！",
					Style: types.CaptionStyle{FontColor: "#FFE600", Preset: "custom-style-3"},
				},
				Title: &types.TitleConfig{Text: "Integration"},
			},
			{
				Videos:    []types.MediaAsset{{Path: silent}},
				Narration: types.NarrationConfig{Text: "Second clip narration."},
			},
		},
		Background: &types.BackgroundAudio{Path: bg, Volume: 0.2},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cfg := pipeline.Config{
		CacheDir:    filepath.Join(tmp, "cache"),
		OutDir:      filepath.Join(tmp, "out"),
		FFmpegPath:  "ffmpeg",
		FFprobePath: "ffprobe",
		TTSBin:      tts,
		Parallelism: 4,
		Logger:      zerolog.New(zerolog.NewTestWriter(t)),
	}
	variants, err := pipeline.Run(ctx, cfg, job)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	// 7s and 5s sources under 3s narrations give 3 and 2 segments.
	if len(variants) != 2 {
		t.Fatalf("expected 2 variants, got %d", len(variants))
	}
	for _, v := range variants {
		if !strings.HasSuffix(v.OutputPath, "_bg.mp4") {
			t.Fatalf("background not mixed: %s", v.OutputPath)
		}
		got, err := probeDuration(v.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		if diff := got - v.Duration; diff < -500*time.Millisecond || diff > 500*time.Millisecond {
			t.Fatalf("%s lasts %v, planned %v", v.OutputPath, got, v.Duration)
		}
		streams, err := streamTypes(v.OutputPath)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Join(streams, ",") != "video,audio" {
			t.Fatalf("unexpected streams %v", streams)
		}
	}

	b, err := os.ReadFile(filepath.Join(filepath.Dir(variants[0].OutputPath), "manifest.json"))
	if err != nil {
		t.Fatalf("missing manifest: %v", err)
	}
	var m types.Manifest
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("decode manifest: %v", err)
	}
	if len(m.Variants) != 2 || !strings.HasSuffix(m.Variants[0].File, "_bg.mp4") {
		t.Fatalf("unexpected manifest: %+v", m)
	}
}
