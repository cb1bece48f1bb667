package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/forPelevin/mixcut/internal/types"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := newRoot()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestPresetsCommand(t *testing.T) {
	out, err := execute(t, "presets")
	if err != nil {
		t.Fatalf("presets: %v", err)
	}
	for _, want := range []string{"custom-style-1", "custom-style-6", "font colour", "#FFD200"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestConfigInitRefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mixcut.toml")
	if _, err := execute(t, "config", "init", path); err != nil {
		t.Fatalf("first init: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("sample not written: %v", err)
	}
	if _, err := execute(t, "config", "init", path); err == nil {
		t.Fatal("expected error when the file exists")
	}
}

func TestRunCommandArgs(t *testing.T) {
	if _, err := execute(t, "run"); err == nil {
		t.Fatal("expected error without a job file")
	}
	cfg := filepath.Join(t.TempDir(), "absent.toml")
	_, err := execute(t, "run", "--config", cfg, filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "job:") {
		t.Fatalf("expected job load error, got %v", err)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := map[time.Duration]string{
		0:                                     "0:00.00",
		5 * time.Second:                       "0:05.00",
		75*time.Second + 456*time.Millisecond: "1:15.46",
		10 * time.Minute:                      "10:00.00",
	}
	for in, want := range cases {
		if got := formatDuration(in); got != want {
			t.Fatalf("formatDuration(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestVariantRows(t *testing.T) {
	file := filepath.Join(t.TempDir(), "variant-001.mp4")
	if err := os.WriteFile(file, make([]byte, 2048), 0o644); err != nil {
		t.Fatal(err)
	}
	rows := variantRows([]types.OutputVariant{
		{OutputPath: file, Duration: 12 * time.Second, Videos: []string{"a", "b"}},
		{OutputPath: "/gone/variant-002.mp4"},
	})
	if strings.Join(rows[0], "|") != "1|variant-001.mp4|0:12.00|2.0 kB|2" {
		t.Fatalf("row = %v", rows[0])
	}
	if rows[1][3] != "?" {
		t.Fatalf("missing file size = %q", rows[1][3])
	}
}

func TestEventsWithoutTerminal(t *testing.T) {
	var logs bytes.Buffer
	ev := newEvents(&logs, true, zerolog.New(&logs))
	if ev.bar != nil {
		t.Fatal("no bar expected for a non-file writer")
	}
	for _, p := range []float64{3, 9.5, 12, 15, 48, 100} {
		ev.Progress(p)
	}
	ev.PointsDeducted(1)
	ev.PointsDeducted(1)
	ev.finish()

	if got := strings.Count(logs.String(), `"message":"progress"`); got != 3 {
		t.Fatalf("logged %d progress lines, want 3:\n%s", got, logs.String())
	}
	if ev.points() != 2 {
		t.Fatalf("points = %d", ev.points())
	}
}
