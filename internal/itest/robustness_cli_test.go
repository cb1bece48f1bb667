//go:build integration

package itest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"testing"
	"time"
)

const cliTimeout = 30 * time.Second

type robustCase struct {
	name            string
	args            func(t *testing.T, repoRoot string) []string
	env             map[string]string
	wantContains    []string
	wantNotContains []string
}

type cliRunResult struct {
	exitCode int
	output   string
}

func TestRobustness_ArgsValidation(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "no args",
			args: staticArgs("run"),
			wantContains: []string{
				"accepts 1 arg(s), received 0",
			},
		},
		{
			name: "too many args",
			args: staticArgs("run", "job.yaml", "extra"),
			wantContains: []string{
				"accepts 1 arg(s), received 2",
			},
		},
		{
			name: "unknown flag",
			args: staticArgs("run", "job.yaml", "--wat"),
			wantContains: []string{
				"unknown flag: --wat",
			},
		},
		{
			name: "parallelism non int",
			args: staticArgs("run", "job.yaml", "--parallelism", "nope"),
			wantContains: []string{
				`invalid argument "nope" for "--parallelism"`,
			},
		},
		{
			name: "unknown command",
			args: staticArgs("render"),
			wantContains: []string{
				`unknown command "render"`,
			},
		},
		{
			name: "duration of missing file",
			args: staticArgs("duration", "/does/not/exist.mp4"),
			wantContains: []string{
				"ffprobe duration /does/not/exist.mp4",
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

func TestRobustness_InvalidJobs(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "missing job file",
			args: staticArgs("run", filepath.Join(t.TempDir(), "absent.yaml")),
			wantContains: []string{
				"job: open",
			},
		},
		{
			name: "unknown job key",
			args: jobArgs("clips: []\nbackgroud: {path: x}\n"),
			wantContains: []string{
				"field backgroud not found",
			},
		},
		{
			name: "missing source video",
			args: jobArgs("clips:\n  - videos: [{path: nope.mp4}]\n    narration: {text: hi}\n"),
			wantContains: []string{
				"invalid job: clip 1:",
				"nope.mp4",
			},
		},
		{
			name: "empty narration",
			args: jobArgs("clips:\n  - videos: [{path: video.mp4}]\n    narration: {text: \"  \"}\n"),
			wantContains: []string{
				"invalid job: clip 1: narration text is empty",
			},
		},
		{
			name: "bad font colour",
			args: jobArgs("clips:\n  - videos: [{path: video.mp4}]\n    narration: {text: hi, style: {font_color: \"#12\"}}\n"),
			wantContains: []string{
				"invalid job: clip 1: subtitle style:",
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

func TestRobustness_Settings(t *testing.T) {
	repoRoot := mustRepoRoot(t)

	cases := []robustCase{
		{
			name: "unknown preset",
			args: settingsArgs("[ffmpeg]\npreset = \"turbo\"\n"),
			wantContains: []string{
				`config: ffmpeg.preset "turbo" is not an x264 preset`,
			},
		},
		{
			name: "cache equals out",
			args: settingsArgs("cache_dir = \"/tmp/mixcut-same\"\nout_dir = \"/tmp/mixcut-same\"\n"),
			wantContains: []string{
				"cache_dir and out_dir must differ",
			},
		},
		{
			name: "fonts dir missing",
			args: settingsArgs("fonts_dir = \"/does/not/exist\"\n"),
			wantContains: []string{
				"config: fonts dir:",
			},
		},
		{
			name: "malformed toml",
			args: settingsArgs("cache_dir = \n"),
			wantContains: []string{
				"config: parse config",
			},
		},
	}

	runRobustCases(t, repoRoot, cases)
}

// jobArgs writes a job document next to an empty video.mp4 and runs it.
func jobArgs(doc string) func(t *testing.T, _ string) []string {
	return func(t *testing.T, _ string) []string {
		t.Helper()
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "video.mp4"), []byte("x"), 0o644); err != nil {
			t.Fatalf("write video fixture: %v", err)
		}
		job := filepath.Join(dir, "job.yaml")
		if err := os.WriteFile(job, []byte(doc), 0o644); err != nil {
			t.Fatalf("write job fixture: %v", err)
		}
		return []string{"run", "--config", filepath.Join(dir, "absent.toml"), job}
	}
}

// settingsArgs runs a valid-looking job against the given settings file.
func settingsArgs(settings string) func(t *testing.T, _ string) []string {
	return func(t *testing.T, _ string) []string {
		t.Helper()
		dir := t.TempDir()
		cfg := filepath.Join(dir, "mixcut.toml")
		if err := os.WriteFile(cfg, []byte(settings), 0o644); err != nil {
			t.Fatalf("write settings fixture: %v", err)
		}
		return []string{"run", "--config", cfg, filepath.Join(dir, "job.yaml")}
	}
}

func runRobustCases(t *testing.T, repoRoot string, cases []robustCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := runCLI(t, repoRoot, tc.args(t, repoRoot), tc.env)
			if res.exitCode == 0 {
				t.Fatalf("expected non-zero exit code, got 0\noutput:\n%s", res.output)
			}
			for _, want := range tc.wantContains {
				if !strings.Contains(res.output, want) {
					t.Fatalf("expected output to contain %q\noutput:\n%s", want, res.output)
				}
			}
			for _, notWant := range tc.wantNotContains {
				if strings.Contains(res.output, notWant) {
					t.Fatalf("expected output to not contain %q\noutput:\n%s", notWant, res.output)
				}
			}
		})
	}
}

func runCLI(t *testing.T, repoRoot string, args []string, env map[string]string) cliRunResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), cliTimeout)
	defer cancel()

	cmdArgs := append([]string{"run", "./cmd/mixcut"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = repoRoot
	cmd.Env = mergeEnv(
		os.Environ(),
		map[string]string{
			"NO_COLOR": "1",
			"TERM":     "dumb",
		},
		env,
	)

	out, err := cmd.CombinedOutput()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("command timed out after %s: go %s", cliTimeout, strings.Join(cmdArgs, " "))
	}

	res := cliRunResult{output: string(out)}
	if err == nil {
		res.exitCode = 0
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}

	t.Fatalf("run command: %v\noutput:\n%s", err, string(out))
	return cliRunResult{}
}

func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := make(map[string]string, len(base))
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		env[kv[:i]] = kv[i+1:]
	}

	for _, set := range overrides {
		for k, v := range set {
			env[k] = v
		}
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

func mustRepoRoot(t *testing.T) string {
	t.Helper()

	repoRoot, err := findRepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	return repoRoot
}

func staticArgs(args ...string) func(t *testing.T, _ string) []string {
	clone := append([]string(nil), args...)
	return func(t *testing.T, _ string) []string {
		t.Helper()
		return append([]string(nil), clone...)
	}
}
