package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Concat joins already-rendered segments into outPath without re-encoding.
// onMerged runs only after a successful merge; its error is logged and does
// not fail the merge. A failed or cancelled merge leaves no file at outPath.
func (a *Adapter) Concat(ctx context.Context, files []string, outPath string, onMerged func() error) error {
	if len(files) == 0 {
		return errors.New("concat: no input files")
	}
	if outPath == "" {
		return errors.New("concat: output path is required")
	}
	list, err := writeConcatList(outPath+".concat.txt", files)
	if err != nil {
		return fmt.Errorf("concat list: %w", err)
	}
	defer os.Remove(list)

	args := []string{
		"-f", "concat",
		"-safe", "0",
		"-i", list,
		"-c", "copy",
		outPath,
	}
	if err := a.run(ctx, "concat", args, 0, nil); err != nil {
		_ = os.Remove(outPath)
		return err
	}
	a.log.Info().Int("inputs", len(files)).Str("output", outPath).Msg("segments merged")

	if onMerged != nil {
		if err := onMerged(); err != nil {
			a.log.Warn().Err(err).Str("output", outPath).Msg("post-merge callback failed")
		}
	}
	return nil
}

func writeConcatList(path string, files []string) (string, error) {
	var b strings.Builder
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return "", err
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
