package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

// MixBackground loops trackPath under the audio of inPath at the given volume
// and writes the result to outPath. The video stream is copied.
func (a *Adapter) MixBackground(ctx context.Context, inPath, trackPath, outPath string, volume float64) error {
	if inPath == outPath {
		return errors.New("mix background: output must differ from input")
	}
	if volume < 0 {
		return fmt.Errorf("mix background: negative volume %v", volume)
	}
	return a.run(ctx, "mix background", bgArgs(inPath, trackPath, outPath, volume), 0, nil)
}

func bgArgs(inPath, trackPath, outPath string, volume float64) []string {
	vol := strconv.FormatFloat(volume, 'f', 2, 64)
	graph := fmt.Sprintf("[1:a]volume=%s[bg];[0:a][bg]amix=inputs=2:duration=first:dropout_transition=0:normalize=0[%s]", vol, AudioOut)
	return []string{
		"-i", inPath,
		"-stream_loop", "-1",
		"-i", trackPath,
		"-filter_complex", graph,
		"-map", "0:v",
		"-map", "[" + AudioOut + "]",
		"-c:v", "copy",
		"-c:a", "aac",
		"-ar", "44100",
		"-ac", "2",
		"-movflags", "+faststart",
		outPath,
	}
}
