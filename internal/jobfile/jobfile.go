// Package jobfile reads job documents.
//
// A job document is YAML:
//
//	name: spring-sale
//	width: 1080
//	height: 1920
//	background: {path: music/bg.mp3, volume: 0.25}
//	clips:
//	  - videos: [{path: raw/a.mp4}, {path: raw/b.mp4}]
//	    open_origin_audio: true
//	    narration:
//	      text: 春天来了。全场五折！
//	      voice: zh-CN-XiaoyiNeural
//	      style: {font_size: 40, font_color: "#FFE600", preset: custom-style-2}
//	    title: {text: 限时优惠}
//
// Relative media paths are resolved against the document's directory.
package jobfile

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/mixcut/internal/types"
)

const (
	DefaultWidth  = 1080
	DefaultHeight = 1920
)

// Load parses the job at path and resolves its media paths.
func Load(path string) (types.Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return types.Job{}, err
	}
	job, err := Parse(b)
	if err != nil {
		return types.Job{}, fmt.Errorf("%s: %w", path, err)
	}
	base, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return types.Job{}, err
	}
	Resolve(&job, base)
	if strings.TrimSpace(job.Name) == "" {
		job.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return job, nil
}

// Parse decodes a job document. Unknown keys are rejected and an unset frame
// size defaults to 1080x1920.
func Parse(b []byte) (types.Job, error) {
	var job types.Job
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&job); err != nil {
		return types.Job{}, fmt.Errorf("parse job: %w", err)
	}
	if job.Width == 0 && job.Height == 0 {
		job.Width, job.Height = DefaultWidth, DefaultHeight
	}
	return job, nil
}

// Resolve makes every relative media path of job absolute against base.
func Resolve(job *types.Job, base string) {
	abs := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(base, p)
	}
	for i := range job.Clips {
		for j := range job.Clips[i].Videos {
			job.Clips[i].Videos[j].Path = abs(job.Clips[i].Videos[j].Path)
		}
	}
	if job.Background != nil {
		job.Background.Path = abs(job.Background.Path)
	}
}

// CheckMedia reports the first source video that is not a readable file.
// Background tracks are not checked: a missing track only skips mixing.
func CheckMedia(job types.Job) error {
	for i, c := range job.Clips {
		for _, v := range c.Videos {
			st, err := os.Stat(v.Path)
			if err != nil {
				return fmt.Errorf("clip %d: %w", i+1, err)
			}
			if st.IsDir() {
				return fmt.Errorf("clip %d: %s is a directory", i+1, v.Path)
			}
		}
	}
	return nil
}
