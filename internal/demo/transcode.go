package demo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/mediatool"
)

// transcode converts the browser's native recording into
// artifacts/raw_demo.mp4 at StandardProfile. It includes an audio track
// only when the source actually has one.
func (r *Runner) transcode(ctx context.Context, session browser.Session, opts Options) error {
	src := session.VideoPath()
	if src == "" {
		return fmt.Errorf("browser session produced no recording")
	}
	if err := os.MkdirAll(opts.ArtifactsDir, 0o755); err != nil {
		return fmt.Errorf("creating artifacts dir: %w", err)
	}
	out := filepath.Join(opts.ArtifactsDir, "raw_demo.mp4")

	hasAudio := false
	if probe, err := r.MediaTool.Probe(ctx, src); err == nil {
		hasAudio = probe.HasAudio
	}

	args := []string{"-y", "-i", src,
		"-vf", fmt.Sprintf("scale=%d:%d", StandardProfile.Width, StandardProfile.Height),
		"-c:v", StandardProfile.VideoCodec,
		"-pix_fmt", StandardProfile.PixelFormat,
		"-preset", StandardProfile.Preset,
		"-r", fmt.Sprintf("%d", StandardProfile.FPS),
		"-movflags", StandardProfile.MovFlags,
	}
	if hasAudio {
		args = append(args, "-c:a", StandardProfile.AudioCodec)
	} else {
		args = append(args, "-an")
	}
	args = append(args, out)

	if _, err := r.MediaTool.RunFFmpeg(ctx, args...); err != nil {
		if mtErr, ok := err.(*mediatool.MediaToolError); ok {
			return fmt.Errorf("transcoding raw demo failed: %s", mtErr.StderrTail)
		}
		return fmt.Errorf("transcoding raw demo: %w", err)
	}

	info, err := os.Stat(out)
	if err != nil || info.Size() == 0 {
		return fmt.Errorf("transcoded raw demo is missing or empty")
	}
	return nil
}

// qualityGate probes rawDemoPath and reports playability per spec.md
// §4.6: the video stream must exist and duration must be > 0ms.
func (r *Runner) qualityGate(ctx context.Context, rawDemoPath string) (bool, *mediatool.ProbeResult, error) {
	probe, err := r.MediaTool.Probe(ctx, rawDemoPath)
	if err != nil {
		return false, nil, err
	}
	return probe.Playable(), probe, nil
}
