package ttsrender

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// buildMixFilterComplex renders the audio filter graph spec.md §4.7
// describes: each segment input trimmed to its own duration, repositioned
// to its absolute start with adelay, padded, mixed down, then trimmed to
// the full video duration.
func buildMixFilterComplex(segments []SegmentResult, videoDurationMS int64) string {
	var labels []string
	var parts []string
	for i, s := range segments {
		label := fmt.Sprintf("a%d", i)
		durSec := float64(s.AudioDurationMS) / 1000.0
		parts = append(parts, fmt.Sprintf(
			"[%d:a]atrim=end=%.3f,asetpts=N/SR/TB,adelay=%d|%d,apad[%s]",
			i, durSec, s.Segment.StartMS, s.Segment.StartMS, label,
		))
		labels = append(labels, "["+label+"]")
	}

	mix := fmt.Sprintf(
		"%samix=inputs=%d:dropout_transition=0:normalize=0[aout]",
		strings.Join(labels, ""), len(segments),
	)
	trim := fmt.Sprintf(
		"[aout]atrim=end=%.3f,asetpts=N/SR/TB[narr]",
		float64(videoDurationMS)/1000.0,
	)

	parts = append(parts, mix, trim)
	return strings.Join(parts, ";")
}

// mixNarration runs the filter-complex graph, writing a 48kHz/stereo/
// PCM S16LE wav to out.
func (p *Pipeline) mixNarration(ctx context.Context, segments []SegmentResult, videoDurationMS int64, out string) (string, error) {
	filterComplex := buildMixFilterComplex(segments, videoDurationMS)

	args := []string{"-y"}
	for _, s := range segments {
		args = append(args, "-i", s.AudioPath)
	}
	args = append(args,
		"-filter_complex", filterComplex,
		"-map", "[narr]",
		"-ar", fmt.Sprintf("%d", MixSampleRate),
		"-ac", fmt.Sprintf("%d", MixChannels),
		"-c:a", "pcm_s16le",
		out,
	)

	if _, err := p.MediaTool.RunFFmpeg(ctx, args...); err != nil {
		return filterComplex, fmt.Errorf("mixing narration: %w", err)
	}
	return filterComplex, nil
}

func narrationMixPath(exportsDir string) string {
	return filepath.Join(exportsDir, "narration_mix.wav")
}
