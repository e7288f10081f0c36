package ttsrender

import (
	"context"
	"fmt"
	"math"
	"os"
)

// postprocess applies spec.md §4.7's fixed chain to the raw synthesized
// WAV at in, writing the result to out: trim leading silence, loudness
// normalize to I=-16/TP=-1.5/LRA=11, then limit at -1.0dB. segmentDurMS
// bounds a subsequent trim+fade-out pass so narration never outruns its
// segment window.
func (p *Pipeline) postprocess(ctx context.Context, in, out string, segmentDurMS int64) error {
	filters := fmt.Sprintf(
		"silenceremove=start_periods=1:start_duration=0.1:start_threshold=-50dB,"+
			"loudnorm=I=%.1f:TP=%.1f:LRA=%.1f,"+
			"alimiter=limit=%s",
		LoudnessIntegrated, LoudnessTruePeak, LoudnessRange, dbToLinear(LimiterCeilingDB),
	)

	_, err := p.MediaTool.RunFFmpeg(ctx,
		"-y", "-i", in,
		"-af", filters,
		out,
	)
	if err != nil {
		return fmt.Errorf("post-processing tts audio %s: %w", in, err)
	}

	probed, err := p.MediaTool.Probe(ctx, out)
	if err != nil {
		return fmt.Errorf("probing post-processed tts audio %s: %w", out, err)
	}
	if probed.DurationMS > segmentDurMS {
		return p.trimWithFade(ctx, out, segmentDurMS)
	}
	return nil
}

// trimWithFade cuts path down to durMS with a short fade-out, applied
// in place via a temp file swap.
func (p *Pipeline) trimWithFade(ctx context.Context, path string, durMS int64) error {
	tmp := path + ".trimmed.wav"
	durSec := float64(durMS) / 1000.0
	fadeStart := durSec - fadeOutSeconds
	if fadeStart < 0 {
		fadeStart = 0
	}

	_, err := p.MediaTool.RunFFmpeg(ctx,
		"-y", "-i", path,
		"-t", fmt.Sprintf("%.3f", durSec),
		"-af", fmt.Sprintf("afade=t=out:st=%.3f:d=%.3f", fadeStart, fadeOutSeconds),
		tmp,
	)
	if err != nil {
		return fmt.Errorf("trimming+fading %s: %w", path, err)
	}
	return replaceFile(tmp, path)
}

const fadeOutSeconds = 0.15

// dbToLinear renders a dB ceiling as the linear amplitude alimiter's
// "limit" option expects.
func dbToLinear(db float64) string {
	return fmt.Sprintf("%.4f", math.Pow(10, db/20.0))
}

func replaceFile(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("replacing %s with %s: %w", dst, src, err)
	}
	return nil
}
