package ttsrender

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apresai/narrated-demo/internal/config"
)

// Render runs the full TTS Render Pipeline (spec.md §4.7) over
// in.Segments: per-segment synthesis (cache-checked, TTS-called,
// post-processed, or silence-degraded), an ffmpeg mix down to one
// narration track, and a mux+caption pass producing the exported MP4s.
func (p *Pipeline) Render(ctx context.Context, in Input, cfg config.Config) (*Output, error) {
	if err := os.MkdirAll(in.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating work dir %s: %w", in.WorkDir, err)
	}
	if err := os.MkdirAll(in.ExportsDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating exports dir %s: %w", in.ExportsDir, err)
	}

	out := &Output{StageTimingsMS: map[string]int64{}, Correlation: in.Correlation}
	totalStart := p.now()

	ttsStart := p.now()
	results := make([]SegmentResult, 0, len(in.Segments))
	for _, seg := range in.Segments {
		res := p.synthesizeSegment(ctx, seg, in, cfg)
		results = append(results, res)
		if res.CacheHit {
			out.CacheHits++
		} else if !res.Silence {
			out.GeneratedSegments++
		}
	}
	out.Segments = results
	out.StageTimingsMS["tts_ms"] = p.now().Sub(ttsStart).Milliseconds()

	mixMuxStart := p.now()

	narrationWAV := narrationMixPath(in.ExportsDir)
	filterComplex, err := p.mixNarration(ctx, results, in.VideoDurationMS, narrationWAV)
	out.FilterComplex = filterComplex
	if err != nil {
		return out, err
	}
	out.NarrationWAVPath = narrationWAV

	srtPath := filepath.Join(in.ExportsDir, "script.srt")
	if err := WriteSRT(results, srtPath); err != nil {
		return out, fmt.Errorf("writing srt: %w", err)
	}
	out.SRTPath = srtPath

	finalMP4, finalCaptions, err := p.mux(ctx, in.SourceVideoPath, narrationWAV, srtPath, in.ExportsDir)
	out.FinalMP4Path = finalMP4
	if err != nil {
		return out, err
	}
	out.FinalCaptionsPath = finalCaptions

	out.StageTimingsMS["mix_mux_ms"] = p.now().Sub(mixMuxStart).Milliseconds()
	out.StageTimingsMS["total_ms"] = p.now().Sub(totalStart).Milliseconds()

	return out, nil
}
