package ttsrender

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/ttscache"
	"github.com/apresai/narrated-demo/internal/ttsprofile"
)

// synthesizeSegment implements spec.md §4.7's TTS phase for one segment:
// resolve profile/endpoint/params, check the cache, and on a miss call
// the endpoint, post-process, and persist. Any TTS-side failure degrades
// to silence of the segment's duration rather than failing the render.
func (p *Pipeline) synthesizeSegment(ctx context.Context, seg Segment, in Input, cfg config.Config) SegmentResult {
	profile, err := ttsprofile.Resolve(in.Profiles, seg.VoiceProfileID)
	if err != nil {
		profile = ttsprofile.NewDefault()
	}
	endpoint, err := ttsprofile.ResolveEndpoint(profile, in.ProjectEndpoint, cfg)
	if err != nil {
		return p.silenceResult(ctx, seg, in, nil, err.Error())
	}
	params := ttsprofile.ResolveParams(in.ProjectDefaults, nil, profile)

	key, err := computeCacheKey(seg.Text, params, endpoint, string(cfg.TTSMode), profile)
	if err != nil {
		return p.silenceResult(ctx, seg, in, nil, err.Error())
	}

	outPath := filepath.Join(in.WorkDir, seg.ID+".wav")
	if hit, err := p.Cache.Restore(key, outPath); err == nil && hit {
		dur, _ := p.durationOf(ctx, outPath)
		sha, _ := sha256File(outPath)
		return SegmentResult{Segment: seg, AudioPath: outPath, AudioSHA256: sha, AudioDurationMS: dur, CacheHit: true}
	}

	wav, attempts, err := p.TTSClient.Synthesize(ctx, endpoint, cfg.TTSMode, seg.Text, params)
	if err != nil {
		res := p.silenceResult(ctx, seg, in, attempts, err.Error())
		return res
	}

	rawPath := outPath + ".raw.wav"
	if err := os.WriteFile(rawPath, wav, 0o644); err != nil {
		return p.silenceResult(ctx, seg, in, attempts, fmt.Sprintf("writing raw tts audio: %v", err))
	}
	defer os.Remove(rawPath)

	if err := p.postprocess(ctx, rawPath, outPath, seg.DurationMS()); err != nil {
		return p.silenceResult(ctx, seg, in, attempts, err.Error())
	}

	if err := p.Cache.Store(key, outPath); err != nil {
		// Caching is an optimization, not correctness: a failed store
		// still leaves a usable rendered segment on disk.
		_ = err
	}

	dur, _ := p.durationOf(ctx, outPath)
	sha, _ := sha256File(outPath)
	return SegmentResult{
		Segment: seg, AudioPath: outPath, AudioSHA256: sha,
		AudioDurationMS: dur, CacheHit: false, Attempts: attempts,
	}
}

// silenceResult synthesizes segmentDurMS of silence in place of a failed
// TTS call, per spec.md §4.7's per-segment degradation rule.
func (p *Pipeline) silenceResult(ctx context.Context, seg Segment, in Input, attempts []AttemptLog, errMsg string) SegmentResult {
	outPath := filepath.Join(in.WorkDir, seg.ID+".wav")
	if attempts == nil {
		attempts = []AttemptLog{{Attempt: 1, Status: "error", Error: errMsg}}
	} else {
		attempts = append(attempts, AttemptLog{Attempt: len(attempts) + 1, Status: "error", Error: errMsg})
	}

	durSec := float64(seg.DurationMS()) / 1000.0
	_, _ = p.MediaTool.RunFFmpeg(ctx,
		"-y", "-f", "lavfi", "-i", fmt.Sprintf("anullsrc=r=%d:cl=stereo", MixSampleRate),
		"-t", fmt.Sprintf("%.3f", durSec),
		outPath,
	)

	sha, _ := sha256File(outPath)
	return SegmentResult{
		Segment: seg, AudioPath: outPath, AudioSHA256: sha,
		AudioDurationMS: seg.DurationMS(), CacheHit: false, Attempts: attempts, Silence: true,
	}
}

func (p *Pipeline) durationOf(ctx context.Context, path string) (int64, error) {
	probed, err := p.MediaTool.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return probed.DurationMS, nil
}

func computeCacheKey(text string, params map[string]any, endpoint, mode string, profile ttsprofile.Profile) (ttscache.Key, error) {
	var audioPromptSHA string
	if profile.VoiceMode == ttsprofile.VoiceReferenceAudio && profile.AudioPromptPath != "" {
		if sha, err := sha256File(profile.AudioPromptPath); err == nil {
			audioPromptSHA = sha
		}
	}
	return ttscache.ComputeKey(text, params, endpoint, mode, audioPromptSHA, "")
}

func sha256File(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
