package mediatool

import (
	"context"
	"encoding/json"
	"fmt"
)

// ProbeResult is the subset of ffprobe's JSON output this system cares
// about: whether a playable video stream exists, and its basic
// properties.
type ProbeResult struct {
	DurationMS  int64
	HasVideo    bool
	HasAudio    bool
	Width       int
	Height      int
	FPS         float64
	VideoCodec  string
	AudioCodec  string
}

type probeFormat struct {
	Duration string `json:"duration"`
}

type probeStream struct {
	CodecType  string `json:"codec_type"`
	CodecName  string `json:"codec_name"`
	Width      int    `json:"width"`
	Height     int    `json:"height"`
	RFrameRate string `json:"r_frame_rate"`
}

type probeJSON struct {
	Format  probeFormat   `json:"format"`
	Streams []probeStream `json:"streams"`
}

// Probe runs ffprobe against path in JSON output mode and extracts
// duration, stream presence, and codec names.
func (r *Runner) Probe(ctx context.Context, path string) (*ProbeResult, error) {
	res, err := r.RunFFprobe(ctx,
		"-v", "error",
		"-print_format", "json",
		"-show_format", "-show_streams",
		path,
	)
	if err != nil {
		return nil, err
	}

	var parsed probeJSON
	if err := json.Unmarshal([]byte(res.Stdout), &parsed); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output for %s: %w", path, err)
	}

	out := &ProbeResult{}
	if d, err := parseDurationSeconds(parsed.Format.Duration); err == nil {
		out.DurationMS = int64(d * 1000)
	}
	for _, s := range parsed.Streams {
		switch s.CodecType {
		case "video":
			out.HasVideo = true
			out.Width = s.Width
			out.Height = s.Height
			out.VideoCodec = s.CodecName
			out.FPS = parseFrameRate(s.RFrameRate)
		case "audio":
			out.HasAudio = true
			out.AudioCodec = s.CodecName
		}
	}
	return out, nil
}

// Playable matches spec.md §4.6's quality gate: the video stream exists
// and duration is strictly positive.
func (p *ProbeResult) Playable() bool {
	return p != nil && p.HasVideo && p.DurationMS > 0
}

func parseDurationSeconds(s string) (float64, error) {
	var f float64
	_, err := fmt.Sscanf(s, "%f", &f)
	return f, err
}

func parseFrameRate(s string) float64 {
	var num, den float64
	if _, err := fmt.Sscanf(s, "%f/%f", &num, &den); err == nil && den != 0 {
		return num / den
	}
	var f float64
	if _, err := fmt.Sscanf(s, "%f", &f); err == nil {
		return f
	}
	return 0
}
