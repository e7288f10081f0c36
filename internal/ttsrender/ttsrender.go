// Package ttsrender implements the TTS Render Pipeline (spec.md §4.7):
// turning a project's narration timeline into a mixed, captioned MP4 via
// per-segment TTS synthesis, an ffmpeg mix graph, and a mux/caption pass.
package ttsrender

import (
	"time"

	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/ttscache"
	"github.com/apresai/narrated-demo/internal/ttsprofile"
)

// Loudness/limiter targets spec.md §4.7 mandates for every segment.
const (
	LoudnessIntegrated = -16.0
	LoudnessTruePeak    = -1.5
	LoudnessRange       = 11.0
	LimiterCeilingDB    = -1.0

	MixSampleRate = 48000
	MixChannels   = 2
)

// Segment is one narration event after timeline→segment derivation.
type Segment struct {
	ID             string
	StartMS        int64
	EndMS          int64
	Text           string
	VoiceProfileID string
}

// DurationMS is the segment's narration window length.
func (s Segment) DurationMS() int64 { return s.EndMS - s.StartMS }

// SegmentResult is the synthesis outcome for one segment.
type SegmentResult struct {
	Segment         Segment        `json:"-"`
	AudioPath       string         `json:"audio_path"`
	AudioSHA256     string         `json:"audio_sha256"`
	AudioDurationMS int64          `json:"audio_duration_ms"`
	CacheHit        bool           `json:"cache_hit"`
	Attempts        []AttemptLog   `json:"attempts"`
	Silence         bool           `json:"silence,omitempty"`
}

// AttemptLog records one TTS HTTP call attempt.
type AttemptLog struct {
	Attempt   int    `json:"attempt"`
	Status    string `json:"status"` // "ok" | "error"
	ElapsedMS int64  `json:"elapsed_ms"`
	Error     string `json:"error,omitempty"`
}

// Input configures one Render call.
type Input struct {
	Segments        []Segment
	ProjectDefaults map[string]any
	Profiles        map[string]ttsprofile.Profile
	ProjectEndpoint string
	VideoDurationMS int64
	SourceVideoPath string
	WorkDir         string // "<project>/work/tts_only"
	ExportsDir      string // "<project>/exports"
	Correlation     Correlation
}

// Correlation carries caller-supplied linkage ids through to the
// persisted RenderRecord, per spec.md §4.7.
type Correlation struct {
	DemoRunID    string
	UnifiedRunID string
}

// Output is the full render outcome.
type Output struct {
	Segments          []SegmentResult
	CacheHits         int
	GeneratedSegments int
	FinalMP4Path      string
	FinalCaptionsPath string
	NarrationWAVPath  string
	SRTPath           string
	FilterComplex     string
	StageTimingsMS    map[string]int64
	Correlation       Correlation
}

// Pipeline wires the collaborators Render needs.
type Pipeline struct {
	TTSClient *Client
	Cache     *ttscache.Cache
	MediaTool *mediatool.Runner
	Now       func() time.Time
}

// NewPipeline builds a Pipeline with real time, suitable for production.
func NewPipeline(client *Client, cache *ttscache.Cache, mt *mediatool.Runner) *Pipeline {
	return &Pipeline{TTSClient: client, Cache: cache, MediaTool: mt, Now: time.Now}
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

// RenderID mints a render_id of the form spec.md §4.7 specifies:
// "render_" + an ISO-8601 UTC timestamp with separators stripped.
func RenderID(now time.Time) string {
	return "render_" + now.UTC().Format("20060102T150405Z")
}
