// Package project owns the single JSON document persisted per project —
// source video metadata, settings, timeline, TTS profiles, and the
// append-only render/demo histories (spec.md §3, §4.3).
package project

import (
	"time"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/apresai/narrated-demo/internal/ttsprofile"
)

// CurrentSchemaVersion is stamped onto every project this store writes.
// ensure_defaults migrates older documents up to it.
const CurrentSchemaVersion = "1.0"

type Video struct {
	Path       string `json:"path"`
	SHA256     string `json:"sha256,omitempty"`
	DurationMS int64  `json:"duration_ms,omitempty"`
	Width      int    `json:"width,omitempty"`
	Height     int    `json:"height,omitempty"`
	FPS        float64 `json:"fps,omitempty"`
	HasAudio   bool   `json:"has_audio,omitempty"`
}

type Source struct {
	Video Video `json:"video"`
}

type Settings struct {
	NarrationMode             config.NarrationMode `json:"narration_mode"`
	DemoCaptureExecutionMode  config.ExecutionMode `json:"demo_capture_execution_mode"`
	DemoContext               string               `json:"demo_context"`
	TTSDefaults               map[string]any       `json:"tts_defaults,omitempty"`
	NarrationWPS              float64              `json:"narration_wps,omitempty"`
	NarrationMinWords         int                  `json:"narration_min_words,omitempty"`
	NarrationMaxWords         int                  `json:"narration_max_words,omitempty"`
}

// RunStatus is the outcome enum shared by DemoRunRecord and RenderRecord.
type RunStatus string

const (
	StatusCompleted RunStatus = "completed"
	StatusFailed    RunStatus = "failed"
)

type DemoMode string

const (
	DemoModePlaywright DemoMode = "demo_capture_playwright"
	DemoModeDryRun     DemoMode = "demo_capture_dry_run"
	DemoModeFailed     DemoMode = "demo_capture_failed"
)

type RenderMode string

const (
	RenderModeTTSOnly RenderMode = "tts_only"
	RenderModeUnified RenderMode = "unified"
)

type ErrorSummary struct {
	HasError bool   `json:"has_error"`
	Message  string `json:"message,omitempty"`
}

type DriftStats struct {
	Count int64   `json:"count"`
	Mean  float64 `json:"mean"`
	Max   float64 `json:"max"`
	Min   float64 `json:"min"`
	P95   float64 `json:"p95"`
}

type ExecutionSummary struct {
	Total    int `json:"total"`
	OK       int `json:"ok"`
	Error    int `json:"error"`
	Retries  int `json:"retries"`
	Timeouts int `json:"timeouts"`
}

type ArtifactSummary struct {
	RawDemoPath     string `json:"raw_demo_path,omitempty"`
	RawDemoSize     int64  `json:"raw_demo_size,omitempty"`
	RawDemoDuration int64  `json:"raw_demo_duration_ms,omitempty"`
	RawDemoPlayable *bool  `json:"raw_demo_playable,omitempty"`
	Codecs          string `json:"codecs,omitempty"`
}

type DebugArtifacts struct {
	TracePath       string   `json:"trace_path,omitempty"`
	ScreenshotPaths []string `json:"screenshot_paths,omitempty"`
}

type Correlation struct {
	QueueJobID    string `json:"queue_job_id,omitempty"`
	QueueName     string `json:"queue_name,omitempty"`
	Trigger       string `json:"trigger,omitempty"`
	UnifiedRunID  string `json:"unified_run_id,omitempty"`
	RenderID      string `json:"render_id,omitempty"`
	RenderMode    string `json:"render_mode,omitempty"`
	SourceVideoPath string `json:"source_video_path,omitempty"`
	DemoRunID     string `json:"demo_run_id,omitempty"`
}

type DependencyStatus struct {
	Queue   bool `json:"queue"`
	TTS     bool `json:"tts"`
	Browser bool `json:"browser"`
}

type DemoRunRecord struct {
	RunID             string            `json:"run_id"`
	CreatedAt         time.Time         `json:"created_at"`
	Mode              DemoMode          `json:"mode"`
	ExecutionMode     config.ExecutionMode `json:"execution_mode"`
	ActionsTotal      int               `json:"actions_total"`
	ActionsExecuted   int               `json:"actions_executed"`
	StageTimingsMS    map[string]int64  `json:"stage_timings_ms,omitempty"`
	DriftStats        DriftStats        `json:"drift_stats"`
	ExecutionSummary  ExecutionSummary  `json:"execution_summary"`
	ErrorSummary      ErrorSummary      `json:"error_summary"`
	ArtifactSummary   ArtifactSummary   `json:"artifact_summary"`
	DebugArtifacts    DebugArtifacts    `json:"debug_artifacts"`
	RecordingProfile  string            `json:"recording_profile,omitempty"`
	Correlation       Correlation       `json:"correlation"`
	DependencyStatus  DependencyStatus  `json:"dependency_status"`
}

type RenderRecord struct {
	RenderID          string           `json:"render_id"`
	CreatedAt         time.Time        `json:"created_at"`
	Status            RunStatus        `json:"status"`
	Mode              RenderMode       `json:"mode"`
	Segments          int              `json:"segments"`
	CacheHits         int              `json:"cache_hits"`
	GeneratedSegments int              `json:"generated_segments"`
	FinalMP4Path      string           `json:"final_mp4_path,omitempty"`
	SourceVideoPath   string           `json:"source_video_path,omitempty"`
	StageTimingsMS    map[string]int64 `json:"stage_timings_ms,omitempty"`
	ErrorSummary      ErrorSummary     `json:"error_summary"`
	Correlation       Correlation      `json:"correlation"`
}

type RenderHistory struct {
	LastRenderID string         `json:"last_render_id,omitempty"`
	History      []RenderRecord `json:"history"`
}

type DemoHistory struct {
	LastRunID string          `json:"last_run_id,omitempty"`
	Runs      []DemoRunRecord `json:"runs"`
}

type Exports struct {
	Artifacts          ExportArtifacts `json:"artifacts"`
	FFmpeg             FFmpegProvenance `json:"ffmpeg"`
}

type ExportArtifacts struct {
	ScriptSRT        string `json:"script_srt,omitempty"`
	NarrationMixWAV  string `json:"narration_mix_wav,omitempty"`
	FinalMP4         string `json:"final_mp4,omitempty"`
	FinalMP4Captions string `json:"final_mp4_with_captions,omitempty"`
}

type FFmpegProvenance struct {
	Commands               []string `json:"commands,omitempty"`
	FilterComplexScriptPath string  `json:"filter_complex_script_path,omitempty"`
}

// Project is the single document persisted per project id.
type Project struct {
	SchemaVersion string                          `json:"schema_version"`
	ProjectID     string                          `json:"project_id"`
	CreatedAt     time.Time                       `json:"created_at"`
	UpdatedAt     time.Time                       `json:"updated_at"`
	Source        Source                          `json:"source"`
	Settings      Settings                        `json:"settings"`
	Timeline      timeline.Timeline               `json:"timeline"`
	TTSProfiles   map[string]ttsprofile.Profile   `json:"tts_profiles"`
	Renders       RenderHistory                   `json:"renders"`
	Demo          DemoHistory                     `json:"demo"`
	Exports       Exports                         `json:"exports"`
}

// New builds a freshly-created project with every default field filled,
// equivalent to running ensure_defaults on an empty document.
func New(projectID string, now time.Time) *Project {
	p := &Project{ProjectID: projectID}
	EnsureDefaults(p, now)
	return p
}
