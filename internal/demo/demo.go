// Package demo implements the Demo Runner (spec.md §4.6): it drives a
// scripted browser through a timeline's action events, producing a
// recorded MP4, per-action timing/retry metadata, and provenance.
package demo

import (
	"context"
	"time"

	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/rs/zerolog"
)

// StandardProfile is the recording/transcode target spec.md §4.6
// mandates for every demo run.
var StandardProfile = RecordingProfile{
	Container:    "mp4",
	VideoCodec:   "libx264",
	PixelFormat:  "yuv420p",
	AudioCodec:   "aac",
	Preset:       "veryfast",
	FPS:          30,
	MovFlags:     "+faststart",
	Width:        1280,
	Height:       720,
}

type RecordingProfile struct {
	Container   string
	VideoCodec  string
	PixelFormat string
	AudioCodec  string
	Preset      string
	FPS         int
	MovFlags    string
	Width       int
	Height      int
}

// ErrorType classifies why an action attempt failed, driving the retry
// decision (spec.md §4.6).
type ErrorType string

const (
	ErrorTimeout          ErrorType = "timeout"
	ErrorTransientBrowser ErrorType = "transient_browser"
	ErrorTransientNetwork ErrorType = "transient_network"
	ErrorAction           ErrorType = "action_error"
)

func (e ErrorType) Retryable() bool {
	switch e {
	case ErrorTimeout, ErrorTransientBrowser, ErrorTransientNetwork:
		return true
	default:
		return false
	}
}

// AttemptLog records one attempt at one action.
type AttemptLog struct {
	Attempt   int       `json:"attempt"`
	Status    string    `json:"status"`
	ElapsedMS int64     `json:"elapsed_ms"`
	Retryable bool      `json:"retryable"`
	ErrorType ErrorType `json:"error_type,omitempty"`
	Error     string    `json:"error,omitempty"`
}

// ExecutionRecord is one action event's full outcome.
type ExecutionRecord struct {
	ActionID      string       `json:"action_id"`
	Status        string       `json:"status"` // "ok" | "error"
	Attempts      int          `json:"attempts"`
	RetryCount    int          `json:"retry_count"`
	AttemptLogs   []AttemptLog `json:"attempt_logs"`
	PlannedAtMS   int64        `json:"planned_at_ms"`
	ActualAtMS    int64        `json:"actual_at_ms"`
	DriftMS       int64        `json:"drift_ms"`
	ScreenshotPath string      `json:"screenshot_path,omitempty"`
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

// Result is the full outcome of one Execute call, equivalent to
// spec.md's DemoRunRecord minus the fields the project store owns
// (run_id, created_at, correlation).
type Result struct {
	Mode             string           `json:"mode"` // demo_capture_playwright | demo_capture_dry_run | demo_capture_failed
	ExecutionMode    config.ExecutionMode `json:"execution_mode"`
	ActionsTotal     int              `json:"actions_total"`
	ActionsExecuted  int              `json:"actions_executed"`
	StageTimingsMS   map[string]int64 `json:"stage_timings_ms"`
	DriftStats       DriftStats       `json:"drift_stats"`
	ExecutionSummary ExecutionSummary `json:"execution_summary"`
	Executions       []ExecutionRecord `json:"executions"`
	ErrorMessage     string           `json:"error,omitempty"`
	ArtifactSummary  ArtifactSummary  `json:"artifact_summary"`
	TracePath        string           `json:"trace_path,omitempty"`
	ScreenshotPaths  []string         `json:"screenshot_paths,omitempty"`
	RecordingProfile string           `json:"recording_profile"`
}

// Options configures one Execute call.
type Options struct {
	ExecutionMode config.ExecutionMode
	ArtifactsDir  string // "<project>/work/demo_runs/<run_id>/artifacts"
	LogsDir       string // "<project>/work/demo_runs/<run_id>/logs"
	VideoDurationMS int64

	// SourceVideo, if set, feeds the browser's initial navigation context
	// (unused directly by Execute; carried for callers that need it).
	SourceVideo string
}

// Runner drives a browser Session through a set of sorted action events.
type Runner struct {
	Prober     browser.Prober
	NewSession func(ctx context.Context) (browser.Session, error)
	MediaTool  *mediatool.Runner
	Now        func() time.Time
	Sleep      func(ctx context.Context, d time.Duration) error

	// Logger, if set, receives a per-attempt structured log line for
	// every action attempt (spec.md §4.6).
	Logger *zerolog.Logger
}

// NewRunner wires a Runner with real time/sleep, suitable for production.
func NewRunner(prober browser.Prober, newSession func(ctx context.Context) (browser.Session, error), mt *mediatool.Runner) *Runner {
	return &Runner{
		Prober:     prober,
		NewSession: newSession,
		MediaTool:  mt,
		Now:        time.Now,
		Sleep: func(ctx context.Context, d time.Duration) error {
			t := time.NewTimer(d)
			defer t.Stop()
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-t.C:
				return nil
			}
		},
	}
}

// actionTimeout returns a's declared timeout, defaulting per spec.md §3.
func actionTimeout(a timeline.ActionEvent) time.Duration {
	ms := a.TimeoutMS
	if ms <= 0 {
		ms = timeline.DefaultTimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

func actionAttempts(a timeline.ActionEvent) int {
	retries := a.Retries
	if retries < 0 {
		retries = timeline.DefaultRetries
	}
	return 1 + retries
}
