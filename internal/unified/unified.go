// Package unified implements the Unified Pipeline (spec.md §4.8): one
// project run that drives the Demo Runner and then feeds its recording
// into the TTS Render Pipeline as the narration source video.
package unified

import (
	"context"
	"crypto/rand"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/apresai/narrated-demo/internal/action"
	"github.com/apresai/narrated-demo/internal/artifactstore"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/demo"
	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/ttsrender"
	"github.com/oklog/ulid/v2"
)

// NewRunID mints a ULID-based run identifier, grounded on the teacher's
// own ulid.New(ulid.Timestamp(now), rand.Reader) pattern for job/podcast
// ids.
func NewRunID(prefix string) (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("generating %s run id: %w", prefix, err)
	}
	return prefix + "_" + id.String(), nil
}

// Correlation mirrors spec.md §4.8's trigger metadata, threaded from the
// queue job that invoked this run.
type Correlation struct {
	QueueJobID string
	QueueName  string
}

// Runner composes a demo.Runner and a ttsrender.Pipeline into one
// run_unified(project_id) call.
type Runner struct {
	Store      *project.Store
	DemoRunner *demo.Runner
	TTS        *ttsrender.Pipeline
	MediaTool  *mediatool.Runner
	// Artifacts mirrors exported output to S3 when configured. A nil
	// value (the default when S3_BUCKET is unset) is safe to use — every
	// Store method is a no-op on a nil receiver.
	Artifacts *artifactstore.Store
	Config    config.Config
	Now       func() time.Time
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

// Result is the outcome of one Run call.
type Result struct {
	UnifiedRunID string
	DemoRunID    string
	RenderID     string
	DemoResult   *demo.Result
	RenderOutput *ttsrender.Output
}

// Run executes spec.md §4.8's six steps against projectID.
func (r *Runner) Run(ctx context.Context, projectID string, corr Correlation) (*Result, error) {
	unifiedRunID, err := NewRunID("unified")
	if err != nil {
		return nil, err
	}
	demoRunID, err := NewRunID("demo")
	if err != nil {
		return nil, err
	}
	result := &Result{UnifiedRunID: unifiedRunID, DemoRunID: demoRunID}

	p, err := r.Store.Load(projectID, r.now())
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", projectID, err)
	}

	executionMode := p.Settings.DemoCaptureExecutionMode
	if executionMode == "" {
		executionMode = r.Config.ExecutionMode
	}

	sortedActions, validationErrs := action.ValidateAndSort(p.Timeline.ActionEvents)
	if len(validationErrs) > 0 {
		return nil, fmt.Errorf("timeline action validation failed: %d error(s), first: %s", len(validationErrs), validationErrs[0].Message)
	}

	artifactsDir := filepath.Join(r.Config.DataDir, "projects", projectID, "work", "demo_runs", demoRunID, "artifacts")
	logsDir := filepath.Join(r.Config.DataDir, "projects", projectID, "work", "demo_runs", demoRunID, "logs")

	demoOpts := demo.Options{
		ExecutionMode:   executionMode,
		ArtifactsDir:    artifactsDir,
		LogsDir:         logsDir,
		VideoDurationMS: p.Source.Video.DurationMS,
		SourceVideo:     p.Source.Video.Path,
	}
	demoResult := r.DemoRunner.Execute(ctx, sortedActions, demoOpts)
	result.DemoResult = demoResult

	demoRecord := project.DemoRunRecord{
		RunID:            demoRunID,
		CreatedAt:        r.now(),
		Mode:             project.DemoMode(demoResult.Mode),
		ExecutionMode:    executionMode,
		ActionsTotal:     demoResult.ActionsTotal,
		ActionsExecuted:  demoResult.ActionsExecuted,
		StageTimingsMS:   demoResult.StageTimingsMS,
		DriftStats:       project.DriftStats(demoResult.DriftStats),
		ExecutionSummary: project.ExecutionSummary(demoResult.ExecutionSummary),
		ErrorSummary:     project.ErrorSummary{HasError: demoResult.ErrorMessage != "", Message: demoResult.ErrorMessage},
		ArtifactSummary:  project.ArtifactSummary(demoResult.ArtifactSummary),
		DebugArtifacts: project.DebugArtifacts{
			TracePath:       demoResult.TracePath,
			ScreenshotPaths: demoResult.ScreenshotPaths,
		},
		RecordingProfile: demoResult.RecordingProfile,
		Correlation: project.Correlation{
			Trigger:      "unified_pipeline",
			UnifiedRunID: unifiedRunID,
			QueueJobID:   corr.QueueJobID,
			QueueName:    corr.QueueName,
		},
	}

	if _, err := r.Store.Update(projectID, r.now(), func(p *project.Project) error {
		p.AppendDemoRun(demoRecord)
		return nil
	}); err != nil {
		return result, fmt.Errorf("persisting demo run record: %w", err)
	}

	if demoResult.Mode == string(project.DemoModeFailed) {
		return result, fmt.Errorf("demo capture failed: %s", demoResult.ErrorMessage)
	}

	sourceVideo := selectSourceVideo(demoResult, artifactsDir, p.Source.Video.Path)

	segments := ttsrender.DeriveSegments(p.Timeline.NarrationEvents, p.Source.Video.DurationMS)
	workDir := filepath.Join(r.Config.DataDir, "projects", projectID, "work", "tts_only")
	exportsDir := filepath.Join(r.Config.DataDir, "projects", projectID, "exports")

	renderInput := ttsrender.Input{
		Segments:        segments,
		ProjectDefaults: p.Settings.TTSDefaults,
		Profiles:        p.TTSProfiles,
		VideoDurationMS: p.Source.Video.DurationMS,
		SourceVideoPath: sourceVideo,
		WorkDir:         workDir,
		ExportsDir:      exportsDir,
		Correlation: ttsrender.Correlation{
			DemoRunID:    demoRunID,
			UnifiedRunID: unifiedRunID,
		},
	}

	renderID := ttsrender.RenderID(r.now())
	result.RenderID = renderID

	renderOutput, renderErr := r.TTS.Render(ctx, renderInput, r.Config)
	result.RenderOutput = renderOutput

	renderRecord := project.RenderRecord{
		RenderID:          renderID,
		CreatedAt:         r.now(),
		Mode:              project.RenderModeUnified,
		SourceVideoPath:   sourceVideo,
		ErrorSummary:      project.ErrorSummary{},
		Correlation: project.Correlation{
			Trigger:         "unified_pipeline",
			UnifiedRunID:    unifiedRunID,
			DemoRunID:       demoRunID,
			QueueJobID:      corr.QueueJobID,
			QueueName:       corr.QueueName,
			SourceVideoPath: sourceVideo,
		},
	}
	if renderOutput != nil {
		renderRecord.Segments = len(renderOutput.Segments)
		renderRecord.CacheHits = renderOutput.CacheHits
		renderRecord.GeneratedSegments = renderOutput.GeneratedSegments
		renderRecord.FinalMP4Path = renderOutput.FinalMP4Path
		renderRecord.StageTimingsMS = renderOutput.StageTimingsMS
	}
	if renderErr != nil {
		renderRecord.Status = project.StatusFailed
		renderRecord.ErrorSummary = project.ErrorSummary{HasError: true, Message: renderErr.Error()}
	} else {
		renderRecord.Status = project.StatusCompleted
	}

	if _, err := r.Store.Update(projectID, r.now(), func(p *project.Project) error {
		p.AppendRender(renderRecord)
		for i, run := range p.Demo.Runs {
			if run.RunID == demoRunID {
				p.Demo.Runs[i].Correlation.RenderID = renderID
				p.Demo.Runs[i].Correlation.RenderMode = string(project.RenderModeUnified)
				p.Demo.Runs[i].Correlation.SourceVideoPath = sourceVideo
			}
		}
		return nil
	}); err != nil {
		return result, fmt.Errorf("persisting render record: %w", err)
	}

	if renderErr != nil {
		return result, renderErr
	}

	if renderOutput != nil {
		if _, mirrorErr := r.Artifacts.MirrorExports(ctx, projectID, map[string]string{
			"final_mp4":          renderOutput.FinalMP4Path,
			"final_mp4_captions": renderOutput.FinalCaptionsPath,
			"narration_mix_wav":  renderOutput.NarrationWAVPath,
			"script_srt":         renderOutput.SRTPath,
		}); mirrorErr != nil {
			return result, fmt.Errorf("mirroring exports to s3: %w", mirrorErr)
		}
	}

	return result, nil
}

// selectSourceVideo implements spec.md §4.8 step 4: the raw demo mp4 wins
// iff it exists, is non-empty, and is either playable or carries no
// playability verdict at all; otherwise fall back to the project's
// source video.
func selectSourceVideo(demoResult *demo.Result, artifactsDir, fallback string) string {
	rawPath := filepath.Join(artifactsDir, "raw_demo.mp4")
	info, err := os.Stat(rawPath)
	if err != nil || info.Size() == 0 {
		return fallback
	}
	playable := demoResult.ArtifactSummary.RawDemoPlayable
	if playable == nil || *playable {
		return rawPath
	}
	return fallback
}
