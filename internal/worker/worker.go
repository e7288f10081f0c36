// Package worker implements the background worker process spec.md §5
// describes: it consumes jobs from the Job Queue Gateway and drives the
// Unified Pipeline, Demo Runner, or TTS Render Pipeline, one goroutine per
// in-flight job. The pattern (maxTasks semaphore, per-job cancel map,
// trace context detached from the dequeue loop rather than any single
// request) mirrors the teacher's mcpserver.TaskManager.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/apresai/narrated-demo/internal/action"
	"github.com/apresai/narrated-demo/internal/artifactstore"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/demo"
	"github.com/apresai/narrated-demo/internal/observability"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/apresai/narrated-demo/internal/ttsrender"
	"github.com/apresai/narrated-demo/internal/unified"
)

// jobTimeout is spec.md §5's global per-job timeout: "No partial
// checkpointing inside a run; restart from the beginning."
const jobTimeout = 60 * time.Minute

// Dispatcher is the subset of collaborators a Pool needs to actually run
// a job's work once dequeued. Production wiring passes the real
// unified.Runner/demo.Runner/ttsrender.Pipeline; tests pass fakes.
type Dispatcher interface {
	RunUnified(ctx context.Context, job *queue.Job) (any, error)
	RunDemoCapture(ctx context.Context, job *queue.Job) (any, error)
	RunRenderOnly(ctx context.Context, job *queue.Job) (any, error)
}

// Pool pulls jobs off a queue.Backend and executes them with bounded
// concurrency, mirroring TaskManager's running/maxTasks/cancels trio.
type Pool struct {
	Backend    queue.Backend
	Dispatcher Dispatcher
	Log        *slog.Logger
	MaxTasks   int
	BaseCtx    context.Context

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
	running int
}

// NewPool builds a Pool ready for Run. baseCtx should be cancelled on
// SIGTERM so in-flight jobs are marked failed instead of left stuck in
// "started" forever.
func NewPool(backend queue.Backend, dispatcher Dispatcher, maxTasks int, logger *slog.Logger, baseCtx context.Context) *Pool {
	if maxTasks <= 0 {
		maxTasks = 5
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		Backend:    backend,
		Dispatcher: dispatcher,
		Log:        logger,
		MaxTasks:   maxTasks,
		BaseCtx:    baseCtx,
		cancels:    make(map[string]context.CancelFunc),
	}
}

// Run polls the backend for jobs until ctx is cancelled. It blocks until
// then; cmd/worker's main calls it directly.
func (p *Pool) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		if !p.acquireSlot() {
			// At capacity; briefly yield before checking again rather than
			// dequeuing a job we can't start yet.
			select {
			case <-time.After(100 * time.Millisecond):
			case <-ctx.Done():
				return
			}
			continue
		}

		job, err := p.Backend.Dequeue(ctx)
		if err != nil {
			p.releaseSlot()
			if ctx.Err() != nil {
				return
			}
			p.Log.Error("dequeue failed", "error", err)
			continue
		}
		if job == nil {
			p.releaseSlot()
			if ctx.Err() != nil {
				return
			}
			continue
		}

		jobCtx := observability.DetachTraceContextFrom(ctx, p.BaseCtx)
		jobCtx, cancel := context.WithTimeout(jobCtx, jobTimeout)
		p.mu.Lock()
		p.cancels[job.JobID] = cancel
		p.mu.Unlock()

		go p.runJob(jobCtx, cancel, job)
	}
}

// Cancel cancels a running job's context, if it's still in flight.
func (p *Pool) Cancel(jobID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cancel, ok := p.cancels[jobID]; ok {
		cancel()
	}
}

func (p *Pool) acquireSlot() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running >= p.MaxTasks {
		return false
	}
	p.running++
	return true
}

func (p *Pool) releaseSlot() {
	p.mu.Lock()
	p.running--
	p.mu.Unlock()
}

func (p *Pool) runJob(ctx context.Context, cancel context.CancelFunc, job *queue.Job) {
	defer cancel()
	defer func() {
		// On shutdown (SIGTERM via BaseCtx, or the 60-minute deadline), mark
		// the job failed rather than leave it stuck in "started".
		if ctx.Err() != nil {
			failCtx, failCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer failCancel()
			reason := "worker shutdown during processing"
			if ctx.Err() == context.DeadlineExceeded {
				reason = "job exceeded the 60 minute timeout"
			}
			if err := p.Backend.MarkFailed(failCtx, job.JobID, reason); err != nil {
				p.Log.Error("mark failed after shutdown/timeout failed", "job_id", job.JobID, "error", err)
			}
		}
		p.mu.Lock()
		delete(p.cancels, job.JobID)
		p.running--
		p.mu.Unlock()
	}()

	log := p.Log.With("job_id", job.JobID, "run_type", job.RunType, "project_id", job.ProjectID)

	if err := p.Backend.MarkStarted(ctx, job.JobID); err != nil {
		log.Error("mark started failed", "error", err)
		return
	}

	result, err := p.dispatch(ctx, job)
	elapsed := time.Since(job.EnqueuedAt).Seconds()

	if ctx.Err() != nil {
		// Shutdown/timeout already handled by the deferred block above.
		queue.ObserveLatency(job.RunType, queue.StatusFailed, elapsed)
		return
	}

	if err != nil {
		log.Error("job failed", "error", err)
		if markErr := p.Backend.MarkFailed(context.Background(), job.JobID, err.Error()); markErr != nil {
			log.Error("mark failed failed", "error", markErr)
		}
		queue.ObserveLatency(job.RunType, queue.StatusFailed, elapsed)
		return
	}

	if markErr := p.Backend.MarkFinished(context.Background(), job.JobID, result); markErr != nil {
		log.Error("mark finished failed", "error", markErr)
		return
	}
	queue.ObserveLatency(job.RunType, queue.StatusFinished, elapsed)
}

// dispatch routes a job to the right pipeline based on run_type and
// narration_mode, per spec.md §4.9's job shape.
func (p *Pool) dispatch(ctx context.Context, job *queue.Job) (any, error) {
	switch job.RunType {
	case queue.RunTypeDemoCapture:
		return p.Dispatcher.RunDemoCapture(ctx, job)
	case queue.RunTypeRender:
		if unifiedNarrationMode(job) {
			return p.Dispatcher.RunUnified(ctx, job)
		}
		return p.Dispatcher.RunRenderOnly(ctx, job)
	default:
		return nil, fmt.Errorf("unknown run_type %q", job.RunType)
	}
}

func unifiedNarrationMode(job *queue.Job) bool {
	switch job.NarrationMode {
	case "unified", "timeline_unified":
		return true
	default:
		return false
	}
}

// realDispatcher wires the actual pipeline types into the Dispatcher
// interface for production use. Demo-only and render-only jobs follow the
// same load/execute/persist shape as unified.Runner.Run, just without the
// other half of that run.
type realDispatcher struct {
	Store     *project.Store
	Unified   *unified.Runner
	Demo      *demo.Runner
	TTS       *ttsrender.Pipeline
	Artifacts *artifactstore.Store
	Config    config.Config
	Now       func() time.Time
}

// NewDispatcher builds the production Dispatcher.
func NewDispatcher(store *project.Store, u *unified.Runner, d *demo.Runner, t *ttsrender.Pipeline, artifacts *artifactstore.Store, cfg config.Config) Dispatcher {
	return &realDispatcher{Store: store, Unified: u, Demo: d, TTS: t, Artifacts: artifacts, Config: cfg, Now: time.Now}
}

func (d *realDispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d *realDispatcher) RunUnified(ctx context.Context, job *queue.Job) (any, error) {
	return d.Unified.Run(ctx, job.ProjectID, unified.Correlation{QueueJobID: job.JobID, QueueName: job.QueueName})
}

// RunDemoCapture drives the Demo Runner alone (no narration render),
// persisting the run record with a "queue" correlation trigger instead of
// "unified_pipeline".
func (d *realDispatcher) RunDemoCapture(ctx context.Context, job *queue.Job) (any, error) {
	runID, err := unified.NewRunID("demo")
	if err != nil {
		return nil, err
	}

	p, err := d.Store.Load(job.ProjectID, d.now())
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", job.ProjectID, err)
	}

	executionMode := job.ExecutionMode
	if executionMode == "" {
		executionMode = p.Settings.DemoCaptureExecutionMode
	}
	if executionMode == "" {
		executionMode = d.Config.ExecutionMode
	}

	sortedActions, validationErrs := action.ValidateAndSort(p.Timeline.ActionEvents)
	if len(validationErrs) > 0 {
		return nil, fmt.Errorf("timeline action validation failed: %d error(s), first: %s", len(validationErrs), validationErrs[0].Message)
	}

	artifactsDir := filepath.Join(d.Config.DataDir, "projects", job.ProjectID, "work", "demo_runs", runID, "artifacts")
	logsDir := filepath.Join(d.Config.DataDir, "projects", job.ProjectID, "work", "demo_runs", runID, "logs")

	demoResult := d.Demo.Execute(ctx, sortedActions, demo.Options{
		ExecutionMode:   executionMode,
		ArtifactsDir:    artifactsDir,
		LogsDir:         logsDir,
		VideoDurationMS: p.Source.Video.DurationMS,
		SourceVideo:     p.Source.Video.Path,
	})

	record := project.DemoRunRecord{
		RunID:            runID,
		CreatedAt:        d.now(),
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
			Trigger:    "queue",
			QueueJobID: job.JobID,
			QueueName:  job.QueueName,
		},
	}

	if _, err := d.Store.Update(job.ProjectID, d.now(), func(p *project.Project) error {
		p.AppendDemoRun(record)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("persisting demo run record: %w", err)
	}

	if demoResult.Mode == string(project.DemoModeFailed) {
		return demoResult, fmt.Errorf("demo capture failed: %s", demoResult.ErrorMessage)
	}
	return demoResult, nil
}

// RunRenderOnly drives the TTS Render Pipeline alone against the
// project's existing source video, for narration_mode=tts_only.
func (d *realDispatcher) RunRenderOnly(ctx context.Context, job *queue.Job) (any, error) {
	p, err := d.Store.Load(job.ProjectID, d.now())
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", job.ProjectID, err)
	}

	segments := ttsrender.DeriveSegments(p.Timeline.NarrationEvents, p.Source.Video.DurationMS)
	renderID := ttsrender.RenderID(d.now())

	input := ttsrender.Input{
		Segments:        segments,
		ProjectDefaults: p.Settings.TTSDefaults,
		Profiles:        p.TTSProfiles,
		VideoDurationMS: p.Source.Video.DurationMS,
		SourceVideoPath: p.Source.Video.Path,
		WorkDir:         filepath.Join(d.Config.DataDir, "projects", job.ProjectID, "work", "tts_only"),
		ExportsDir:      filepath.Join(d.Config.DataDir, "projects", job.ProjectID, "exports"),
		Correlation:     ttsrender.Correlation{},
	}

	output, renderErr := d.TTS.Render(ctx, input, d.Config)

	record := project.RenderRecord{
		RenderID:        renderID,
		CreatedAt:       d.now(),
		Mode:            project.RenderModeTTSOnly,
		SourceVideoPath: p.Source.Video.Path,
		Correlation: project.Correlation{
			Trigger:    "queue",
			QueueJobID: job.JobID,
			QueueName:  job.QueueName,
		},
	}
	if output != nil {
		record.Segments = len(output.Segments)
		record.CacheHits = output.CacheHits
		record.GeneratedSegments = output.GeneratedSegments
		record.FinalMP4Path = output.FinalMP4Path
		record.StageTimingsMS = output.StageTimingsMS
	}
	if renderErr != nil {
		record.Status = project.StatusFailed
		record.ErrorSummary = project.ErrorSummary{HasError: true, Message: renderErr.Error()}
	} else {
		record.Status = project.StatusCompleted
	}

	if _, err := d.Store.Update(job.ProjectID, d.now(), func(p *project.Project) error {
		p.AppendRender(record)
		return nil
	}); err != nil {
		return output, fmt.Errorf("persisting render record: %w", err)
	}

	if renderErr != nil {
		return output, renderErr
	}

	if output != nil {
		if _, mirrorErr := d.Artifacts.MirrorExports(ctx, job.ProjectID, map[string]string{
			"final_mp4":          output.FinalMP4Path,
			"final_mp4_captions": output.FinalCaptionsPath,
			"narration_mix_wav":  output.NarrationWAVPath,
			"script_srt":         output.SRTPath,
		}); mirrorErr != nil {
			return output, fmt.Errorf("mirroring exports to s3: %w", mirrorErr)
		}
	}

	return output, nil
}
