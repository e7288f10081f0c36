package demo

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/timeline"
)

// Execute runs actions (already validated and sorted by
// internal/action.ValidateAndSort) against a browser session, per
// spec.md §4.6. playwright_optional falls back to FakeSession-backed
// dry-run when the capability probe fails; playwright_required fails the
// run immediately instead.
func (r *Runner) Execute(ctx context.Context, actions []timeline.ActionEvent, opts Options) *Result {
	result := &Result{
		ExecutionMode:    opts.ExecutionMode,
		ActionsTotal:     len(actions),
		StageTimingsMS:   map[string]int64{},
		RecordingProfile: StandardProfile.Container,
	}

	stageStart := r.now()

	probeErr := r.Prober.Probe(ctx)
	dryRun := false
	if probeErr != nil {
		if opts.ExecutionMode == config.ExecutionPlaywrightRequired {
			result.Mode = "demo_capture_failed"
			result.ErrorMessage = fmt.Sprintf("playwright_required: browser capability unavailable: %v", probeErr)
			return result
		}
		dryRun = true
	}

	var session browser.Session
	var err error
	if dryRun {
		session = browser.NewFakeSession()
	} else {
		session, err = r.NewSession(ctx)
		if err != nil {
			result.Mode = "demo_capture_failed"
			result.ErrorMessage = fmt.Sprintf("creating browser session: %v", err)
			return result
		}
	}
	defer session.Close(ctx)

	if err := session.NewPage(ctx); err != nil {
		result.Mode = "demo_capture_failed"
		result.ErrorMessage = fmt.Sprintf("opening page: %v", err)
		return result
	}

	startTS := r.now()
	executions := make([]ExecutionRecord, 0, len(actions))
	var drifts []float64

	for _, a := range actions {
		plannedAt := startTS.Add(time.Duration(a.AtMS) * time.Millisecond)
		if d := time.Until(plannedAt); d > 0 {
			if err := r.sleep(ctx, d); err != nil {
				break
			}
		}
		actualAt := r.now()
		driftMS := actualAt.Sub(plannedAt).Milliseconds()
		drifts = append(drifts, float64(driftMS))

		rec := r.executeOne(ctx, session, a, opts)
		rec.PlannedAtMS = a.AtMS
		rec.ActualAtMS = actualAt.Sub(startTS).Milliseconds()
		rec.DriftMS = driftMS
		executions = append(executions, rec)
	}

	result.ActionsExecuted = len(executions)
	result.Executions = executions
	result.DriftStats = computeDriftStats(drifts)
	result.ExecutionSummary = summarize(executions)

	for _, rec := range executions {
		result.ScreenshotPaths = appendIfNonEmpty(result.ScreenshotPaths, rec.ScreenshotPath)
	}

	result.StageTimingsMS["capture_ms"] = r.now().Sub(stageStart).Milliseconds()

	if dryRun {
		result.Mode = "demo_capture_dry_run"
		return result
	}

	transcodeStart := r.now()
	if err := r.transcode(ctx, session, opts); err != nil {
		result.Mode = "demo_capture_failed"
		result.ErrorMessage = err.Error()
		result.StageTimingsMS["transcode_ms"] = r.now().Sub(transcodeStart).Milliseconds()
		return result
	}
	result.StageTimingsMS["transcode_ms"] = r.now().Sub(transcodeStart).Milliseconds()

	rawDemoPath := filepath.Join(opts.ArtifactsDir, "raw_demo.mp4")
	result.ArtifactSummary.RawDemoPath = rawDemoPath

	hasActionErrors := result.ExecutionSummary.Error > 0
	if !hasActionErrors {
		playable, probeResult, probeErr := r.qualityGate(ctx, rawDemoPath)
		if probeErr == nil {
			result.ArtifactSummary.RawDemoPlayable = &playable
			if probeResult != nil {
				result.ArtifactSummary.RawDemoDuration = probeResult.DurationMS
				result.ArtifactSummary.Codecs = fmt.Sprintf("%s/%s", probeResult.VideoCodec, probeResult.AudioCodec)
			}
		}
		if probeErr != nil || !playable {
			result.Mode = "demo_capture_failed"
			result.ErrorMessage = "raw demo failed the playability quality gate"
			return result
		}
	}

	result.Mode = "demo_capture_playwright"
	return result
}

func (r *Runner) logAttempt(actionID string, a AttemptLog) {
	if r.Logger == nil {
		return
	}
	logAttempt(*r.Logger, actionID, a)
}

func (r *Runner) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now()
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// executeOne runs every retry attempt for a single action event.
func (r *Runner) executeOne(ctx context.Context, session browser.Session, a timeline.ActionEvent, opts Options) ExecutionRecord {
	rec := ExecutionRecord{ActionID: a.ID}
	timeout := actionTimeout(a)
	attempts := actionAttempts(a)

	if a.Action == timeline.ActionWait {
		if ms, ok := numericArg(a.Args["ms"]); ok && time.Duration(ms)*time.Millisecond > timeout {
			rec.Status = "error"
			rec.Attempts = 1
			rec.AttemptLogs = []AttemptLog{{
				Attempt: 1, Status: "error", Error: "wait duration exceeds action timeout", ErrorType: ErrorAction,
			}}
			return rec
		}
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		start := r.now()
		err := r.invoke(ctx, session, a, timeout)
		elapsed := r.now().Sub(start).Milliseconds()

		if err == nil {
			rec.Status = "ok"
			rec.Attempts = attempt
			rec.RetryCount = attempt - 1
			al := AttemptLog{Attempt: attempt, Status: "ok", ElapsedMS: elapsed}
			rec.AttemptLogs = append(rec.AttemptLogs, al)
			r.logAttempt(a.ID, al)
			return rec
		}

		errType := classify(err)
		retryable := errType.Retryable() && attempt < attempts
		al := AttemptLog{
			Attempt: attempt, Status: "error", ElapsedMS: elapsed,
			Retryable: retryable, ErrorType: errType, Error: err.Error(),
		}
		rec.AttemptLogs = append(rec.AttemptLogs, al)
		r.logAttempt(a.ID, al)

		if !retryable {
			rec.Status = "error"
			rec.Attempts = attempt
			rec.RetryCount = attempt - 1
			if opts.ArtifactsDir != "" {
				shotPath := filepath.Join(opts.ArtifactsDir, "screenshots", a.ID+".png")
				if shotErr := session.Screenshot(ctx, shotPath); shotErr == nil {
					rec.ScreenshotPath = shotPath
				}
			}
			return rec
		}
	}

	rec.Status = "error"
	rec.Attempts = attempts
	rec.RetryCount = attempts - 1
	return rec
}

func (r *Runner) invoke(ctx context.Context, session browser.Session, a timeline.ActionEvent, timeout time.Duration) error {
	switch a.Action {
	case timeline.ActionGoto:
		return session.Goto(ctx, a.Target, timeout)
	case timeline.ActionClick:
		return session.Click(ctx, a.Target, timeout)
	case timeline.ActionFill:
		return session.Fill(ctx, a.Target, a.Args["value"], timeout)
	case timeline.ActionPress:
		key, _ := a.Args["key"].(string)
		return session.Press(ctx, a.Target, key, timeout)
	case timeline.ActionWait:
		ms, _ := numericArg(a.Args["ms"])
		return session.Wait(ctx, time.Duration(ms)*time.Millisecond)
	default:
		return fmt.Errorf("unsupported action verb %q", a.Action)
	}
}

func numericArg(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case int64:
		return n, true
	default:
		return 0, false
	}
}

func summarize(executions []ExecutionRecord) ExecutionSummary {
	s := ExecutionSummary{Total: len(executions)}
	for _, e := range executions {
		if e.Status == "ok" {
			s.OK++
		} else {
			s.Error++
		}
		if e.RetryCount > 0 {
			s.Retries += e.RetryCount
		}
		for _, al := range e.AttemptLogs {
			if al.ErrorType == ErrorTimeout {
				s.Timeouts++
			}
		}
	}
	return s
}

func computeDriftStats(drifts []float64) DriftStats {
	if len(drifts) == 0 {
		return DriftStats{}
	}
	sorted := append([]float64(nil), drifts...)
	sort.Float64s(sorted)

	var sum, max, min float64
	min = sorted[0]
	for _, d := range sorted {
		sum += d
		if d > max {
			max = d
		}
		if d < min {
			min = d
		}
	}
	mean := sum / float64(len(sorted))

	p95idx := int(float64(len(sorted)) * 0.95)
	if p95idx >= len(sorted) {
		p95idx = len(sorted) - 1
	}

	return DriftStats{
		Count: int64(len(sorted)),
		Mean:  mean,
		Max:   max,
		Min:   min,
		P95:   sorted[p95idx],
	}
}

func appendIfNonEmpty(list []string, v string) []string {
	if v == "" {
		return list
	}
	return append(list, v)
}
