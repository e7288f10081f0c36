package main

import (
	"fmt"
	"os"
	"time"

	"github.com/apresai/narrated-demo/internal/progress"
	"github.com/apresai/narrated-demo/internal/queue"
)

// watchPlain drives internal/progress.BarRenderer from the same job-status
// polling loop watch.go's bubbletea model uses, grounded on the teacher's
// own `if !flagVerbose { r := progress.NewBarRenderer(os.Stdout) }` wiring
// in internal/cli/root.go — used here for --verbose/non-interactive runs
// where a full-screen bubbletea program isn't wanted (CI logs, piped
// output), rather than left as dead code.
func watchPlain(client *apiClient, jobID string) error {
	r := progress.NewBarRenderer(os.Stdout)
	start := time.Now()

	for {
		job, err := client.GetJob(jobID)
		if err != nil {
			r.Handle(progress.Event{Stage: progress.StageValidate, Message: "error: " + err.Error(), Error: err})
			r.Finish()
			return err
		}

		stage, pct, msg := stageForStatus(job)
		e := progress.NewEvent(stage, msg, pct, start)

		switch job.Status {
		case queue.StatusFinished:
			e.Stage = progress.StageComplete
			e.Percent = 1.0
			if path := findFinalVideoPath(job.Result); path != "" {
				e.OutputFile = path
			} else {
				e.Message = fmt.Sprintf("job %s finished", job.JobID)
			}
			r.Handle(e)
			r.Finish()
			return nil
		case queue.StatusFailed:
			e.Error = fmt.Errorf("%s", job.Error)
			r.Handle(e)
			r.Finish()
			return fmt.Errorf("job %s failed: %s", jobID, job.Error)
		}

		r.Handle(e)
		time.Sleep(pollInterval)
	}
}

// stageForStatus maps the coarse queue.Status this system exposes onto
// internal/progress's pipeline stages. The job queue doesn't report
// intra-run stage transitions (spec.md §4.9 only tracks
// queued/started/finished/failed), so "started" renders as a single
// indeterminate midpoint rather than tracking demo_capture/tts/mix/mux
// individually.
func stageForStatus(job *queue.Job) (progress.Stage, float64, string) {
	switch job.Status {
	case queue.StatusQueued:
		return progress.StageValidate, 0.0, fmt.Sprintf("job %s queued", job.JobID)
	case queue.StatusStarted:
		return progress.StageMux, 0.5, fmt.Sprintf("job %s running (%s)", job.JobID, job.RunType)
	default:
		return progress.StageValidate, 0.0, string(job.Status)
	}
}

// findFinalVideoPath best-effort walks a job's JSON-decoded Result for the
// render pipeline's FinalMP4Path, however deeply nested it landed after
// round-tripping through queue.Job.Result's untyped any field.
func findFinalVideoPath(v any) string {
	switch val := v.(type) {
	case map[string]any:
		if p, ok := val["FinalMP4Path"].(string); ok && p != "" {
			return p
		}
		for _, nested := range val {
			if p := findFinalVideoPath(nested); p != "" {
				return p
			}
		}
	}
	return ""
}
