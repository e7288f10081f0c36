package httpapi

import (
	"fmt"
	"net/http"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/go-chi/chi/v5"
)

type enqueueRequest struct {
	ExecutionMode config.ExecutionMode `json:"execution_mode,omitempty"`
}

type enqueueResponse struct {
	JobID         string               `json:"job_id"`
	RunType       queue.RunType        `json:"run_type"`
	StatusURL     string               `json:"status_url"`
	QueuedAt      string               `json:"queued_at"`
	NarrationMode config.NarrationMode `json:"narration_mode,omitempty"`
	ExecutionMode config.ExecutionMode `json:"execution_mode,omitempty"`
}

// handleEnqueueRender implements POST /projects/{id}/render (and its
// /run alias): enqueue a render job whose narration_mode is read off the
// project's current settings, per spec.md §6.
func (s *Server) handleEnqueueRender(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	job, err := s.Queue.Enqueue(r.Context(), queue.EnqueueInput{
		RunType:       queue.RunTypeRender,
		ProjectID:     id,
		NarrationMode: p.Settings.NarrationMode,
		FuncName:      "render",
		QueueName:     s.Config.QueueName,
	})
	if err != nil {
		writeError(w, runtimeError("enqueuing render job: "+err.Error()))
		return
	}
	s.log().Info("render job enqueued", "job_id", job.JobID, "project_id", id, "narration_mode", job.NarrationMode)

	writeJSON(w, http.StatusAccepted, enqueueResponse{
		JobID:         job.JobID,
		RunType:       job.RunType,
		StatusURL:     fmt.Sprintf("/jobs/%s", job.JobID),
		QueuedAt:      job.QueuedAt.Format(timeLayout),
		NarrationMode: job.NarrationMode,
	})
}

// handleEnqueueDemoRun implements POST /projects/{id}/demo/run: enqueue a
// demo-capture job, resolving execution_mode from the request body, then
// the project's settings, then global config, per spec.md §4.6.
func (s *Server) handleEnqueueDemoRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req enqueueRequest
	if r.ContentLength != 0 {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	executionMode := req.ExecutionMode
	if executionMode == "" {
		executionMode = p.Settings.DemoCaptureExecutionMode
	}
	if executionMode == "" {
		executionMode = s.Config.ExecutionMode
	}

	job, err := s.Queue.Enqueue(r.Context(), queue.EnqueueInput{
		RunType:       queue.RunTypeDemoCapture,
		ProjectID:     id,
		ExecutionMode: executionMode,
		FuncName:      "demo_capture",
		QueueName:     s.Config.QueueName,
	})
	if err != nil {
		writeError(w, runtimeError("enqueuing demo run job: "+err.Error()))
		return
	}
	s.log().Info("demo run job enqueued", "job_id", job.JobID, "project_id", id, "execution_mode", job.ExecutionMode)

	writeJSON(w, http.StatusAccepted, enqueueResponse{
		JobID:         job.JobID,
		RunType:       job.RunType,
		StatusURL:     fmt.Sprintf("/jobs/%s", job.JobID),
		QueuedAt:      job.QueuedAt.Format(timeLayout),
		ExecutionMode: job.ExecutionMode,
	})
}

func (s *Server) handleGetDemoRuns(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.DemoRunsNewestFirst())
}

func (s *Server) handleGetJob(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	job, err := s.Queue.Status(r.Context(), jobID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

const timeLayout = "2006-01-02T15:04:05.000Z07:00"
