package httpapi

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/go-chi/chi/v5"
)

const maxUploadBytes = 4 << 30 // 4 GiB

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, badRequest("parsing multipart upload: "+err.Error()))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, badRequest("missing multipart field \"file\": "+err.Error()))
		return
	}
	defer file.Close()

	if filepath.Ext(header.Filename) != ".mp4" {
		writeError(w, badRequest("uploaded file must end in .mp4"))
		return
	}

	id, err := project.NewProjectID()
	if err != nil {
		writeError(w, runtimeError("minting project id: "+err.Error()))
		return
	}

	if _, err := s.Store.Create(id, s.now()); err != nil {
		writeError(w, runtimeError("creating project: "+err.Error()))
		return
	}

	videoPath := filepath.Join(s.Config.DataDir, "projects", id, "input.mp4")
	if err := os.MkdirAll(filepath.Dir(videoPath), 0o755); err != nil {
		writeError(w, runtimeError("creating project directory: "+err.Error()))
		return
	}

	sha, _, err := streamToFileWithHash(file, videoPath)
	if err != nil {
		writeError(w, runtimeError("storing upload: "+err.Error()))
		return
	}

	probe, err := s.MediaTool.Probe(r.Context(), videoPath)
	if err != nil {
		writeError(w, runtimeError("probing uploaded video: "+err.Error()))
		return
	}

	p, err := s.Store.Update(id, s.now(), func(p *project.Project) error {
		p.Source.Video = project.Video{
			Path:       videoPath,
			SHA256:     sha,
			DurationMS: probe.DurationMS,
			Width:      probe.Width,
			Height:     probe.Height,
			FPS:        probe.FPS,
			HasAudio:   probe.HasAudio,
		}
		return nil
	})
	if err != nil {
		writeError(w, runtimeError("persisting project: "+err.Error()))
		return
	}

	writeJSON(w, http.StatusOK, p)
}

func streamToFileWithHash(src io.Reader, dstPath string) (sha256hex string, size int64, err error) {
	f, err := os.Create(dstPath)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	n, err := io.Copy(io.MultiWriter(f, h), src)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type patchSettingsRequest struct {
	DemoContext              *string               `json:"demo_context,omitempty"`
	DemoCaptureExecutionMode *config.ExecutionMode `json:"demo_capture_execution_mode,omitempty"`
	NarrationMode            *config.NarrationMode `json:"narration_mode,omitempty"`
}

func (s *Server) handlePatchSettings(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req patchSettingsRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if req.NarrationMode != nil && !config.IsValidNarrationMode(string(*req.NarrationMode)) {
		writeError(w, badRequest(fmt.Sprintf("invalid narration_mode %q", *req.NarrationMode)))
		return
	}
	if req.DemoCaptureExecutionMode != nil &&
		*req.DemoCaptureExecutionMode != config.ExecutionPlaywrightOptional &&
		*req.DemoCaptureExecutionMode != config.ExecutionPlaywrightRequired {
		writeError(w, badRequest(fmt.Sprintf("invalid demo_capture_execution_mode %q", *req.DemoCaptureExecutionMode)))
		return
	}

	p, err := s.Store.Update(id, s.now(), func(p *project.Project) error {
		if req.DemoContext != nil {
			p.Settings.DemoContext = *req.DemoContext
		}
		if req.DemoCaptureExecutionMode != nil {
			p.Settings.DemoCaptureExecutionMode = *req.DemoCaptureExecutionMode
		}
		if req.NarrationMode != nil {
			p.Settings.NarrationMode = *req.NarrationMode
		}
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Settings)
}
