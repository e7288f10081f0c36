package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/ttscache"
	"github.com/apresai/narrated-demo/internal/ttsprofile"
	"github.com/go-chi/chi/v5"
)

// handleUpsertTTSProfile implements POST /projects/{id}/tts/profile: the
// posted profile is validated against its own shape only (ResolveEndpoint
// and ResolveParams are a render-time concern) and stored under its
// profile_id, creating or replacing the entry.
func (s *Server) handleUpsertTTSProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var profile ttsprofile.Profile
	if err := decodeJSON(r, &profile); err != nil {
		writeError(w, err)
		return
	}
	if profile.ProfileID == "" {
		writeError(w, badRequest("profile_id is required"))
		return
	}

	p, err := s.Store.Update(id, s.now(), func(p *project.Project) error {
		if p.TTSProfiles == nil {
			p.TTSProfiles = map[string]ttsprofile.Profile{}
		}
		p.TTSProfiles[profile.ProfileID] = profile
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p.TTSProfiles[profile.ProfileID])
}

func (s *Server) handleGetTTSProfile(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	profileID := r.URL.Query().Get("profile_id")

	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := ttsprofile.Resolve(p.TTSProfiles, profileID)
	if err != nil {
		writeError(w, notFound(err.Error()))
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

type ttsPreviewRequest struct {
	Text          string         `json:"text"`
	DurationMS    int64          `json:"duration_ms"`
	ProfileID     string         `json:"profile_id"`
	ParamsOverride map[string]any `json:"params_override,omitempty"`
}

type ttsPreviewResponse struct {
	Path       string `json:"path"`
	DurationMS int64  `json:"duration_ms"`
	CacheHit   bool   `json:"cache_hit"`
}

// handleTTSPreview implements POST /projects/{id}/tts/preview: synthesize
// (or reuse a cached render of) a single line of narration, independent of
// any render job, per spec.md §6. duration_ms bounds mirror §4.4's
// narration-pacing clamp range.
func (s *Server) handleTTSPreview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req ttsPreviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Text == "" {
		writeError(w, badRequest("text is required"))
		return
	}
	if req.DurationMS != 0 && (req.DurationMS < 200 || req.DurationMS > 60000) {
		writeError(w, badRequest("duration_ms must be between 200 and 60000"))
		return
	}

	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := ttsprofile.Resolve(p.TTSProfiles, req.ProfileID)
	if err != nil {
		writeError(w, notFound(err.Error()))
		return
	}
	endpoint, err := ttsprofile.ResolveEndpoint(profile, "", s.Config)
	if err != nil {
		writeError(w, badRequest(err.Error()))
		return
	}
	params := ttsprofile.ResolveParams(p.Settings.TTSDefaults, req.ParamsOverride, profile)

	key, err := ttscache.ComputeKey(req.Text, params, endpoint, string(s.Config.TTSMode), "", "")
	if err != nil {
		writeError(w, runtimeError(err.Error()))
		return
	}

	outPath := filepath.Join(s.Config.DataDir, "projects", id, "cache", "tts_preview", fmt.Sprintf("%s.wav", key))

	if s.TTSPreview != nil {
		if hit, err := s.TTSPreview.Restore(key, outPath); err == nil && hit {
			writeJSON(w, http.StatusOK, ttsPreviewResponse{Path: outPath, DurationMS: req.DurationMS, CacheHit: true})
			return
		}
	}

	wav, _, err := s.TTSClient.Synthesize(r.Context(), endpoint, s.Config.TTSMode, req.Text, params)
	if err != nil {
		writeError(w, runtimeError("synthesizing tts preview: "+err.Error()))
		return
	}

	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		writeError(w, runtimeError("creating preview cache dir: "+err.Error()))
		return
	}
	if err := os.WriteFile(outPath, wav, 0o644); err != nil {
		writeError(w, runtimeError("writing tts preview: "+err.Error()))
		return
	}
	if s.TTSPreview != nil {
		_ = s.TTSPreview.Store(key, outPath)
	}

	writeJSON(w, http.StatusOK, ttsPreviewResponse{Path: outPath, DurationMS: req.DurationMS, CacheHit: false})
}
