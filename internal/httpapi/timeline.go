package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/apresai/narrated-demo/internal/action"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/apresai/narrated-demo/internal/timeline/importers"
	"github.com/go-chi/chi/v5"
)

type importTimelineRequest struct {
	Content      string `json:"content"`
	ImportFormat string `json:"import_format"`
	SourceName   string `json:"source_name,omitempty"`
}

type importTimelineResponse struct {
	NarrationEventCount int    `json:"narration_event_count"`
	ActionEventCount    int    `json:"action_event_count"`
	TimelineVersion     string `json:"timeline_version"`
}

// handleImportTimeline implements spec.md §6's
// POST /projects/{id}/timeline/import: parse content in the requested (or
// auto-detected) format, replace the project's timeline, and switch
// narration_mode to tts_only.
func (s *Server) handleImportTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req importTimelineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	existing, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	parsed, err := importers.Import([]byte(req.Content), req.ImportFormat, req.SourceName, importers.Options{
		VideoDurationMS: existing.Source.Video.DurationMS,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	p, err := s.Store.Update(id, s.now(), func(p *project.Project) error {
		p.Timeline.TimelineVersion = parsed.TimelineVersion
		p.Timeline.NarrationEvents = parsed.NarrationEvents
		if parsed.ActionEvents != nil {
			p.Timeline.ActionEvents = parsed.ActionEvents
		}
		p.Settings.NarrationMode = config.NarrationTTSOnly
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, importTimelineResponse{
		NarrationEventCount: len(p.Timeline.NarrationEvents),
		ActionEventCount:    len(p.Timeline.ActionEvents),
		TimelineVersion:     p.Timeline.TimelineVersion,
	})
}

func (s *Server) handleGetTimeline(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p.Timeline)
}

type patchNarrationEventRequest struct {
	StartMS        *int64  `json:"start_ms,omitempty"`
	EndMS          *int64  `json:"end_ms,omitempty"`
	Text           *string `json:"text,omitempty"`
	VoiceProfileID *string `json:"voice_profile_id,omitempty"`
}

// handlePatchNarrationEvent applies a partial update to one narration
// event, then re-normalizes and re-validates the full narration list per
// spec.md §6.
func (s *Server) handlePatchNarrationEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	eventID := chi.URLParam(r, "event_id")

	var req patchNarrationEventRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	idx := -1
	for i, e := range p.Timeline.NarrationEvents {
		if e.ID == eventID {
			idx = i
			break
		}
	}
	if idx == -1 {
		writeError(w, notFound(fmt.Sprintf("narration event %q not found", eventID)))
		return
	}

	updated, err := s.Store.Update(id, s.now(), func(p *project.Project) error {
		events := p.Timeline.NarrationEvents
		e := events[idx]
		if req.StartMS != nil {
			e.StartMS = *req.StartMS
		}
		if req.EndMS != nil {
			e.EndMS = *req.EndMS
		}
		if req.Text != nil {
			e.Text = strings.TrimSpace(*req.Text)
		}
		if req.VoiceProfileID != nil {
			e.VoiceProfileID = *req.VoiceProfileID
		}
		events[idx] = e

		normalized, err := timeline.NormalizeNarrationEvents(events, timeline.NormalizeOptions{
			VideoDurationMS: p.Source.Video.DurationMS,
		})
		if err != nil {
			return err
		}
		if err := timeline.Validate(&timeline.Timeline{TimelineVersion: timeline.SchemaVersion, NarrationEvents: normalized}); err != nil {
			return err
		}
		p.Timeline.NarrationEvents = normalized
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated.Timeline)
}

type validateActionsResponse struct {
	ActionCount int `json:"action_count"`
}

// handleValidateActions implements POST
// /projects/{id}/timeline/actions/validate: validate the project's
// action_events and sort them by (at_ms, source_index, id), persisting
// the sorted order on
// success and surfacing the first validation failure on error, per
// spec.md §4.5/§7.
func (s *Server) handleValidateActions(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p, err := s.Store.Load(id, s.now())
	if err != nil {
		writeError(w, err)
		return
	}

	sorted, errs := action.ValidateAndSort(p.Timeline.ActionEvents)
	if len(errs) > 0 {
		writeError(w, errs[0])
		return
	}

	updated, err := s.Store.Update(id, s.now(), func(p *project.Project) error {
		p.Timeline.ActionEvents = sorted
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, validateActionsResponse{ActionCount: len(updated.Timeline.ActionEvents)})
}
