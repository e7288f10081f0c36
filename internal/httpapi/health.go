package httpapi

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/apresai/narrated-demo/internal/config"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

type depsResponse struct {
	OK      bool `json:"ok"`
	Queue   bool `json:"queue"`
	TTS     bool `json:"tts"`
	Browser bool `json:"browser"`
}

// handleHealthDeps probes the queue backend, the TTS endpoint's health
// route, and browser capability, per spec.md §6: ok=true requires
// queue+TTS ok, and browser ok only when execution_mode is
// playwright_required.
func (s *Server) handleHealthDeps(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	resp := depsResponse{}

	if _, err := s.Queue.Backend.Depth(ctx); err == nil {
		resp.Queue = true
	}

	resp.TTS = probeTTSHealth(ctx, s.Config.TTSEndpoint)

	browserOK := true
	if s.BrowserProber != nil {
		browserOK = s.BrowserProber.Probe(ctx) == nil
	}
	resp.Browser = browserOK

	resp.OK = resp.Queue && resp.TTS
	if s.Config.ExecutionMode == config.ExecutionPlaywrightRequired {
		resp.OK = resp.OK && resp.Browser
	}

	writeJSON(w, http.StatusOK, resp)
}

// probeTTSHealth GETs "<endpoint-with-/tts-stripped>/health", per
// spec.md §6.
func probeTTSHealth(ctx context.Context, endpoint string) bool {
	if endpoint == "" {
		return false
	}
	base := strings.TrimSuffix(endpoint, "/tts")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
