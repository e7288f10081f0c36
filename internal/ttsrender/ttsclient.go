package ttsrender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/apresai/narrated-demo/internal/config"
)

// MaxTTSAttempts bounds how many times in all a single segment's TTS call
// is attempted before the pipeline degrades it to silence (spec.md §4.7: "on
// any TTS error, synthesize silence").
const MaxTTSAttempts = 3

// Client calls the external TTS endpoint under either of the two request
// shapes spec.md §6 documents.
type Client struct {
	HTTPClient *http.Client
	APIKey     string // only used by TTSModeOpenAISpeech
	Now        func() time.Time
}

// NewClient returns a Client with a bounded-timeout http.Client, mirroring
// the teacher corpus's pattern of a per-call deadline rather than relying
// solely on context cancellation.
func NewClient(apiKey string) *Client {
	return &Client{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		APIKey:     apiKey,
		Now:        time.Now,
	}
}

type openAISpeechRequest struct {
	Model  string `json:"model"`
	Voice  string `json:"voice"`
	Input  string `json:"input"`
	Format string `json:"format"`
}

// Synthesize calls endpoint under mode with text and params, retrying
// every failed attempt with a quadratic backoff in the same shape as
// fetchEPGWithRetry (attempt*attempt*500ms before each retry), up to
// MaxTTSAttempts attempts in all.
// It returns the raw WAV bytes and the per-attempt log regardless of the
// final outcome, so callers can persist attempts[] even on failure.
func (c *Client) Synthesize(ctx context.Context, endpoint string, mode config.TTSMode, text string, params map[string]any) ([]byte, []AttemptLog, error) {
	var attempts []AttemptLog
	var lastErr error

	for attempt := 1; attempt <= MaxTTSAttempts; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(attempt*attempt*500) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, attempts, ctx.Err()
			}
		}

		start := c.now()
		body, err := c.doOnce(ctx, endpoint, mode, text, params)
		elapsed := c.now().Sub(start).Milliseconds()

		if err == nil {
			attempts = append(attempts, AttemptLog{Attempt: attempt, Status: "ok", ElapsedMS: elapsed})
			return body, attempts, nil
		}

		attempts = append(attempts, AttemptLog{Attempt: attempt, Status: "error", ElapsedMS: elapsed, Error: err.Error()})
		lastErr = err
	}

	return nil, attempts, fmt.Errorf("tts request failed after %d attempts: %w", MaxTTSAttempts, lastErr)
}

func (c *Client) doOnce(ctx context.Context, endpoint string, mode config.TTSMode, text string, params map[string]any) ([]byte, error) {
	var payload any
	switch mode {
	case config.TTSModeOpenAISpeech:
		voice, _ := params["voice"].(string)
		model, _ := params["model"].(string)
		if model == "" {
			model = "tts-1"
		}
		payload = openAISpeechRequest{Model: model, Voice: voice, Input: text, Format: "wav"}
	default:
		merged := map[string]any{"text": text}
		for k, v := range params {
			merged[k] = v
		}
		payload = merged
	}

	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding tts request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf))
	if err != nil {
		return nil, fmt.Errorf("building tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if mode == config.TTSModeOpenAISpeech && c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling tts endpoint: %w", err)
	}
	defer res.Body.Close()

	wav, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("reading tts response body: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tts endpoint returned status %d: %s", res.StatusCode, truncate(string(wav), 500))
	}
	return wav, nil
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
