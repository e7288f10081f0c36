package ttsrender

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSynthesize_ChatterboxSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("RIFF-fake-wav"))
	}))
	defer srv.Close()

	c := NewClient("")
	c.Now = time.Now
	body, attempts, err := c.Synthesize(context.Background(), srv.URL, config.TTSModeChatterboxJSON, "hello world", nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("RIFF-fake-wav"), body)
	require.Len(t, attempts, 1)
	assert.Equal(t, "ok", attempts[0].Status)
}

func TestSynthesize_OpenAISetsAuthHeader(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("wav-bytes"))
	}))
	defer srv.Close()

	c := NewClient("sk-test-key")
	_, _, err := c.Synthesize(context.Background(), srv.URL, config.TTSModeOpenAISpeech, "hi", map[string]any{"voice": "alloy"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer sk-test-key", gotAuth)
}

func TestSynthesize_RetriesThenFailsAfterMaxAttempts(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("")
	_, attempts, err := c.Synthesize(context.Background(), srv.URL, config.TTSModeChatterboxJSON, "hi", nil)
	require.Error(t, err)
	assert.Equal(t, MaxTTSAttempts, calls)
	assert.Len(t, attempts, MaxTTSAttempts)
}
