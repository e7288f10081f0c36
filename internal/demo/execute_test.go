package demo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/apresai/narrated-demo/internal/browser"
	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/mediatool"
	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRunner(session *browser.FakeSession) *Runner {
	return &Runner{
		Prober:     browser.AvailableProber{},
		NewSession: func(ctx context.Context) (browser.Session, error) { return session, nil },
		MediaTool:  mediatool.NewRunner(),
		Now:        time.Now,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}
}

func TestExecute_DryRunWhenCapabilityUnavailable(t *testing.T) {
	r := &Runner{
		Prober: browser.UnavailableProber{},
		Now:    time.Now,
		Sleep:  func(ctx context.Context, d time.Duration) error { return nil },
	}
	actions := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionGoto, Target: "https://example.com"},
	}
	res := r.Execute(context.Background(), actions, Options{ExecutionMode: config.ExecutionPlaywrightOptional})
	assert.Equal(t, "demo_capture_dry_run", res.Mode)
	assert.Equal(t, 1, res.ActionsExecuted)
}

func TestExecute_RequiredModeFailsFastWithoutBrowser(t *testing.T) {
	r := &Runner{Prober: browser.UnavailableProber{}, Now: time.Now}
	actions := []timeline.ActionEvent{
		{ID: "a1", AtMS: 0, Action: timeline.ActionGoto, Target: "https://example.com"},
	}
	res := r.Execute(context.Background(), actions, Options{ExecutionMode: config.ExecutionPlaywrightRequired})
	assert.Equal(t, "demo_capture_failed", res.Mode)
	assert.Equal(t, 0, res.ActionsExecuted)
	assert.Contains(t, res.ErrorMessage, "playwright_required")
}

func TestExecuteOne_RetryThenSucceed(t *testing.T) {
	session := browser.NewFakeSession()
	session.FailOn("click:#btn", errors.New("Timeout 250ms exceeded"))
	r := newTestRunner(session)

	action := timeline.ActionEvent{ID: "a1", AtMS: 0, Action: timeline.ActionClick, Target: "#btn", Retries: 1}
	rec := r.executeOne(context.Background(), session, action, Options{})

	assert.Equal(t, "ok", rec.Status)
	assert.Equal(t, 2, rec.Attempts)
	assert.Equal(t, 1, rec.RetryCount)
	assert.Len(t, rec.AttemptLogs, 2)
	assert.Empty(t, rec.ScreenshotPath)
}

func TestExecuteOne_NonRetryableFailsImmediately(t *testing.T) {
	session := browser.NewFakeSession()
	session.FailOn("click:#btn", errors.New("element not found"))
	r := newTestRunner(session)

	action := timeline.ActionEvent{ID: "a1", AtMS: 0, Action: timeline.ActionClick, Target: "#btn", Retries: 2}
	rec := r.executeOne(context.Background(), session, action, Options{})

	assert.Equal(t, "error", rec.Status)
	assert.Equal(t, 1, rec.Attempts)
}

func TestClassify(t *testing.T) {
	assert.Equal(t, ErrorTimeout, classify(errors.New("Timeout 250ms exceeded")))
	assert.Equal(t, ErrorTransientBrowser, classify(errors.New("Target closed")))
	assert.Equal(t, ErrorTransientNetwork, classify(errors.New("net::ERR_CONNECTION_RESET")))
	assert.Equal(t, ErrorAction, classify(errors.New("selector not visible")))
}

func TestComputeDriftStats_Empty(t *testing.T) {
	stats := computeDriftStats(nil)
	assert.Equal(t, DriftStats{}, stats)
}

func TestComputeDriftStats_Basic(t *testing.T) {
	stats := computeDriftStats([]float64{10, 20, 30, 40, 50})
	assert.Equal(t, int64(5), stats.Count)
	assert.Equal(t, float64(30), stats.Mean)
	assert.Equal(t, float64(50), stats.Max)
	assert.Equal(t, float64(10), stats.Min)
}

func TestSummarize_CountsOkAndError(t *testing.T) {
	execs := []ExecutionRecord{
		{Status: "ok"},
		{Status: "error", RetryCount: 2},
	}
	s := summarize(execs)
	require.Equal(t, 2, s.Total)
	assert.Equal(t, 1, s.OK)
	assert.Equal(t, 1, s.Error)
	assert.Equal(t, 2, s.Retries)
}
