package demo

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// NewAttemptLogger returns a zerolog.Logger scoped to one demo run,
// writing structured per-attempt events to w (typically
// "<run>/logs/job.log" alongside stdout). Mirrors the teacher corpus's
// zerolog.New(...).With().Timestamp() construction style.
func NewAttemptLogger(runID string, w io.Writer) zerolog.Logger {
	if w == nil {
		w = os.Stdout
	}
	return zerolog.New(w).With().
		Timestamp().
		Str("component", "demo_runner").
		Str("run_id", runID).
		Logger()
}

func logAttempt(logger zerolog.Logger, actionID string, a AttemptLog) {
	ev := logger.Info()
	if a.Status == "error" {
		ev = logger.Warn()
	}
	ev.
		Str("action_id", actionID).
		Int("attempt", a.Attempt).
		Str("status", a.Status).
		Int64("elapsed_ms", a.ElapsedMS).
		Bool("retryable", a.Retryable).
		Str("error_type", string(a.ErrorType)).
		Str("error", a.Error).
		Msg("action attempt")
}
