// Package browser abstracts scripted-browser capability behind a small
// interface, per spec.md's Design Notes §9, so the Demo Runner can be
// driven against a fake session in tests and a real one in production.
package browser

import (
	"context"
	"errors"
	"time"
)

// Session is the set of operations the Demo Runner needs from a browser
// page. A real implementation wraps a Playwright (or equivalent) page;
// FakeSession backs dry-run execution and tests.
type Session interface {
	NewPage(ctx context.Context) error
	Goto(ctx context.Context, url string, timeout time.Duration) error
	Click(ctx context.Context, selector string, timeout time.Duration) error
	Fill(ctx context.Context, selector string, value any, timeout time.Duration) error
	Press(ctx context.Context, selector, key string, timeout time.Duration) error
	Wait(ctx context.Context, d time.Duration) error
	Screenshot(ctx context.Context, outPath string) error
	TracingStart(ctx context.Context) error
	TracingStop(ctx context.Context, outPath string) error
	VideoPath() string
	Close(ctx context.Context) error
}

// ErrCapabilityUnavailable is returned by a probe when the real browser
// capability (e.g. Playwright's driver process) can't be reached.
var ErrCapabilityUnavailable = errors.New("browser capability unavailable")

// Prober checks whether a real Session can be created in this
// environment, without actually creating one.
type Prober interface {
	Probe(ctx context.Context) error
}
