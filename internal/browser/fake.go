package browser

import (
	"context"
	"fmt"
	"time"
)

// FakeSession is a deterministic, in-memory Session used by
// playwright_optional's dry-run fallback and by tests. It never touches a
// real browser; every call either succeeds immediately or returns an
// error pre-loaded via Fail.
type FakeSession struct {
	videoPath string
	closed    bool

	// fails maps a call key (set via FailOn) to an error that call
	// returns instead of succeeding. Tests use this to exercise retry
	// classification without a real browser.
	fails map[string]error
	calls []string
}

// NewFakeSession returns a FakeSession that records every call it
// receives in order, for assertions in tests.
func NewFakeSession() *FakeSession {
	return &FakeSession{fails: map[string]error{}}
}

// FailOn makes the next call tagged with key return err instead of
// succeeding. key is the call key the session records for that call:
// "<verb>:<argument>", e.g. "click:#btn", "goto:https://example.com" or
// "press:#input:Enter".
func (f *FakeSession) FailOn(key string, err error) {
	f.fails[key] = err
}

func (f *FakeSession) Calls() []string {
	return f.calls
}

func (f *FakeSession) check(key string) error {
	f.calls = append(f.calls, key)
	if err, ok := f.fails[key]; ok {
		delete(f.fails, key)
		return err
	}
	return nil
}

func (f *FakeSession) NewPage(ctx context.Context) error {
	return f.check("new_page")
}

func (f *FakeSession) Goto(ctx context.Context, url string, timeout time.Duration) error {
	return f.check(fmt.Sprintf("goto:%s", url))
}

func (f *FakeSession) Click(ctx context.Context, selector string, timeout time.Duration) error {
	return f.check(fmt.Sprintf("click:%s", selector))
}

func (f *FakeSession) Fill(ctx context.Context, selector string, value any, timeout time.Duration) error {
	return f.check(fmt.Sprintf("fill:%s", selector))
}

func (f *FakeSession) Press(ctx context.Context, selector, key string, timeout time.Duration) error {
	return f.check(fmt.Sprintf("press:%s:%s", selector, key))
}

func (f *FakeSession) Wait(ctx context.Context, d time.Duration) error {
	return f.check(fmt.Sprintf("wait:%s", d))
}

func (f *FakeSession) Screenshot(ctx context.Context, outPath string) error {
	return f.check(fmt.Sprintf("screenshot:%s", outPath))
}

func (f *FakeSession) TracingStart(ctx context.Context) error {
	return f.check("tracing_start")
}

func (f *FakeSession) TracingStop(ctx context.Context, outPath string) error {
	return f.check(fmt.Sprintf("tracing_stop:%s", outPath))
}

func (f *FakeSession) VideoPath() string {
	return f.videoPath
}

func (f *FakeSession) Close(ctx context.Context) error {
	f.closed = true
	return f.check("close")
}

// UnavailableProber always reports the real browser capability as
// unavailable — used to exercise playwright_required's fail-fast path and
// playwright_optional's dry-run fallback in tests.
type UnavailableProber struct{}

func (UnavailableProber) Probe(ctx context.Context) error {
	return ErrCapabilityUnavailable
}

// AvailableProber always reports the capability as present.
type AvailableProber struct{}

func (AvailableProber) Probe(ctx context.Context) error {
	return nil
}
