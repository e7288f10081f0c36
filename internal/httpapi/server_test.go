package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/apresai/narrated-demo/internal/config"
	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
	"github.com/apresai/narrated-demo/internal/timeline"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	dir := t.TempDir()
	store, err := project.NewStore(dir)
	require.NoError(t, err)

	backend := queue.NewMemoryBackend("default")
	gw := queue.NewGateway(backend)

	now := func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	s := &Server{
		Store:  store,
		Queue:  gw,
		Config: config.Config{DataDir: dir, QueueName: "default"},
		Now:    now,
	}
	router := NewRouter(s, RateLimitConfig{})
	return s, httptest.NewServer(router)
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, dst any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dst))
}

func TestHandleHealth(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]bool
	decode(t, resp, &body)
	require.True(t, body["ok"])
}

func TestImportTimeline_ThenValidateActions(t *testing.T) {
	s, ts := newTestServer(t)
	defer ts.Close()

	p, err := s.Store.Create("proj_test1", s.now())
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, ts.URL+"/projects/"+p.ProjectID+"/timeline/import", map[string]any{
		"content":       "[00:00:00] Hello there.\n[00:00:05] Second line.\n",
		"import_format": "timestamped_txt",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var importResp importTimelineResponse
	decode(t, resp, &importResp)
	require.Equal(t, 2, importResp.NarrationEventCount)

	loaded, err := s.Store.Load(p.ProjectID, s.now())
	require.NoError(t, err)
	require.Equal(t, config.NarrationTTSOnly, loaded.Settings.NarrationMode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/projects/"+p.ProjectID+"/timeline/actions/validate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var validateResp validateActionsResponse
	decode(t, resp, &validateResp)
	require.Equal(t, 0, validateResp.ActionCount)
}

func TestValidateActions_DuplicateIDReturnsValidationShape(t *testing.T) {
	s, ts := newTestServer(t)
	defer ts.Close()

	p, err := s.Store.Create("proj_test2", s.now())
	require.NoError(t, err)

	_, err = s.Store.Update(p.ProjectID, s.now(), func(p *project.Project) error {
		p.Timeline.TimelineVersion = "1.0"
		p.Timeline.ActionEvents = []timeline.ActionEvent{
			{ID: "dup", AtMS: 0, Action: timeline.ActionClick, Target: "#a"},
			{ID: "dup", AtMS: 100, Action: timeline.ActionClick, Target: "#b"},
		}
		return nil
	})
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, ts.URL+"/projects/"+p.ProjectID+"/timeline/actions/validate", nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body apiError
	decode(t, resp, &body)
	require.Contains(t, body.Message, "duplicate action id")
	require.Equal(t, 1, body.ActionIndex)
	require.Equal(t, "dup", body.ActionID)
}

func TestEnqueueRender_ReturnsJobAndStatusIsQueryable(t *testing.T) {
	s, ts := newTestServer(t)
	defer ts.Close()

	p, err := s.Store.Create("proj_test3", s.now())
	require.NoError(t, err)

	resp := doJSON(t, http.MethodPost, ts.URL+"/projects/"+p.ProjectID+"/render", nil)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	var enq enqueueResponse
	decode(t, resp, &enq)
	require.NotEmpty(t, enq.JobID)
	require.Equal(t, "render", string(enq.RunType))

	resp2, err := http.Get(ts.URL + "/jobs/" + enq.JobID)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	var job queue.Job
	decode(t, resp2, &job)
	require.Equal(t, enq.JobID, job.JobID)
	require.Equal(t, queue.StatusQueued, job.Status)
}

func TestGetJob_UnknownIDIs404(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/jobs/does-not-exist")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetProject_UnknownIDIs404(t *testing.T) {
	_, ts := newTestServer(t)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/projects/does-not-exist")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}
