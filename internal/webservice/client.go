// Package webservice is an HTTP client for the external accessibility-test
// service. Task lifecycle and test execution live there; the dashboard only
// reads tasks and submits changes.
package webservice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the test service's REST API.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient builds a client for the service at baseURL. httpClient may be
// nil; a client with a 30s timeout is used then.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// ListOpts filters task listing.
type ListOpts struct {
	// LastRes asks the service to include each task's latest result.
	LastRes bool
}

// ListTasks returns all tasks known to the test service.
func (c *Client) ListTasks(ctx context.Context, opts ListOpts) ([]Task, error) {
	endpoint := c.baseURL + "/tasks"
	if opts.LastRes {
		endpoint += "?lastres=true"
	}
	var tasks []Task
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

// GetTask returns a single task by ID.
func (c *Client) GetTask(ctx context.Context, id string) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodGet, c.taskURL(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// CreateTask registers a new task with the test service.
func (c *Client) CreateTask(ctx context.Context, spec TaskSpec) (*Task, error) {
	var task Task
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/tasks", spec, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// EditTask updates an existing task.
func (c *Client) EditTask(ctx context.Context, id string, patch TaskPatch) error {
	return c.do(ctx, http.MethodPatch, c.taskURL(id), patch, nil)
}

// DeleteTask removes a task and its results.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.taskURL(id), nil, nil)
}

func (c *Client) taskURL(id string) string {
	return c.baseURL + "/tasks/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("webservice: marshal %s %s: %w", method, endpoint, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("webservice: build %s %s: %w", method, endpoint, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("webservice: %s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webservice: %s %s: status %d: %s",
			method, endpoint, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("webservice: decode %s %s: %w", method, endpoint, err)
		}
	}
	return nil
}
