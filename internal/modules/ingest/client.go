// Package ingest drives the external asynchronous document parse service:
// submit a source URL, poll the job to a terminal state, retrieve the
// extracted artifact.
package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/paperlab/core/internal/config"
)

// Job states reported by the parse service. Anything else is treated as
// non-terminal.
const (
	StateDone   = "done"
	StateFailed = "failed"
)

// ErrRejected marks an immediate submit rejection by the parse service
// (bad credential, quota, malformed job). The wrapped message is the
// service's own, surfaced verbatim.
var ErrRejected = errors.New("parse job rejected")

// ErrNoToken is returned when no parse-service credential is configured.
var ErrNoToken = errors.New("parse service token is not configured")

// Client talks to the parse service's task API.
type Client struct {
	cfg  config.MineruConfig
	http *http.Client
}

func NewClient(cfg config.MineruConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

type taskEnvelope struct {
	Code int             `json:"code"`
	Msg  string          `json:"msg"`
	Data json.RawMessage `json:"data"`
}

type submitData struct {
	TaskID string `json:"task_id"`
}

type statusData struct {
	State      string `json:"state"`
	FullZipURL string `json:"full_zip_url"`
	ErrMsg     string `json:"err_msg"`
}

// Submit posts a source URL to the parse service and returns the job
// token. A structured rejection comes back as ErrRejected with the
// service's message.
func (c *Client) Submit(ctx context.Context, sourceURL string) (string, error) {
	if strings.TrimSpace(c.cfg.Token) == "" {
		return "", ErrNoToken
	}

	body, _ := json.Marshal(map[string]string{
		"url":           sourceURL,
		"model_version": c.cfg.ModelVersion,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.taskURL(""), bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("submit parse job: %w", err)
	}
	defer resp.Body.Close()

	var env taskEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return "", fmt.Errorf("decode submit response: %w", err)
	}
	if env.Code != 0 {
		msg := strings.TrimSpace(env.Msg)
		if msg == "" {
			msg = fmt.Sprintf("parse service returned code %d", env.Code)
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, msg)
	}

	var data submitData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return "", fmt.Errorf("decode submit data: %w", err)
	}
	if data.TaskID == "" {
		return "", fmt.Errorf("%w: no task id in response", ErrRejected)
	}
	return data.TaskID, nil
}

// Status reads the current state of a job. On done the artifact location
// is returned; on failed the service's error message.
func (c *Client) Status(ctx context.Context, taskID string) (*statusData, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.taskURL(taskID), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("poll parse job: %w", err)
	}
	defer resp.Body.Close()

	var env taskEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode status response: %w", err)
	}
	if env.Code != 0 {
		return nil, fmt.Errorf("parse service returned code %d: %s", env.Code, env.Msg)
	}

	var data statusData
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return nil, fmt.Errorf("decode status data: %w", err)
	}
	return &data, nil
}

// FetchArtifact downloads the completed artifact ZIP.
func (c *Client) FetchArtifact(ctx context.Context, zipURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, zipURL, nil)
	if err != nil {
		return nil, err
	}

	// Artifact downloads can be large; use a dedicated longer timeout.
	client := &http.Client{Timeout: 2 * time.Minute}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact download returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (c *Client) taskURL(taskID string) string {
	base := strings.TrimRight(c.cfg.Endpoint, "/") + "/api/v4/extract/task"
	if taskID != "" {
		base += "/" + taskID
	}
	return base
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.cfg.Token))
	req.Header.Set("Content-Type", "application/json")
}
