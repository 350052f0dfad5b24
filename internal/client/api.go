package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	PathRunTask       = "/run_long_task"
	PathTaskStatus    = "/check_task_status"
	PathRefreshCache  = "/refresh_cache"
	PathStatistics    = "/show_statistics"
	maxErrorBodyBytes = 512
)

// StartResponse is the optional body of a successful start request. Older
// servers answer without a body, leaving TaskID empty.
type StartResponse struct {
	TaskID string `json:"task_id"`
	Status string `json:"status"`
}

// TaskStatus is one answer of the status endpoint.
type TaskStatus struct {
	Running  bool
	TaskID   string
	Status   string
	Progress int
	Message  string
	Error    string
}

type Statistic struct {
	Customer  string `json:"customer,omitempty"`
	Date      string `json:"date"`
	Location  string `json:"location"`
	Critical  int    `json:"critical"`
	Immediate int    `json:"immediate"`
	Warning   int    `json:"warning"`
	Total     int    `json:"total"`
	Color     string `json:"color"`
}

// APIClient talks to the dashboard JSON endpoints.
type APIClient struct {
	baseURL    string
	adminToken string
	userAgent  string
	httpClient *http.Client
	logger     *zap.Logger
}

type APIConfig struct {
	BaseURL    string
	AdminToken string
	Timeout    time.Duration
	UserAgent  string
	HTTPClient *http.Client
	Logger     *zap.Logger
}

func NewAPIClient(cfg APIConfig) *APIClient {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "dashctl"
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &APIClient{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		adminToken: cfg.AdminToken,
		userAgent:  ua,
		httpClient: httpClient,
		logger:     log,
	}
}

// StartTask issues POST /run_long_task.
func (c *APIClient) StartTask(ctx context.Context) (*StartResponse, error) {
	body, err := c.do(ctx, http.MethodPost, PathRunTask, nil)
	if err != nil {
		return nil, err
	}

	var resp StartResponse
	if len(strings.TrimSpace(string(body))) > 0 {
		if err := json.Unmarshal(body, &resp); err != nil {
			c.logger.Debug("task_start_body_ignored", zap.Error(err))
			resp = StartResponse{}
		}
	}
	return &resp, nil
}

// TaskStatus issues GET /check_task_status, scoped to taskID when set.
// A 404 for an explicit taskID wraps ErrTaskGone, other transport failures
// and non-2xx answers wrap ErrPollTransport; bodies without a boolean
// task_running wrap ErrMalformedResponse.
func (c *APIClient) TaskStatus(ctx context.Context, taskID string) (*TaskStatus, error) {
	path := PathTaskStatus
	if taskID != "" {
		path += "?task_id=" + url.QueryEscape(taskID)
	}

	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var statusErr *StatusError
		if taskID != "" && errors.As(err, &statusErr) && statusErr.Code == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %w", ErrTaskGone, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrPollTransport, err)
	}

	var raw struct {
		TaskRunning *bool  `json:"task_running"`
		TaskID      string `json:"task_id"`
		Status      string `json:"status"`
		Progress    int    `json:"progress"`
		Message     string `json:"message"`
		Error       string `json:"error"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: status body: %v", ErrMalformedResponse, err)
	}
	if raw.TaskRunning == nil {
		return nil, fmt.Errorf("%w: status body has no task_running", ErrMalformedResponse)
	}

	return &TaskStatus{
		Running:  *raw.TaskRunning,
		TaskID:   raw.TaskID,
		Status:   raw.Status,
		Progress: raw.Progress,
		Message:  raw.Message,
		Error:    raw.Error,
	}, nil
}

// RefreshCache issues GET /refresh_cache.
func (c *APIClient) RefreshCache(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodGet, PathRefreshCache, nil)
	return err
}

// Statistics issues GET /show_statistics. Every record must carry the
// date, location, critical, immediate, warning, total and color fields.
func (c *APIClient) Statistics(ctx context.Context) ([]Statistic, error) {
	body, err := c.do(ctx, http.MethodGet, PathStatistics, nil)
	if err != nil {
		return nil, err
	}

	var records []map[string]json.RawMessage
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("%w: statistics body: %v", ErrMalformedResponse, err)
	}

	stats := make([]Statistic, 0, len(records))
	for i, record := range records {
		for _, field := range []string{"date", "location", "critical", "immediate", "warning", "total", "color"} {
			if _, ok := record[field]; !ok {
				return nil, fmt.Errorf("%w: statistics record %d has no %s", ErrMalformedResponse, i, field)
			}
		}
		encoded, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("%w: statistics record %d: %v", ErrMalformedResponse, i, err)
		}
		var s Statistic
		if err := json.Unmarshal(encoded, &s); err != nil {
			return nil, fmt.Errorf("%w: statistics record %d: %v", ErrMalformedResponse, i, err)
		}
		stats = append(stats, s)
	}
	return stats, nil
}

func (c *APIClient) do(ctx context.Context, method, path string, payload io.Reader) ([]byte, error) {
	start := time.Now()
	target := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, target, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if c.adminToken != "" {
		req.Header.Set("X-Admin-Token", c.adminToken)
	}

	c.logger.Debug("api_request", zap.String("method", method), zap.String("url", target))
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("api_network_error", zap.String("method", method), zap.String("path", path), zap.Error(err))
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.logger.Debug("api_response",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		zap.Int("resp_bytes", len(body)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("api_bad_status", zap.String("path", path), zap.Int("status", resp.StatusCode))
		snippet := string(body)
		if len(snippet) > maxErrorBodyBytes {
			snippet = snippet[:maxErrorBodyBytes]
		}
		return nil, &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: strings.TrimSpace(snippet)}
	}

	return body, nil
}
