package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/config"
	"github.com/eaglebank/mcp-banking/shared/events"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/mitchellh/mapstructure"
)

const source = "banking_backend"

// API is what the request layer needs from the agent.
type API interface {
	Query(ctx context.Context, text string) (*QueryResult, error)
	Status(ctx context.Context) models.ServiceStatus
}

// QueryResult is the normalized answer to a natural-language query.
type QueryResult struct {
	Response  string `json:"response"`
	Timestamp string `json:"timestamp"`
	Status    string `json:"status"`
}

type callRequest struct {
	Operation string `json:"operation"`
	Data      any    `json:"data"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

type queryRequest struct {
	Query     string `json:"query"`
	Timestamp string `json:"timestamp"`
	Source    string `json:"source"`
}

// Client talks to the agent over HTTP. The base URL is read from runtime
// configuration on every call so POST /config takes effect immediately.
type Client struct {
	runtime    *config.Runtime
	timeout    time.Duration
	httpClient *http.Client
	now        func() time.Time
}

func NewClient(runtime *config.Runtime, timeout time.Duration) *Client {
	return &Client{
		runtime:    runtime,
		timeout:    timeout,
		httpClient: &http.Client{},
		now:        time.Now,
	}
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("%w: failed to encode request: %v", apperrors.ErrAgent, err)
	}
	baseURL := c.runtime.MCPServerURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: failed to create request: %v", apperrors.ErrAgent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s unreachable: %v", apperrors.ErrAgent, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return fmt.Errorf("%w: %s returned HTTP %d", apperrors.ErrAgent, req.URL.Path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid response from %s: %v", apperrors.ErrAgent, req.URL.Path, err)
	}
	return nil
}

// Query forwards text to the agent. Any failure is ErrAgent.
func (c *Client) Query(ctx context.Context, text string) (*QueryResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var raw map[string]any
	err := c.post(ctx, "/mcp/query", queryRequest{
		Query:     text,
		Timestamp: c.now().UTC().Format(time.RFC3339),
		Source:    source,
	}, &raw)
	if err != nil {
		return nil, err
	}
	return c.normalize(raw)
}

// normalize accepts the agent's loosely typed reply. The answer may arrive as
// response, result, answer or message.
func (c *Client) normalize(raw map[string]any) (*QueryResult, error) {
	var body struct {
		Response  any    `mapstructure:"response"`
		Result    any    `mapstructure:"result"`
		Answer    any    `mapstructure:"answer"`
		Message   any    `mapstructure:"message"`
		Timestamp string `mapstructure:"timestamp"`
		Status    string `mapstructure:"status"`
	}
	if err := mapstructure.WeakDecode(raw, &body); err != nil {
		return nil, fmt.Errorf("%w: unexpected query response: %v", apperrors.ErrAgent, err)
	}

	result := &QueryResult{Timestamp: body.Timestamp, Status: body.Status}
	for _, candidate := range []any{body.Response, body.Result, body.Answer, body.Message} {
		if text := stringify(candidate); text != "" {
			result.Response = text
			break
		}
	}
	if result.Timestamp == "" {
		result.Timestamp = c.now().UTC().Format(time.RFC3339)
	}
	if result.Status == "" {
		result.Status = "success"
	}
	return result, nil
}

func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	}
}

// Relay delivers one event to /mcp/call and waits for the answer.
func (c *Client) Relay(ctx context.Context, event events.Event) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ts := event.Timestamp
	if ts.IsZero() {
		ts = c.now()
	}
	return c.post(ctx, "/mcp/call", callRequest{
		Operation: event.Type,
		Data:      event.Data,
		Timestamp: ts.UTC().Format(time.RFC3339),
		Source:    source,
	}, nil)
}

// Notify sends an event in the background. Failures are logged and dropped.
func (c *Client) Notify(ctx context.Context, eventType string, data any) {
	event := events.Event{Type: eventType, Timestamp: c.now().UTC(), Data: data}
	ctx = context.WithoutCancel(ctx)
	go func() {
		if err := c.Relay(ctx, event); err != nil {
			log.Printf("Agent notification %s failed: %v", eventType, err)
		}
	}()
}

// Status calls /mcp/status. It never fails.
func (c *Client) Status(ctx context.Context) models.ServiceStatus {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	baseURL := c.runtime.MCPServerURL()
	status := models.ServiceStatus{URL: baseURL, Timestamp: c.now().UTC()}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/mcp/status", nil)
	if err != nil {
		status.Status = models.StatusDisconnected
		status.Error = err.Error()
		return status
	}

	var data map[string]any
	if err := c.send(req, &data); err != nil {
		status.Status = models.StatusDisconnected
		status.Error = err.Error()
		return status
	}
	status.Status = models.StatusConnected
	status.Data = data
	return status
}
