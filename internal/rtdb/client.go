package rtdb

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ClientConfig holds configuration for the realtime database client.
type ClientConfig struct {
	// BaseURL is the database root URL, e.g. https://proj.firebaseio.com.
	BaseURL string

	// AuthToken is appended as the auth query parameter when non-empty.
	AuthToken string

	// HTTPClient is the HTTP client for one-shot operations. If nil a
	// default client with Timeout is used.
	HTTPClient HTTPDoer

	// Timeout for one-shot requests (default: 10s). Watch streams are
	// long-lived and never use it.
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the hosted realtime database over its REST and streaming
// protocol. All failures propagate to the caller as-is: there is no retry,
// no backoff, and no offline queueing at this layer.
type Client struct {
	baseURL    string
	authToken  string
	httpClient HTTPDoer
	streamer   HTTPDoer
}

// NewClient creates a new realtime database client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		authToken:  cfg.AuthToken,
		httpClient: httpClient,
		// Streams stay open indefinitely, so they bypass the timeout
		// client.
		streamer: &http.Client{},
	}
}

// url builds the REST URL for a path.
func (c *Client) url(path string) string {
	u := c.baseURL + "/" + strings.Trim(path, "/") + ".json"
	if c.authToken != "" {
		u += "?auth=" + c.authToken
	}
	return u
}

// Get reads the value at path into v.
func (c *Client) Get(ctx context.Context, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("get %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d reading %s", resp.StatusCode, path)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if isJSONNull(body) {
		return ErrNotFound
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Set replaces the value at path.
func (c *Client) Set(ctx context.Context, path string, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode value: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.url(path), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("set %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d writing %s", resp.StatusCode, path)
	}
	return nil
}

// Push appends v under path with a server-assigned key.
func (c *Client) Push(ctx context.Context, path string, v any) (string, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode value: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url(path), bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("push %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d pushing to %s", resp.StatusCode, path)
	}

	var result struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode push response: %w", err)
	}
	return result.Name, nil
}

// Delete removes the value at path.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.url(path), http.NoBody)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d deleting %s", resp.StatusCode, path)
	}
	return nil
}

// Watch opens a streaming connection to path and delivers the full current
// value to fn after every server event. The stream protocol delivers "put"
// and "patch" events scoped to sub-paths; the client merges them into a
// local copy of the tree so consumers always see a complete snapshot.
func (c *Client) Watch(ctx context.Context, path string, fn WatchFunc) (StopFunc, error) {
	ctx, cancel := context.WithCancel(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), http.NoBody)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.streamer.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("watch %s: %w", path, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("unexpected status %d watching %s", resp.StatusCode, path)
	}

	go func() {
		defer resp.Body.Close()
		streamEvents(resp.Body, fn)
	}()

	stop := func() {
		cancel()
	}
	return stop, nil
}

// streamEvents parses the SSE stream and delivers merged snapshots until
// the stream ends.
func streamEvents(r io.Reader, fn WatchFunc) {
	var tree any
	var event, data string

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			event = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data = strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		case line == "":
			// Blank line terminates one event.
			if applyStreamEvent(&tree, event, data) {
				out, err := json.Marshal(tree)
				if err == nil {
					fn(out)
				}
			}
			event, data = "", ""
		}
	}
}

// applyStreamEvent merges one server event into the local tree. Returns
// true when the tree changed and a snapshot should be delivered.
func applyStreamEvent(tree *any, event, data string) bool {
	switch event {
	case "put", "patch":
	case "keep-alive", "cancel", "auth_revoked", "":
		return false
	default:
		return false
	}

	var payload struct {
		Path string          `json:"path"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal([]byte(data), &payload); err != nil {
		return false
	}

	var value any
	if err := json.Unmarshal(payload.Data, &value); err != nil {
		return false
	}

	if event == "put" {
		setAtPath(tree, payload.Path, value)
	} else {
		patchAtPath(tree, payload.Path, value)
	}
	return true
}

// setAtPath replaces the value at a slash-separated sub-path of the tree.
func setAtPath(tree *any, path string, value any) {
	parts := splitPath(path)
	if len(parts) == 0 {
		*tree = value
		return
	}

	node := ensureMap(tree)
	for _, key := range parts[:len(parts)-1] {
		child, ok := node[key].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[key] = child
		}
		node = child
	}

	last := parts[len(parts)-1]
	if value == nil {
		delete(node, last)
	} else {
		node[last] = value
	}
}

// patchAtPath merges the keys of value into the map at the sub-path.
func patchAtPath(tree *any, path string, value any) {
	fields, ok := value.(map[string]any)
	if !ok {
		setAtPath(tree, path, value)
		return
	}
	for k, v := range fields {
		setAtPath(tree, strings.TrimSuffix(path, "/")+"/"+k, v)
	}
}

func ensureMap(tree *any) map[string]any {
	if m, ok := (*tree).(map[string]any); ok {
		return m
	}
	m := make(map[string]any)
	*tree = m
	return m
}

func splitPath(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

func isJSONNull(body []byte) bool {
	return string(bytes.TrimSpace(body)) == "null"
}

// Ensure Client implements Store.
var _ Store = (*Client)(nil)
