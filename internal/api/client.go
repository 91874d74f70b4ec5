package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/absolutefisio/clinic-admin/internal/observability/metrics"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// TokenSource supplies the current bearer token, or "" when unauthenticated.
type TokenSource func() string

// Client is the typed REST client for the clinic backend. All resource
// methods share one doJSON core with bearer injection and error parsing.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      TokenSource
	logger     *logging.Logger
	metrics    *metrics.BackendMetrics
}

// NewClient constructs the backend client. token may be nil for anonymous
// use (login, password reset); metrics may be nil to disable recording.
func NewClient(baseURL string, token TokenSource, m *metrics.BackendMetrics, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	if token == nil {
		token = func() string { return "" }
	}
	return &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		logger:     logger,
		metrics:    m,
	}
}

// SetTimeout overrides the default request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	respBody, _, err := c.send(req, path, method)
	if err != nil {
		return err
	}
	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doMultipart posts a multipart form with one file part plus string fields.
func (c *Client) doMultipart(ctx context.Context, path, filename string, file io.Reader, fields map[string]string, out interface{}) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return fmt.Errorf("build form: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copy file: %w", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("close form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, _, err := c.send(req, path, http.MethodPost)
	if err != nil {
		return err
	}
	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// download fetches a binary body, returning the bytes and the server-declared
// content type.
func (c *Client) download(ctx context.Context, path string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	body, contentType, err := c.send(req, path, http.MethodGet)
	if err != nil {
		return nil, "", err
	}
	return body, contentType, nil
}

// send executes the request, records metrics, and converts non-2xx responses
// into *Error. Transport failures come back as plain wrapped errors.
func (c *Client) send(req *http.Request, path, method string) ([]byte, string, error) {
	if tok := c.token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(resourceLabel(path), method, 0, time.Since(start).Seconds())
		return nil, "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	c.metrics.ObserveRequest(resourceLabel(path), method, resp.StatusCode, time.Since(start).Seconds())

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, respBody)
		c.logger.Warn("backend non-2xx response",
			"status", resp.StatusCode,
			"method", method,
			"path", path,
			"body", apiErr.Body,
		)
		return nil, "", apiErr
	}
	return respBody, resp.Header.Get("Content-Type"), nil
}

// resourceLabel extracts the first path segment after /api for metric labels,
// keeping cardinality flat (no ids).
func resourceLabel(path string) string {
	trimmed := strings.TrimPrefix(path, "/api/")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if i := strings.IndexAny(trimmed, "/?"); i >= 0 {
		trimmed = trimmed[:i]
	}
	if trimmed == "" {
		return "unknown"
	}
	return trimmed
}
