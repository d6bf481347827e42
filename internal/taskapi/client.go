// Package taskapi is the HTTP client for the content task API served by
// internal/server.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"studio/internal/models"
)

// DefaultTimeout bounds every request made by the client.
const DefaultTimeout = 30 * time.Second

// StatusError is returned for non-2xx responses.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task api returned %d", e.StatusCode)
	}
	return fmt.Sprintf("task api returned %d: %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a 404 from the task API.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

// Client talks to the task API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client. Its transport is still
// wrapped for request IDs and logging.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// New creates a client for the API rooted at baseURL, e.g.
// http://localhost:8080/api.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("task api base url required")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("parse task api url: %w", err)
	}

	client := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     slog.Default(),
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(client)
	}

	wrapped := *client.httpClient
	wrapped.Timeout = client.timeout
	wrapped.Transport = &loggingTransport{base: wrapped.Transport, logger: client.logger}
	client.httpClient = &wrapped
	return client, nil
}

type itemEnvelope struct {
	Item models.ContentItem `json:"item"`
}

// ListContentItems returns every content item.
func (c *Client) ListContentItems(ctx context.Context) ([]models.ContentItem, error) {
	var payload struct {
		Items []models.ContentItem `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, "/tasks/content", nil, nil, &payload); err != nil {
		return nil, err
	}
	if payload.Items == nil {
		payload.Items = []models.ContentItem{}
	}
	return payload.Items, nil
}

// CreateContentItem creates an item and returns it with its assigned id.
func (c *Client) CreateContentItem(ctx context.Context, input models.ContentInput) (models.ContentItem, error) {
	var payload itemEnvelope
	if err := c.do(ctx, http.MethodPost, "/tasks/content", nil, input, &payload); err != nil {
		return models.ContentItem{}, err
	}
	return payload.Item, nil
}

// GetContentItem fetches a single item.
func (c *Client) GetContentItem(ctx context.Context, id int64) (models.ContentItem, error) {
	var payload itemEnvelope
	if err := c.do(ctx, http.MethodGet, itemPath(id), nil, nil, &payload); err != nil {
		return models.ContentItem{}, err
	}
	return payload.Item, nil
}

// UpdateContentStage sets the stage of an item.
func (c *Client) UpdateContentStage(ctx context.Context, id int64, stage models.Stage) error {
	query := url.Values{}
	query.Set("stage", string(stage))
	return c.do(ctx, http.MethodPut, itemPath(id), query, nil, nil)
}

// UpdateContentItem replaces the writable fields of an item.
func (c *Client) UpdateContentItem(ctx context.Context, id int64, input models.ContentInput) error {
	return c.do(ctx, http.MethodPatch, itemPath(id), nil, input, nil)
}

// ListHistory returns the change log of an item.
func (c *Client) ListHistory(ctx context.Context, id int64) ([]models.HistoryEntry, error) {
	var payload struct {
		History []models.HistoryEntry `json:"history"`
	}
	if err := c.do(ctx, http.MethodGet, itemPath(id)+"/history", nil, nil, &payload); err != nil {
		return nil, err
	}
	return payload.History, nil
}

// ListFiles lists vault files, optionally filtered by extension.
func (c *Client) ListFiles(ctx context.Context, fileType string) ([]models.FileInfo, error) {
	var query url.Values
	if fileType = strings.TrimSpace(fileType); fileType != "" {
		query = url.Values{}
		query.Set("file_type", fileType)
	}
	var payload struct {
		Files []models.FileInfo `json:"files"`
	}
	if err := c.do(ctx, http.MethodGet, "/files", query, nil, &payload); err != nil {
		return nil, err
	}
	return payload.Files, nil
}

func itemPath(id int64) string {
	return "/tasks/content/" + strconv.FormatInt(id, 10)
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return fmt.Errorf("%s %s (latency=%v): %w", method, path, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Message: readErrorMessage(resp.Body)}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func readErrorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 4096))
	var envelope struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error != "" {
		return envelope.Error
	}
	return strings.TrimSpace(string(raw))
}
