package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/lepinkainen/bookjournal/internal/errors"
	"github.com/lepinkainen/bookjournal/internal/journal"
)

// RemoteClient implements Remote against an HTTP key-value endpoint:
// GET {baseURL}/{resource} reads the collection, POST replaces it.
type RemoteClient struct {
	baseURL  string
	resource string
	apiToken string
	client   *http.Client
}

// Compile-time check that RemoteClient implements Remote.
var _ Remote = (*RemoteClient)(nil)

// RemoteOption configures a RemoteClient
type RemoteOption func(*RemoteClient)

// WithHTTPClient replaces the default HTTP client
func WithHTTPClient(client *http.Client) RemoteOption {
	return func(c *RemoteClient) {
		c.client = client
	}
}

// WithAPIToken sends the token as a bearer Authorization header
func WithAPIToken(token string) RemoteOption {
	return func(c *RemoteClient) {
		c.apiToken = token
	}
}

// NewRemoteClient creates a new RemoteClient instance
func NewRemoteClient(baseURL, resource string, opts ...RemoteOption) (*RemoteClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host are required", baseURL)
	}
	if resource == "" {
		return nil, fmt.Errorf("resource name is required")
	}

	c := &RemoteClient{
		baseURL:  baseURL,
		resource: resource,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *RemoteClient) endpoint() (string, error) {
	return url.JoinPath(c.baseURL, c.resource)
}

// Fetch returns the stored collection
func (c *RemoteClient) Fetch(ctx context.Context) (journal.Collection, error) {
	endpoint, err := c.endpoint()
	if err != nil {
		return nil, errors.NewRemoteUnavailableError("load", 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NewRemoteUnavailableError("load", 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.NewRemoteUnavailableError("load", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		return nil, errors.NewRemoteUnavailableError("load", resp.StatusCode, nil)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewRemoteUnavailableError("load", resp.StatusCode, fmt.Errorf("failed to read body: %w", err))
	}

	// A resource that was never set comes back empty
	if len(bytes.TrimSpace(body)) == 0 {
		return journal.Collection{}, nil
	}

	var books journal.Collection
	if err := json.Unmarshal(body, &books); err != nil {
		return nil, errors.NewMalformedResponseError("load", err)
	}
	if err := books.Validate(); err != nil {
		return nil, errors.NewMalformedResponseError("load", err)
	}
	if books == nil {
		books = journal.Collection{}
	}
	return books, nil
}

// Push replaces the stored collection
func (c *RemoteClient) Push(ctx context.Context, books journal.Collection) error {
	endpoint, err := c.endpoint()
	if err != nil {
		return errors.NewRemoteUnavailableError("save", 0, err)
	}

	if books == nil {
		books = journal.Collection{}
	}
	jsonData, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return errors.NewRemoteUnavailableError("save", 0, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.NewRemoteUnavailableError("save", 0, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if !isSuccess(resp.StatusCode) {
		var errResp map[string]any
		if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
			return errors.NewRemoteUnavailableError("save", resp.StatusCode, nil)
		}
		return errors.NewRemoteUnavailableError("save", resp.StatusCode, fmt.Errorf("API error: %v", errResp))
	}

	return nil
}

func isSuccess(status int) bool {
	return status >= 200 && status <= 299
}

func (c *RemoteClient) authorize(req *http.Request) {
	if c.apiToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiToken)
	}
}
