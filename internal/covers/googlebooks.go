package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lepinkainen/bookjournal/internal/errors"
	"github.com/lepinkainen/bookjournal/internal/ratelimit"
)

const googleBooksBaseURL = "https://www.googleapis.com/books/v1"

// GoogleBooksProvider looks up covers with the Google Books volumes API.
type GoogleBooksProvider struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *ratelimit.Limiter
}

// Compile-time check that GoogleBooksProvider implements Provider.
var _ Provider = (*GoogleBooksProvider)(nil)

// GoogleBooksOption configures a GoogleBooksProvider
type GoogleBooksOption func(*GoogleBooksProvider)

// WithGoogleBooksBaseURL points the provider at a different API host.
func WithGoogleBooksBaseURL(baseURL string) GoogleBooksOption {
	return func(p *GoogleBooksProvider) {
		p.baseURL = baseURL
	}
}

// WithGoogleBooksHTTPClient replaces the default HTTP client.
func WithGoogleBooksHTTPClient(client *http.Client) GoogleBooksOption {
	return func(p *GoogleBooksProvider) {
		p.httpClient = client
	}
}

// WithGoogleBooksRate limits requests per second. Zero disables pacing.
func WithGoogleBooksRate(requestsPerSecond float64) GoogleBooksOption {
	return func(p *GoogleBooksProvider) {
		p.limiter = ratelimit.New("GoogleBooks", requestsPerSecond)
	}
}

// NewGoogleBooksProvider creates a Google Books provider. apiKey may be empty.
func NewGoogleBooksProvider(apiKey string, opts ...GoogleBooksOption) *GoogleBooksProvider {
	p := &GoogleBooksProvider{
		baseURL:    googleBooksBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		limiter:    ratelimit.New("GoogleBooks", 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the human-readable name of this provider.
func (p *GoogleBooksProvider) Name() string {
	return "googlebooks"
}

type googleBooksResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		VolumeInfo struct {
			Title      string `json:"title"`
			ImageLinks struct {
				SmallThumbnail string `json:"smallThumbnail"`
				Thumbnail      string `json:"thumbnail"`
			} `json:"imageLinks"`
		} `json:"volumeInfo"`
	} `json:"items"`
}

// Lookup searches by title and author and returns the first volume's thumbnail.
func (p *GoogleBooksProvider) Lookup(ctx context.Context, title, author string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	query := "intitle:" + title
	if author != "" {
		query += " inauthor:" + author
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("maxResults", "1")
	if p.apiKey != "" {
		q.Set("key", p.apiKey)
	}
	endpoint := fmt.Sprintf("%s/volumes?%s", p.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("google Books API request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errors.NewRateLimitErrorWithRetry("Google Books rate limit exceeded", retryAfter(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("google Books API returned non-200 status code: %d", resp.StatusCode)
	}

	var result googleBooksResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode Google Books response: %w", err)
	}

	if len(result.Items) == 0 {
		return "", nil
	}

	links := result.Items[0].VolumeInfo.ImageLinks
	thumb := links.Thumbnail
	if thumb == "" {
		thumb = links.SmallThumbnail
	}
	// Google serves http links that load fine over https
	return strings.Replace(thumb, "http://", "https://", 1), nil
}
