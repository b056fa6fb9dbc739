package covers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/lepinkainen/bookjournal/internal/errors"
	"github.com/lepinkainen/bookjournal/internal/ratelimit"
)

const (
	openLibraryBaseURL       = "https://openlibrary.org"
	openLibraryCoverTemplate = "https://covers.openlibrary.org/b/id/%d-%s.jpg"
)

// OpenLibraryProvider looks up covers with the OpenLibrary search API.
type OpenLibraryProvider struct {
	baseURL       string
	coverTemplate string
	size          string
	httpClient    *http.Client
	limiter       *ratelimit.Limiter
}

// Compile-time check that OpenLibraryProvider implements Provider.
var _ Provider = (*OpenLibraryProvider)(nil)

// OpenLibraryOption configures an OpenLibraryProvider
type OpenLibraryOption func(*OpenLibraryProvider)

// WithOpenLibraryBaseURL points the provider at a different API host (tests, mirrors).
func WithOpenLibraryBaseURL(baseURL string) OpenLibraryOption {
	return func(p *OpenLibraryProvider) {
		p.baseURL = baseURL
	}
}

// WithCoverTemplate overrides the cover URL template. It takes the cover id and size.
func WithCoverTemplate(template string) OpenLibraryOption {
	return func(p *OpenLibraryProvider) {
		p.coverTemplate = template
	}
}

// WithCoverSize selects the OpenLibrary image size: S, M or L.
func WithCoverSize(size string) OpenLibraryOption {
	return func(p *OpenLibraryProvider) {
		if size != "" {
			p.size = size
		}
	}
}

// WithOpenLibraryHTTPClient replaces the default HTTP client.
func WithOpenLibraryHTTPClient(client *http.Client) OpenLibraryOption {
	return func(p *OpenLibraryProvider) {
		p.httpClient = client
	}
}

// WithOpenLibraryRate limits requests per second. Zero disables pacing.
func WithOpenLibraryRate(requestsPerSecond float64) OpenLibraryOption {
	return func(p *OpenLibraryProvider) {
		p.limiter = ratelimit.New("OpenLibrary", requestsPerSecond)
	}
}

// NewOpenLibraryProvider creates an OpenLibrary provider paced at one request per second.
func NewOpenLibraryProvider(opts ...OpenLibraryOption) *OpenLibraryProvider {
	p := &OpenLibraryProvider{
		baseURL:       openLibraryBaseURL,
		coverTemplate: openLibraryCoverTemplate,
		size:          "M",
		httpClient:    &http.Client{Timeout: 10 * time.Second},
		limiter:       ratelimit.New("OpenLibrary", 1),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the human-readable name of this provider.
func (p *OpenLibraryProvider) Name() string {
	return "openlibrary"
}

// openLibrarySearchResponse matches the parts of search.json we read.
type openLibrarySearchResponse struct {
	NumFound int `json:"numFound"`
	Docs     []struct {
		Title   string `json:"title"`
		CoverID int    `json:"cover_i"`
	} `json:"docs"`
}

// Lookup searches by title and author and returns the first result's cover URL.
// Only the first result is considered; if it has no cover the answer is "".
func (p *OpenLibraryProvider) Lookup(ctx context.Context, title, author string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("title", title)
	if author != "" {
		q.Set("author", author)
	}
	q.Set("limit", "1")
	q.Set("fields", "title,cover_i")
	endpoint := fmt.Sprintf("%s/search.json?%s", p.baseURL, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("OpenLibrary search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", errors.NewRateLimitErrorWithRetry("OpenLibrary rate limit exceeded", retryAfter(resp))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenLibrary search returned status: %s", resp.Status)
	}

	var result openLibrarySearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("failed to decode OpenLibrary response: %w", err)
	}

	if len(result.Docs) == 0 {
		return "", nil
	}
	return p.coverURL(result.Docs[0].CoverID), nil
}

// coverURL builds the image URL from a cover id; ids <= 0 mean no cover.
func (p *OpenLibraryProvider) coverURL(coverID int) string {
	if coverID <= 0 {
		return ""
	}
	return fmt.Sprintf(p.coverTemplate, coverID, p.size)
}

func retryAfter(resp *http.Response) time.Duration {
	secs, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
