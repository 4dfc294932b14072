package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout for remote datasets.
	DefaultTimeout = 60 * time.Second

	// DefaultFetchRate is the request rate (per second) allowed against a
	// remote dataset host, retries included.
	DefaultFetchRate = 1.0

	// DefaultMaxRetries is how many times a 429 response is retried.
	DefaultMaxRetries = 4
)

// RetryBaseDelay is the first backoff after a 429 response; it doubles on
// each further attempt. Tests override this to avoid real sleeps.
var RetryBaseDelay = 2 * time.Second

// Loader fetches the raw dataset from a local file or an http(s) URL.
type Loader struct {
	source     string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	logger     *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) LoaderOption {
	return func(l *Loader) {
		l.httpClient = hc
	}
}

// WithFetchRate limits remote requests to perSecond requests per second.
// Non-positive values keep the default.
func WithFetchRate(perSecond float64) LoaderOption {
	return func(l *Loader) {
		if perSecond > 0 {
			l.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
		}
	}
}

// WithMaxRetries sets how many 429 responses are retried before giving up.
func WithMaxRetries(n int) LoaderOption {
	return func(l *Loader) {
		if n >= 0 {
			l.maxRetries = n
		}
	}
}

// WithLogger sets the logger used for retry and load diagnostics.
func WithLogger(logger *slog.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader for source, which is a file path or an
// http(s) URL.
func NewLoader(source string, opts ...LoaderOption) *Loader {
	l := &Loader{
		source:     strings.TrimSpace(source),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultFetchRate), 1),
		maxRetries: DefaultMaxRetries,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Source returns the configured dataset location.
func (l *Loader) Source() string {
	return l.source
}

// IsRemote reports whether the source is fetched over HTTP.
func (l *Loader) IsRemote() bool {
	return IsRemote(l.source)
}

// IsRemote reports whether source names an http or https URL.
func IsRemote(source string) bool {
	lower := strings.ToLower(source)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Load reads and decodes the whole dataset. Every failure is returned as a
// *LoadError carrying the source and the underlying reason.
func (l *Loader) Load(ctx context.Context) ([]Paper, error) {
	if l.source == "" {
		return nil, &LoadError{Err: ErrEmptySource}
	}

	start := time.Now()
	var (
		papers []Paper
		err    error
	)
	if l.IsRemote() {
		papers, err = l.fetch(ctx)
	} else {
		papers, err = l.readFile()
	}
	if err != nil {
		return nil, &LoadError{Source: l.source, Err: err}
	}

	l.logger.Debug("dataset loaded",
		"source", l.source,
		"records", len(papers),
		"elapsed", time.Since(start))
	return papers, nil
}

// readFile decodes a local dataset file.
func (l *Loader) readFile() ([]Paper, error) {
	f, err := os.Open(l.source)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l.source)
		}
		return nil, fmt.Errorf("opening dataset file: %w", err)
	}
	defer f.Close()

	return Decode(f)
}

// fetch downloads a remote dataset, retrying 429 responses with
// exponential backoff.
func (l *Loader) fetch(ctx context.Context) ([]Paper, error) {
	for attempt := 0; ; attempt++ {
		if err := l.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.source, nil)
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := l.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrFetch, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests && attempt < l.maxRetries {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()

			backoff := RetryBaseDelay << attempt
			l.logger.Warn("dataset source rate limited, retrying",
				"source", l.source,
				"attempt", attempt+1,
				"max_retries", l.maxRetries,
				"backoff", backoff)

			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			continue
		}

		if err := checkHTTPErrors(resp); err != nil {
			resp.Body.Close()
			return nil, err
		}

		papers, err := Decode(resp.Body)
		resp.Body.Close()
		return papers, err
	}
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: status %d", ErrNotFound, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%w: HTTP %d", ErrFetch, resp.StatusCode)
	}
	return nil
}
