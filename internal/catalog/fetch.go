package catalog

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Fetcher retrieves a remote resource as a byte stream.
// It performs no retries; any redirect policy is the implementation's own.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (io.ReadCloser, error)
}

// FetchError wraps any transport-level failure with the URL that caused it.
type FetchError struct {
	URL string
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap exposes the underlying cause.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// errBadHTTPStatus is returned inside a FetchError for non-200 responses.
var errBadHTTPStatus = fmt.Errorf("unexpected http status")

// HTTPFetcher is the production Fetcher backed by net/http.
type HTTPFetcher struct {
	// Client is the HTTP client to use; nil means http.DefaultClient.
	Client *http.Client
}

// Fetch issues a context-aware GET and returns the response body for streaming.
// The caller owns closing the stream.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}

	response, err := client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: err}
	}

	if response.StatusCode != http.StatusOK {
		_ = response.Body.Close()

		return nil, &FetchError{URL: url, Err: fmt.Errorf("%s: %w", response.Status, errBadHTTPStatus)}
	}

	return response.Body, nil
}
