package bank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxDocumentBytes caps a downloaded bank document.
const maxDocumentBytes = 32 << 20

// HTTPLoader fetches bank documents from a base URL, probing the same
// relative locations as FSLoader.
type HTTPLoader struct {
	baseURL string
	client  *http.Client
}

// HTTPOption configures an HTTPLoader.
type HTTPOption func(*HTTPLoader)

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(c *http.Client) HTTPOption {
	return func(l *HTTPLoader) { l.client = c }
}

// WithTimeout sets the per-request timeout on the default client.
func WithTimeout(d time.Duration) HTTPOption {
	return func(l *HTTPLoader) { l.client = &http.Client{Timeout: d} }
}

// NewHTTPLoader creates a loader rooted at baseURL.
func NewHTTPLoader(baseURL string, opts ...HTTPOption) *HTTPLoader {
	l := &HTTPLoader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *HTTPLoader) Load(ctx context.Context, poolID string) (*Document, error) {
	var errs []error
	for _, p := range candidatePaths(poolID) {
		url := l.baseURL + "/" + strings.TrimPrefix(p, "./")
		data, err := l.downloadFile(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !errors.Is(err, errNotFound) {
				errs = append(errs, err)
			}
			continue
		}
		doc, err := Decode(data, FormatFor(p), url)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		return doc, nil
	}
	if len(errs) == 0 {
		return nil, fmt.Errorf("%s: not found under %s: %w", poolID, l.baseURL, ErrSourceUnavailable)
	}
	return nil, fmt.Errorf("%s: %w", poolID, errors.Join(append([]error{ErrSourceUnavailable}, errs...)...))
}

var errNotFound = errors.New("not found")

func (l *HTTPLoader) downloadFile(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%s: %w", url, errNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for %s", resp.StatusCode, url)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
}
