package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrImageTooLarge is returned when a download exceeds the size limit
	ErrImageTooLarge = errors.New("image exceeds size limit")

	// ErrImageNotFound is returned when the remote source has no such image
	ErrImageNotFound = errors.New("image not found")
)

// ImageFetcher downloads the raw bytes of an image. Decoding is left to the
// extractor so every source goes through the same decoder.
type ImageFetcher interface {
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}

// HTTPFetcherConfig tunes HTTPImageFetcher
type HTTPFetcherConfig struct {
	Timeout  time.Duration
	MaxBytes int64
	// Backoff is the base delay between attempts; attempt n waits n*Backoff
	Backoff time.Duration
}

// DefaultHTTPFetcherConfig returns the settings used by the API server
func DefaultHTTPFetcherConfig() HTTPFetcherConfig {
	return HTTPFetcherConfig{
		Timeout:  15 * time.Second,
		MaxBytes: 10 * 1024 * 1024,
		Backoff:  time.Second,
	}
}

// HTTPImageFetcher implements ImageFetcher over plain HTTP(S)
type HTTPImageFetcher struct {
	client   *http.Client
	maxBytes int64
	backoff  time.Duration
}

const maxAttempts = 3

// NewHTTPImageFetcher creates an HTTP image fetcher
func NewHTTPImageFetcher(cfg HTTPFetcherConfig) *HTTPImageFetcher {
	def := DefaultHTTPFetcherConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = def.MaxBytes
	}
	if cfg.Backoff < 0 {
		cfg.Backoff = 0
	}

	// Connection pooling sized for one image per request
	transport := &http.Transport{
		Proxy:                  http.ProxyFromEnvironment,
		MaxIdleConns:           10,
		MaxIdleConnsPerHost:    2,
		IdleConnTimeout:        30 * time.Second,
		TLSHandshakeTimeout:    10 * time.Second,
		ResponseHeaderTimeout:  10 * time.Second,
		ExpectContinueTimeout:  1 * time.Second,
		MaxResponseHeaderBytes: 4096,
	}

	return &HTTPImageFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: cfg.MaxBytes,
		backoff:  cfg.Backoff,
	}
}

// Fetch downloads imageURL. Network errors and 5xx responses are retried up
// to three times; 4xx responses fail immediately.
func (h *HTTPImageFetcher) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/webp, image/gif, image/bmp, image/tiff, */*")
	req.Header.Set("User-Agent", "ASL-Inspector/1.0")

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("failed to fetch image: %w", ctx.Err())
			case <-time.After(time.Duration(attempt) * h.backoff):
			}
		}

		data, retry, err := h.attempt(req)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retry {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to fetch image after %d attempts: %w", maxAttempts, lastErr)
}

// attempt performs one request. retry reports whether the failure is transient.
func (h *HTTPImageFetcher) attempt(req *http.Request) (data []byte, retry bool, err error) {
	resp, err := h.client.Do(req)
	if err != nil {
		if req.Context().Err() != nil {
			return nil, false, fmt.Errorf("failed to fetch image: %w", err)
		}
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("client error: status code %d: %w", resp.StatusCode, ErrImageNotFound)
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, false, fmt.Errorf("client error: status code %d", resp.StatusCode)
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("server error: status code %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("unexpected status code %d", resp.StatusCode)
	}

	if resp.ContentLength > h.maxBytes {
		return nil, false, ErrImageTooLarge
	}
	data, err = readLimited(resp.Body, h.maxBytes)
	if err != nil {
		return nil, false, err
	}
	return data, false, nil
}

// readLimited reads r fully, failing once more than limit bytes arrive
func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	if int64(len(data)) > limit {
		return nil, ErrImageTooLarge
	}
	return data, nil
}
