package httpclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/vertextoedge/httpfetch/internal/domain"
	"github.com/vertextoedge/httpfetch/internal/port"
)

// Options configures the HTTP client.
type Options struct {
	// Timeout bounds a single request. Zero means no timeout; long
	// transfers are bounded by caller cancellation instead.
	Timeout time.Duration

	// MaxIdleConnsPerHost sets the maximum idle connections per host.
	MaxIdleConnsPerHost int

	// UserAgent is sent with every request.
	UserAgent string
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Timeout:             0,
		MaxIdleConnsPerHost: 8,
		UserAgent:           "httpfetch",
	}
}

// Client implements port.Fetcher on top of net/http. It performs no
// retries of its own; retry is owned by the transfer orchestrator,
// which restarts whole attempts.
type Client struct {
	client *http.Client
	opts   Options
}

// Ensure Client implements port.Fetcher
var _ port.Fetcher = (*Client)(nil)

// New creates a new HTTP client with the given options.
func New(opts Options) *Client {
	transport := &http.Transport{
		MaxIdleConnsPerHost: opts.MaxIdleConnsPerHost,
		IdleConnTimeout:     90 * time.Second,
		DisableCompression:  true, // raw bytes, lengths and ranges must line up
	}

	return &Client{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		opts: opts,
	}
}

// Probe performs a HEAD request and extracts the server's capabilities.
// A non-2xx status is not an error here; it is reported through
// StatusCode so the caller can decide how to classify it.
func (c *Client) Probe(ctx context.Context, url string) (*domain.ServerCapabilities, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create probe request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError("probe", err)
	}
	resp.Body.Close()

	caps := &domain.ServerCapabilities{
		StatusCode:    resp.StatusCode,
		ContentLength: resp.ContentLength,
		AcceptsRanges: resp.Header.Get("Accept-Ranges") == "bytes",
	}

	if declared := resp.Header.Get("Content-MD5"); declared != "" {
		digest, err := base64.StdEncoding.DecodeString(declared)
		if err == nil && len(digest) == 16 {
			caps.ContentMD5 = digest
		}
		// A malformed header is treated as no declared hash.
	}

	return caps, nil
}

// FetchAll performs a full-content GET and returns the streamed body.
func (c *Client) FetchAll(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError("fetch", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, domain.NewTransportError("fetch",
			fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status))
	}

	return resp.Body, nil
}

// FetchRange performs a GET restricted to the inclusive byte range
// [start, end]. The server must answer 206; a 200 without Content-Range
// means the range was ignored and domain.ErrRangeNotSupported is
// returned.
func (c *Client) FetchRange(ctx context.Context, url string, start, end int64) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, end))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, domain.NewTransportError("fetch range", err)
	}

	switch resp.StatusCode {
	case http.StatusPartialContent:
		return resp.Body, nil
	case http.StatusOK:
		// Some servers answer 200 with a Content-Range anyway; without
		// one the range was ignored.
		if resp.Header.Get("Content-Range") != "" {
			return resp.Body, nil
		}
		resp.Body.Close()
		return nil, domain.ErrRangeNotSupported
	case http.StatusRequestedRangeNotSatisfiable:
		resp.Body.Close()
		return nil, domain.ErrRangeNotSupported
	default:
		resp.Body.Close()
		return nil, domain.NewTransportError("fetch range",
			fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status))
	}
}
