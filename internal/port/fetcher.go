package port

import (
	"context"
	"io"

	"github.com/vertextoedge/httpfetch/internal/domain"
)

// Fetcher defines the network operations required by the transfer engine.
// Implementations are stateless and safe to call once per probe or range
// without shared mutable state between calls.
type Fetcher interface {
	// Probe issues a metadata-only request and reports the server's
	// capabilities. A non-nil error means the exchange itself failed;
	// HTTP-level failures are reported through StatusCode instead.
	Probe(ctx context.Context, url string) (*domain.ServerCapabilities, error)

	// FetchAll issues a full-content GET and returns the streamed body.
	FetchAll(ctx context.Context, url string) (io.ReadCloser, error)

	// FetchRange issues a GET restricted to the inclusive byte range
	// [start, end]. Returns domain.ErrRangeNotSupported when the server
	// ignores the range.
	FetchRange(ctx context.Context, url string, start, end int64) (io.ReadCloser, error)
}

// ProgressSink receives a progress snapshot after every buffer write.
// It is invoked synchronously from the transfer loop.
type ProgressSink func(domain.TransferProgress)
