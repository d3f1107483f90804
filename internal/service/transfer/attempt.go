package transfer

import (
	"bytes"
	"context"
	"crypto/md5"
	"errors"
	"fmt"
	"hash"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/vertextoedge/httpfetch/internal/domain"
	"github.com/vertextoedge/httpfetch/internal/port"
)

// transferPlan describes how one attempt fetches the resource: either a
// sequence of byte ranges, or one unranged full-stream request.
type transferPlan struct {
	ranged bool
	total  int64 // -1 when unknown
	ranges []domain.ByteRange
}

// selectPlan chooses chunked ranges when the server advertises range
// support and declared a length; otherwise one full-stream fetch. The
// range loop's termination condition depends on a known length, so an
// unknown length always falls back to the full stream even when ranges
// are supported.
func selectPlan(caps *domain.ServerCapabilities, chunkSize int64) transferPlan {
	if caps.AcceptsRanges && caps.ContentLength >= 0 {
		return transferPlan{
			ranged: true,
			total:  caps.ContentLength,
			ranges: domain.SplitRanges(caps.ContentLength, chunkSize),
		}
	}

	total := caps.ContentLength
	if total < 0 {
		total = -1
	}
	return transferPlan{ranged: false, total: total}
}

// attemptResult is the terminal state of a single attempt.
type attemptResult struct {
	outcome domain.Outcome
	bytes   int64
	digest  []byte
	err     error
}

// runAttempt executes one full probe-select-stream-verify pipeline.
// The hash accumulator and partial file live exactly as long as the
// attempt; nothing is reused across retries.
func (s *Service) runAttempt(ctx context.Context, req domain.TransferRequest, sink port.ProgressSink) attemptResult {
	caps, err := s.fetcher.Probe(ctx, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return attemptResult{outcome: domain.OutcomeCancelled, err: ctx.Err()}
		}
		return attemptResult{outcome: domain.OutcomeTransientFailure, err: err}
	}

	if caps.StatusCode != http.StatusOK {
		return attemptResult{
			outcome: domain.OutcomeTransientFailure,
			err:     fmt.Errorf("%w: status %d", domain.ErrProbeFailed, caps.StatusCode),
		}
	}

	plan := selectPlan(caps, s.cfg.ChunkSize)
	s.logger.Debug("transfer plan selected",
		zap.Bool("ranged", plan.ranged),
		zap.Int64("total", plan.total),
		zap.Int("ranges", len(plan.ranges)))

	return s.stream(ctx, req, caps, plan, sink)
}

// stream writes the planned fetches into a partial file while hashing
// and reporting progress, then verifies and promotes the result.
func (s *Service) stream(ctx context.Context, req domain.TransferRequest, caps *domain.ServerCapabilities, plan transferPlan, sink port.ProgressSink) attemptResult {
	tmp, err := s.fs.CreateTemp(req.DestPath)
	if err != nil {
		return attemptResult{
			outcome: domain.OutcomeTransientFailure,
			err:     domain.NewTransportError("create partial file", err),
		}
	}

	hasher := md5.New()
	var transferred int64
	buf := make([]byte, s.cfg.BufferSize)

	// discard closes the temp file and removes it. Failed and cancelled
	// attempts leave no partial file behind.
	discard := func() {
		tmp.Close()
		if err := s.fs.Delete(tmp.Name()); err != nil {
			s.logger.Warn("failed to remove partial file", zap.Error(err))
		}
	}

	fetches := 1
	if plan.ranged {
		fetches = len(plan.ranges)
	}

	for i := 0; i < fetches; i++ {
		var body io.ReadCloser
		var err error

		if plan.ranged {
			r := plan.ranges[i]
			body, err = s.fetcher.FetchRange(ctx, req.URL, r.Start, r.End)
		} else {
			body, err = s.fetcher.FetchAll(ctx, req.URL)
		}
		if err != nil {
			discard()
			if ctx.Err() != nil {
				return attemptResult{outcome: domain.OutcomeCancelled, bytes: transferred, err: ctx.Err()}
			}
			return attemptResult{outcome: domain.OutcomeTransientFailure, err: err}
		}

		err = s.copyBody(ctx, tmp, body, hasher, plan.total, &transferred, buf, sink)
		body.Close()
		if err != nil {
			discard()
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return attemptResult{outcome: domain.OutcomeCancelled, bytes: transferred, err: err}
			}
			return attemptResult{outcome: domain.OutcomeTransientFailure, err: err}
		}
	}

	if err := tmp.Close(); err != nil {
		s.fs.Delete(tmp.Name())
		return attemptResult{
			outcome: domain.OutcomeTransientFailure,
			err:     domain.NewTransportError("close partial file", err),
		}
	}

	if plan.total >= 0 && transferred != plan.total {
		s.fs.Delete(tmp.Name())
		return attemptResult{
			outcome: domain.OutcomeTransientFailure,
			err:     fmt.Errorf("%w: wrote %d of %d bytes", domain.ErrLengthMismatch, transferred, plan.total),
		}
	}

	digest := hasher.Sum(nil)

	// Integrity verification. No declared hash means the server offered
	// nothing to check against; the transfer is accepted as-is.
	if caps.ContentMD5 != nil && !bytes.Equal(digest, caps.ContentMD5) {
		s.fs.Delete(tmp.Name())
		return attemptResult{
			outcome: domain.OutcomeIntegrityFailure,
			digest:  digest,
			err:     &domain.IntegrityError{Expected: caps.ContentMD5, Computed: digest},
		}
	}

	if err := s.fs.Promote(tmp.Name(), req.DestPath); err != nil {
		s.fs.Delete(tmp.Name())
		return attemptResult{
			outcome: domain.OutcomeTransientFailure,
			err:     domain.NewTransportError("promote partial file", err),
		}
	}

	return attemptResult{outcome: domain.OutcomeSuccess, bytes: transferred, digest: digest}
}

// copyBody drains one response body into the partial file in fixed-size
// buffers. Each buffer is written to the file, folded into the hash,
// counted, and reported to the sink, in that order.
func (s *Service) copyBody(ctx context.Context, dst io.Writer, body io.Reader, hasher hash.Hash, total int64, transferred *int64, buf []byte, sink port.ProgressSink) error {
	for {
		// Cancellation is observed between buffer reads: an in-flight
		// read or write completes first, so cancellation latency is
		// bounded by one buffer's I/O time.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, rerr := body.Read(buf)
		if n > 0 {
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return domain.NewTransportError("write partial file", werr)
			}
			hasher.Write(buf[:n])
			*transferred += int64(n)

			if sink != nil {
				sink(domain.TransferProgress{Total: total, Transferred: *transferred})
			}
			if s.limiter.Allow() {
				s.logger.Debug("transfer progress",
					zap.Int64("transferred", *transferred),
					zap.Int64("total", total))
			}
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return domain.NewTransportError("read body", rerr)
		}
	}
}
