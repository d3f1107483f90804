package transfer

import (
	"bytes"
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"

	"github.com/vertextoedge/httpfetch/internal/domain"
	"github.com/vertextoedge/httpfetch/internal/port"
	"github.com/vertextoedge/httpfetch/internal/util/ratelimiter"
)

// Config contains transfer engine configuration
type Config struct {
	// BufferSize is the fixed read buffer size in bytes.
	BufferSize int

	// ChunkSize is the size of each range request in bytes.
	ChunkSize int64

	// MaxAttempts bounds the number of whole-attempt executions.
	MaxAttempts int

	// Backoff returns the wait before retrying after the given attempt.
	Backoff func(attempt int) time.Duration

	// Retriable decides whether a failed attempt may be retried.
	Retriable func(outcome domain.Outcome, err error) bool

	// ProgressLogInterval throttles per-buffer progress log lines.
	ProgressLogInterval time.Duration
}

// DefaultConfig returns default transfer configuration
func DefaultConfig() *Config {
	return &Config{
		BufferSize:          64 * 1024,
		ChunkSize:           4 * 1024 * 1024,
		MaxAttempts:         3,
		Backoff:             ExponentialBackoff(time.Second, 30*time.Second),
		Retriable:           DefaultRetriable,
		ProgressLogInterval: time.Second,
	}
}

// ExponentialBackoff returns a backoff function that doubles from base
// up to max, with jitter between 0.5x and 1.5x.
func ExponentialBackoff(base, max time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt < 1 {
			attempt = 1
		}
		backoff := base << uint(attempt-1)
		if backoff <= 0 || backoff > max {
			backoff = max
		}
		return time.Duration(float64(backoff) * (0.5 + rand.Float64()))
	}
}

// DefaultRetriable retries transient failures and integrity failures.
// A transient corruption can produce an integrity mismatch, so a fresh
// attempt is worth it; the orchestrator separately stops once the
// mismatch proves deterministic. Cancellation is never retried.
func DefaultRetriable(outcome domain.Outcome, err error) bool {
	switch outcome {
	case domain.OutcomeTransientFailure, domain.OutcomeIntegrityFailure:
		return true
	default:
		return false
	}
}

// Service downloads single files reliably: it probes server
// capabilities, streams the content in ranges or one full stream,
// verifies integrity, and retries whole attempts on failure.
type Service struct {
	cfg     *Config
	fetcher port.Fetcher
	fs      port.FileSystem
	logger  *zap.Logger
	limiter *ratelimiter.Limiter
}

// New creates a new transfer Service
func New(cfg *Config, fetcher port.Fetcher, fs port.FileSystem, logger *zap.Logger) *Service {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 64 * 1024
	}
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 4 * 1024 * 1024
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.Backoff == nil {
		cfg.Backoff = ExponentialBackoff(time.Second, 30*time.Second)
	}
	if cfg.Retriable == nil {
		cfg.Retriable = DefaultRetriable
	}
	if cfg.ProgressLogInterval <= 0 {
		cfg.ProgressLogInterval = time.Second
	}

	return &Service{
		cfg:     cfg,
		fetcher: fetcher,
		fs:      fs,
		logger:  logger,
		limiter: ratelimiter.New(cfg.ProgressLogInterval),
	}
}

// Download transfers url to dest. Each attempt runs the full
// probe-select-stream-verify pipeline from byte zero; no progress is
// carried between attempts. The sink, when non-nil, is invoked
// synchronously after every buffer write.
func (s *Service) Download(ctx context.Context, url, dest string, sink port.ProgressSink) *domain.TransferResult {
	req := domain.TransferRequest{URL: url, DestPath: dest}

	s.logger.Info("starting download",
		zap.String("url", url),
		zap.String("dest", dest),
		zap.Int("max_attempts", s.cfg.MaxAttempts))

	var last attemptResult
	var prevDigest []byte
	attempts := 0

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		attempts = attempt
		s.limiter.Reset()

		last = s.runAttempt(ctx, req, sink)

		switch last.outcome {
		case domain.OutcomeSuccess:
			s.logger.Info("download complete",
				zap.String("dest", dest),
				zap.Int64("bytes", last.bytes),
				zap.Int("attempts", attempt))
			return &domain.TransferResult{
				Outcome:      domain.OutcomeSuccess,
				BytesWritten: last.bytes,
				Attempts:     attempt,
			}
		case domain.OutcomeCancelled:
			s.logger.Info("download cancelled",
				zap.String("dest", dest),
				zap.Int64("bytes", last.bytes))
			return &domain.TransferResult{
				Outcome:  domain.OutcomeCancelled,
				Attempts: attempt,
				Err:      last.err,
			}
		}

		s.logger.Warn("download attempt failed",
			zap.Int("attempt", attempt),
			zap.String("outcome", last.outcome.String()),
			zap.Error(last.err))

		if !s.cfg.Retriable(last.outcome, last.err) {
			break
		}

		if last.outcome == domain.OutcomeIntegrityFailure {
			// Two identical computed digests mean the mismatch is
			// deterministic; another attempt cannot change the bytes.
			if prevDigest != nil && bytes.Equal(prevDigest, last.digest) {
				s.logger.Warn("integrity mismatch is deterministic, giving up")
				break
			}
			prevDigest = last.digest
		}

		if attempt < s.cfg.MaxAttempts {
			wait := s.cfg.Backoff(attempt)
			s.logger.Debug("backing off before retry", zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return &domain.TransferResult{
					Outcome:  domain.OutcomeCancelled,
					Attempts: attempt,
					Err:      ctx.Err(),
				}
			case <-time.After(wait):
			}
		}
	}

	return &domain.TransferResult{
		Outcome:  last.outcome,
		Attempts: attempts,
		Err:      last.err,
	}
}
