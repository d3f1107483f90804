package domain

import "time"

// Outcome classifies the terminal state of a download.
type Outcome int

const (
	// OutcomeSuccess means the file was fully written and verified.
	OutcomeSuccess Outcome = iota

	// OutcomeIntegrityFailure means the computed hash did not match the
	// hash declared by the server. The destination file is deleted.
	OutcomeIntegrityFailure

	// OutcomeTransientFailure means a probe or transport error occurred.
	// The attempt is eligible for retry.
	OutcomeTransientFailure

	// OutcomeCancelled means the caller cancelled the transfer.
	OutcomeCancelled
)

// String returns a human-readable outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeIntegrityFailure:
		return "integrity_failure"
	case OutcomeTransientFailure:
		return "transient_failure"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// TransferRequest identifies one download: a source URL and a local
// destination path. It is immutable for the lifetime of an attempt.
type TransferRequest struct {
	URL      string
	DestPath string
}

// ServerCapabilities is the result of a capability probe. It is produced
// once per attempt and read-only afterward.
type ServerCapabilities struct {
	// StatusCode is the HTTP status of the probe response.
	StatusCode int

	// ContentLength is the declared size in bytes, or -1 when the server
	// did not declare one.
	ContentLength int64

	// AcceptsRanges is true when the server advertises byte-range support.
	AcceptsRanges bool

	// ContentMD5 is the declared MD5 digest of the content, or nil when
	// the server did not declare one.
	ContentMD5 []byte
}

// ByteRange is an inclusive byte span of the remote resource.
type ByteRange struct {
	Start int64
	End   int64
}

// Length returns the number of bytes covered by the range.
func (r ByteRange) Length() int64 {
	return r.End - r.Start + 1
}

// SplitRanges divides total bytes into consecutive ranges of at most
// chunkSize bytes each. The final range is clipped to total-1. Returns
// nil when total or chunkSize is not positive.
func SplitRanges(total, chunkSize int64) []ByteRange {
	if total <= 0 || chunkSize <= 0 {
		return nil
	}

	n := (total + chunkSize - 1) / chunkSize
	ranges := make([]ByteRange, 0, n)
	for start := int64(0); start < total; start += chunkSize {
		end := start + chunkSize - 1
		if end > total-1 {
			end = total - 1
		}
		ranges = append(ranges, ByteRange{Start: start, End: end})
	}
	return ranges
}

// TransferProgress is a snapshot of transfer state, emitted after every
// buffer write. Transferred is monotonically non-decreasing within one
// attempt.
type TransferProgress struct {
	// Total is the declared content length, or -1 when unknown.
	Total int64

	// Transferred is the number of bytes written so far.
	Transferred int64

	// Note is an optional status annotation.
	Note string
}

// Percent returns completion as a fraction in [0,1]. The second return
// is false when the total is unknown or zero.
func (p TransferProgress) Percent() (float64, bool) {
	if p.Total <= 0 {
		return 0, false
	}
	return float64(p.Transferred) / float64(p.Total), true
}

// TransferResult is the terminal value of a download, covering all
// attempts made by the retry orchestrator.
type TransferResult struct {
	Outcome      Outcome
	BytesWritten int64
	Attempts     int
	Err          error
}

// HistoryEntry records one finished download for the audit log.
type HistoryEntry struct {
	ID           int64
	URL          string
	DestPath     string
	Outcome      string
	BytesWritten int64
	Attempts     int
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}
