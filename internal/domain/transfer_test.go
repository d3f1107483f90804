package domain

import (
	"testing"
)

func TestSplitRanges(t *testing.T) {
	tests := []struct {
		name      string
		total     int64
		chunkSize int64
		want      []ByteRange
	}{
		{
			name:      "single chunk exactly",
			total:     10,
			chunkSize: 10,
			want:      []ByteRange{{Start: 0, End: 9}},
		},
		{
			name:      "evenly divisible",
			total:     10,
			chunkSize: 5,
			want:      []ByteRange{{Start: 0, End: 4}, {Start: 5, End: 9}},
		},
		{
			name:      "last range clipped",
			total:     10,
			chunkSize: 4,
			want:      []ByteRange{{Start: 0, End: 3}, {Start: 4, End: 7}, {Start: 8, End: 9}},
		},
		{
			name:      "chunk larger than total",
			total:     3,
			chunkSize: 1024,
			want:      []ByteRange{{Start: 0, End: 2}},
		},
		{
			name:      "single byte",
			total:     1,
			chunkSize: 1,
			want:      []ByteRange{{Start: 0, End: 0}},
		},
		{
			name:      "zero total",
			total:     0,
			chunkSize: 4,
			want:      nil,
		},
		{
			name:      "negative total",
			total:     -1,
			chunkSize: 4,
			want:      nil,
		},
		{
			name:      "zero chunk size",
			total:     10,
			chunkSize: 0,
			want:      nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitRanges(tt.total, tt.chunkSize)
			if len(got) != len(tt.want) {
				t.Fatalf("SplitRanges() returned %d ranges, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("range %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSplitRanges_Coverage(t *testing.T) {
	// Ranges must be consecutive and cover exactly [0, total-1].
	const total, chunk = 1<<20 + 7, 4096

	ranges := SplitRanges(total, chunk)

	var next int64
	var covered int64
	for i, r := range ranges {
		if r.Start != next {
			t.Fatalf("range %d starts at %d, want %d", i, r.Start, next)
		}
		if r.End < r.Start {
			t.Fatalf("range %d is inverted: %+v", i, r)
		}
		covered += r.Length()
		next = r.End + 1
	}

	if covered != total {
		t.Errorf("ranges cover %d bytes, want %d", covered, total)
	}
	if last := ranges[len(ranges)-1]; last.End != total-1 {
		t.Errorf("last range ends at %d, want %d", last.End, total-1)
	}
}

func TestTransferProgress_Percent(t *testing.T) {
	tests := []struct {
		name        string
		progress    TransferProgress
		want        float64
		wantDefined bool
	}{
		{
			name:        "halfway",
			progress:    TransferProgress{Total: 100, Transferred: 50},
			want:        0.5,
			wantDefined: true,
		},
		{
			name:        "complete",
			progress:    TransferProgress{Total: 100, Transferred: 100},
			want:        1.0,
			wantDefined: true,
		},
		{
			name:        "nothing transferred",
			progress:    TransferProgress{Total: 100, Transferred: 0},
			want:        0,
			wantDefined: true,
		},
		{
			name:        "unknown total",
			progress:    TransferProgress{Total: -1, Transferred: 50},
			wantDefined: false,
		},
		{
			name:        "zero total",
			progress:    TransferProgress{Total: 0, Transferred: 0},
			wantDefined: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, defined := tt.progress.Percent()
			if defined != tt.wantDefined {
				t.Fatalf("Percent() defined = %v, want %v", defined, tt.wantDefined)
			}
			if defined && got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOutcome_String(t *testing.T) {
	tests := []struct {
		outcome Outcome
		want    string
	}{
		{OutcomeSuccess, "success"},
		{OutcomeIntegrityFailure, "integrity_failure"},
		{OutcomeTransientFailure, "transient_failure"},
		{OutcomeCancelled, "cancelled"},
		{Outcome(99), "unknown"},
	}

	for _, tt := range tests {
		if got := tt.outcome.String(); got != tt.want {
			t.Errorf("Outcome(%d).String() = %v, want %v", tt.outcome, got, tt.want)
		}
	}
}
