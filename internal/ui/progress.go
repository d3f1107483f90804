package ui

import (
	"os"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/vertextoedge/httpfetch/internal/domain"
	"github.com/vertextoedge/httpfetch/internal/port"
)

// ProgressBar renders transfer progress on stderr. The bar is created
// lazily on the first snapshot, when the total (possibly unknown) is
// first known; a fresh attempt after a retry resets it.
type ProgressBar struct {
	bar         *progressbar.ProgressBar
	description string
	lastSeen    int64
}

// NewProgressBar creates a progress bar with the given description
func NewProgressBar(description string) *ProgressBar {
	return &ProgressBar{description: description}
}

// Sink returns a port.ProgressSink feeding this bar.
func (p *ProgressBar) Sink() port.ProgressSink {
	return func(prog domain.TransferProgress) {
		if p.bar == nil || prog.Transferred < p.lastSeen {
			// First snapshot, or a retried attempt restarting from zero.
			p.bar = newBar(p.description, prog.Total)
		}
		p.lastSeen = prog.Transferred
		_ = p.bar.Set64(prog.Transferred)
	}
}

// Finish completes the bar's rendering.
func (p *ProgressBar) Finish() {
	if p.bar == nil {
		return
	}
	_ = p.bar.Finish()
}

func newBar(description string, total int64) *progressbar.ProgressBar {
	// progressbar treats -1 as indeterminate and renders a spinner.
	return progressbar.NewOptions64(total,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(50),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetRenderBlankState(true),
	)
}
