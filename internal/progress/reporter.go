package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"
)

// barWidth is the number of cells in the status bar. The percentage is
// rendered in the middle nine cells.
const barWidth = 50

// Options configures the progress reporter.
type Options struct {
	// Output is where to write the status line.
	// Default: os.Stdout
	Output io.Writer

	// UpdateInterval is how often to sample the counters.
	// Default: 1s
	UpdateInterval time.Duration
}

// Reporter renders a single overwritten status line from shared counters.
type Reporter struct {
	opts     Options
	counters *Counters
	done     chan struct{}
}

// NewReporter creates a reporter over counters.
func NewReporter(counters *Counters, opts Options) *Reporter {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.UpdateInterval == 0 {
		opts.UpdateInterval = time.Second
	}

	return &Reporter{
		opts:     opts,
		counters: counters,
		done:     make(chan struct{}),
	}
}

// Start begins the sampling loop on a background goroutine.
func (r *Reporter) Start() {
	go r.updateLoop()
}

// Wait blocks until the loop has rendered the final 100% line and exited.
// It must only be called after the worker pool has signalled completion,
// otherwise it never returns.
func (r *Reporter) Wait() {
	<-r.done
}

// updateLoop samples the counters once per interval until every task has
// reached a terminal state.
func (r *Reporter) updateLoop() {
	defer close(r.done)

	ticker := time.NewTicker(r.opts.UpdateInterval)
	defer ticker.Stop()

	last := time.Now()
	for range ticker.C {
		now := time.Now()
		elapsed := now.Sub(last).Seconds()
		last = now

		speed := float64(r.counters.DrainBytes()) / elapsed
		finished, total := r.counters.Snapshot()
		r.printProgress(finished, total, speed)

		if finished == total {
			return
		}
	}
}

// printProgress renders one status line in place.
func (r *Reporter) printProgress(finished, total int, speed float64) {
	fmt.Fprintf(r.opts.Output, "\r[%s] (%d/%d)[%s]  ",
		renderBar(finished, total, barWidth),
		finished,
		total,
		FormatSpeed(speed),
	)
}

// renderBar draws a width-cell bar whose filled fraction is finished/total,
// with the percentage embedded in the middle nine cells.
func renderBar(finished, total, width int) string {
	var fraction float64
	if total > 0 {
		fraction = float64(finished) / float64(total)
	}

	filled := int(math.Round(fraction * float64(width)))
	percent := fmt.Sprintf(" %6.2f%% ", fraction*100)
	half := (width - len(percent)) / 2

	switch {
	case filled < half:
		return strings.Repeat("#", filled) + strings.Repeat(" ", half-filled) +
			percent + strings.Repeat(" ", half)
	case filled > width-half:
		return strings.Repeat("#", half) + percent +
			strings.Repeat("#", filled-(width-half)) + strings.Repeat(" ", width-filled)
	default:
		return strings.Repeat("#", half) + percent + strings.Repeat(" ", half)
	}
}

// speedUnits are chosen by floor(log1024(speed)).
var speedUnits = []string{" B", "KB", "MB", "GB", "TB", "PB"}

// FormatSpeed formats a throughput in bytes per second with a human unit
// and two-decimal precision.
func FormatSpeed(speed float64) string {
	if speed <= 0 {
		return fmt.Sprintf("%8.2f /s", 0.0)
	}

	unit := int(math.Floor(math.Log(speed) / math.Log(1024)))
	if unit < 0 {
		unit = 0
	}
	if unit >= len(speedUnits) {
		unit = len(speedUnits) - 1
	}

	return fmt.Sprintf("%6.2f %s/s", speed/math.Pow(1024, float64(unit)), speedUnits[unit])
}
