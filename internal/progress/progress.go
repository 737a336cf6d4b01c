// Package progress wraps progressbar's spinner mode for the scan engine and
// the discovery engine: neither walking a directory tree nor probing a
// subnet knows its total item count up front (a tree's size isn't known
// until it's fully walked; an address space's peer count isn't known until
// every probe has resolved), so unlike the teacher's dedupe pipeline —
// which sizes a determinate bar once a scan phase's file count is known —
// the only mode this domain ever needs is an indeterminate spinner whose
// description is taken from the caller's counters. The scan and discovery
// engines set that description once, when the spinner starts, and print the
// final counter values through Finish; the description is not refreshed
// while the work runs.
package progress

import (
	"fmt"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
)

const updateInterval = 50 * time.Millisecond

// Bar wraps a spinner-mode progressbar with enabled/disabled handling.
// All methods are no-ops when disabled.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a spinner-mode progress indicator.
// If enabled=false, returns a Bar where all methods are no-ops.
func New(enabled bool) *Bar {
	if !enabled {
		return &Bar{}
	}

	return &Bar{bar: progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionThrottle(updateInterval),
		progressbar.OptionClearOnFinish(),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetElapsedTime(false),
	)}
}

// Describe sets the spinner's description to s's current String() value,
// typically a dirs/files/peers counter summary.
func (b *Bar) Describe(s fmt.Stringer) {
	if b.bar != nil {
		b.bar.Describe(s.String())
	}
}

// Finish stops the spinner and prints a final summary line.
func (b *Bar) Finish(s fmt.Stringer) {
	if b.bar != nil {
		_ = b.bar.Finish()
		fmt.Fprintln(os.Stderr, "✔ "+s.String())
	}
}
