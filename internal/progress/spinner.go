package progress

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
)

// Display reports the steps of a merge. On a terminal it animates a spinner;
// otherwise it prints one line per finished step.
type Display struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols

	mu      sync.Mutex
	spinner *spinner.Spinner
	step    string
}

// NewDisplay creates a Display writing to out.
func NewDisplay(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		out:     out,
		caps:    caps,
		symbols: SelectSymbols(caps),
	}
}

// Start begins a step. A running step is stopped silently first.
func (d *Display) Start(step string) {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	d.step = step
	if !d.caps.IsTTY {
		return
	}

	d.spinner = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(d.out))
	d.spinner.Suffix = " " + step
	d.spinner.Start()
}

// Done marks the current step as finished, with an optional detail.
func (d *Display) Done(detail string) {
	if d == nil {
		return
	}
	d.finish(d.symbols.Checkmark, color.FgGreen, detail)
}

// Fail marks the current step as failed.
func (d *Display) Fail(err error) {
	if d == nil {
		return
	}
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	d.finish(d.symbols.Failure, color.FgRed, detail)
}

// Stop stops the spinner without printing a status line.
func (d *Display) Stop() {
	if d == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.step = ""
}

func (d *Display) finish(symbol string, attr color.Attribute, detail string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopLocked()
	if d.step == "" {
		return
	}

	if d.caps.SupportsColor {
		symbol = color.New(attr).Sprint(symbol)
	}
	line := fmt.Sprintf("%s %s", symbol, d.step)
	if detail != "" {
		line += " (" + detail + ")"
	}
	fmt.Fprintln(d.out, line)
	d.step = ""
}

func (d *Display) stopLocked() {
	if d.spinner != nil {
		d.spinner.Stop()
		d.spinner = nil
	}
}
