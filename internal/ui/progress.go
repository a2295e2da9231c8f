package ui

import (
	"fmt"
	"strings"
)

// DefaultBarWidth is the number of cells in a progress bar.
const DefaultBarWidth = 30

// ProgressBar draws "[#####-----]  50%" for percent in [0, 100].
func (r *Renderer) ProgressBar(percent, width int) string {
	percent = max(0, min(percent, 100))
	if width <= 0 {
		width = DefaultBarWidth
	}
	full := percent * width / 100

	filled := strings.Repeat("█", full)
	empty := strings.Repeat("░", width-full)
	if r.noColor {
		filled = strings.Repeat("#", full)
		empty = strings.Repeat("-", width-full)
	}
	return fmt.Sprintf("[%s%s] %3d%%",
		r.render(ProgressFullStyle, filled),
		r.render(ProgressEmptyStyle, empty),
		percent)
}

// Progress prints a progress line for a running job (suppressed in
// quiet mode).
func (r *Renderer) Progress(label string, percent int) {
	if r.quiet {
		return
	}
	fmt.Fprintf(r.err, "%s %s\n", r.render(StatusStyle, label), r.ProgressBar(percent, DefaultBarWidth))
}
