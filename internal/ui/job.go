package ui

import (
	"fmt"
	"strings"
	"time"
)

// JobSummary is what the status box of a search job shows.
type JobSummary struct {
	ID       string
	State    string
	From     time.Time
	To       time.Time
	Messages int64
	Records  int64
	Progress int
	Warnings string
	Errors   string
}

// summaryTimeLayout is how search windows are printed.
const summaryTimeLayout = "2006-01-02 15:04:05 MST"

// splitNotes breaks a pending warnings or errors string into sentences.
func splitNotes(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ". ") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// JobBox renders the status box of a search job.
func (r *Renderer) JobBox(s JobSummary) string {
	var b strings.Builder
	line := func(key, value string) {
		fmt.Fprintf(&b, "%s %s\n", r.render(LabelStyle, key+":"), value)
	}

	if s.ID != "" {
		line("Job", s.ID)
	}
	line("State", s.State)
	if !s.From.IsZero() {
		line("From", r.render(TimestampStyle, s.From.Format(summaryTimeLayout)))
		line("To", r.render(TimestampStyle, s.To.Format(summaryTimeLayout)))
	}
	line("Records #", fmt.Sprintf("%d", s.Records))
	line("Messages #", fmt.Sprintf("%d", s.Messages))
	line("Progress", r.ProgressBar(s.Progress, DefaultBarWidth))

	warnings := splitNotes(s.Warnings)
	errs := splitNotes(s.Errors)
	if len(warnings) > 0 {
		fmt.Fprintln(&b, r.render(WarningStyle, "Warnings:"))
		for _, w := range warnings {
			fmt.Fprintf(&b, "  - %s\n", w)
		}
	}
	if len(errs) > 0 {
		fmt.Fprintln(&b, r.render(ErrorStyle, "Errors:"))
		for _, e := range errs {
			fmt.Fprintf(&b, "  - %s\n", e)
		}
	}

	body := strings.TrimRight(b.String(), "\n")
	if r.noColor {
		return body
	}
	style := InfoBoxStyle
	switch {
	case len(errs) > 0:
		style = ErrorBoxStyle
	case len(warnings) > 0:
		style = WarningBoxStyle
	}
	return style.Render(body)
}

// Job prints the status box of a search job.
func (r *Renderer) Job(s JobSummary) {
	fmt.Fprintln(r.out, r.JobBox(s))
}
