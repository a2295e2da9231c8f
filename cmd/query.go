package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
	"github.com/jmurray2011/sumoknife/internal/logging"
	"github.com/jmurray2011/sumoknife/internal/output"
	"github.com/jmurray2011/sumoknife/internal/sumo"
	"github.com/jmurray2011/sumoknife/internal/ui"
	"github.com/jmurray2011/sumoknife/pkg/timeutil"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// defaultWindow is searched when neither bounds nor a window are given.
const defaultWindow = "Last 15 Minutes"

var (
	startTime    string
	endTime      string
	windowName   string
	queryString  string
	savedQuery   string
	wantMessages bool
	wantRecords  bool
	pageNumber   int
)

var queryCmd = &cobra.Command{
	Use:   "query [FILE|-]",
	Short: "Run a search job and print its results",
	Long: `Submit a search job, follow it to completion and print one page of
its results in the results format.

The query comes from -q, from a file, from stdin ("-") or from a saved
personal folder query (--saved). The search window is either a named
window (-w, see 'sumoknife windows') or explicit bounds (-s/-e), which
accept RFC3339, wall clock times in the configured timezone, and relative
times (2h, 30m, 7d).

Aggregate queries print records and anything else prints messages, unless
--messages or --records says otherwise. Results come in pages of 250.

Examples:
  # Count errors by host over the last hour
  sumoknife query -q '_sourceCategory=prod/web error | count by _sourceHost' -w "Last 60 Minutes"

  # Read the query from a file and print page 3 of the messages
  sumoknife query search.sumo -s 2h --messages --page 3

  # Run a saved query as CSV
  sumoknife query --saved "Slow Requests" -w today -o csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().StringVarP(&queryString, "query", "q", "", "Query text")
	queryCmd.Flags().StringVar(&savedQuery, "saved", "", "Run the personal folder query with this name")
	queryCmd.Flags().StringVarP(&startTime, "since", "s", "", "Start time - RFC3339, wall clock or relative (e.g., 2h, 30m, 7d)")
	queryCmd.Flags().StringVarP(&endTime, "end", "e", "now", "End time - RFC3339, wall clock or relative")
	queryCmd.Flags().StringVarP(&windowName, "window", "w", "", "Named time window (default from the window setting)")
	addResultFlags(queryCmd)
}

// addResultFlags registers the flags choosing which page of results to print.
func addResultFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&wantMessages, "messages", false, "Print messages")
	cmd.Flags().BoolVar(&wantRecords, "records", false, "Print records")
	cmd.Flags().IntVar(&pageNumber, "page", 1, "Page of results to print")
	cmd.MarkFlagsMutuallyExclusive("messages", "records")
}

func runQuery(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	ctx := cmd.Context()

	format, err := app.ResultsFormat()
	if err != nil {
		return err
	}
	loc, err := app.Location()
	if err != nil {
		return err
	}

	conn, _, err := app.Activate(ctx, app.Config.Connection)
	if err != nil {
		return err
	}

	query, err := readQuery(cmd, args, conn.State().SavedQueries())
	if err != nil {
		return err
	}

	window, err := resolveRange(app.Now().In(loc))
	if err != nil {
		return err
	}
	app.Debugf("Time range: %s to %s", window.From.Format(time.RFC3339), window.To.Format(time.RFC3339))

	for _, warning := range timeutil.ValidateTimeRange(window.From, window.To) {
		if warning.Level == "warning" {
			app.Render.Warning("%s", warning.Message)
		} else {
			app.Render.Info("%s", warning.Message)
		}
	}

	f, err := app.Client(conn)
	if err != nil {
		return err
	}
	orch := app.Orchestrator(f)

	app.Render.Status("Searching %s on %s...", describeWindow(window), conn.Name)
	job, err := orch.Run(ctx, query, window.FromMillis(), window.ToMillis(), func(j *sumo.Job) {
		app.Render.Progress(fmt.Sprintf("Job %s", j.ID), j.Progress)
	})
	if err != nil {
		return err
	}
	conn.State().SetJob(job)

	entry := HistoryEntry{
		Timestamp:    app.Now(),
		Connection:   conn.Name,
		Query:        query,
		Window:       window.Name,
		From:         startTime,
		To:           endTime,
		JobID:        job.ID,
		MessageCount: job.MessageCount,
		RecordCount:  job.RecordCount,
	}
	if window.Name != "" {
		entry.From, entry.To = "", ""
	}
	if err := AddToHistory(entry); err != nil {
		logging.Warn("could not save history: %v", err)
	}

	return renderJob(ctx, app, orch, job, format, loc)
}

// readQuery returns the query text from --saved, -q, a file or stdin.
func readQuery(cmd *cobra.Command, args []string, saved map[string]string) (string, error) {
	var query string
	switch {
	case savedQuery != "":
		q, ok := saved[savedQuery]
		if !ok {
			return "", fmt.Errorf("no saved query named %q", savedQuery)
		}
		query = q
	case queryString != "":
		query = queryString
	case len(args) == 1 && args[0] == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("failed to read query from stdin: %w", err)
		}
		query = string(data)
	case len(args) == 1:
		data, err := os.ReadFile(args[0])
		if err != nil {
			return "", fmt.Errorf("failed to read query file: %w", err)
		}
		query = string(data)
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return "", skerrors.MissingFlagError("a query", "query text", []string{
			"sumoknife query -q '_sourceCategory=prod error | count'",
			"sumoknife query search.sumo",
			"echo 'error' | sumoknife query -",
			"sumoknife query --saved \"Slow Requests\"",
		})
	}
	return query, nil
}

// resolveRange turns -s/-e or the named window into a search window.
// Explicit bounds win over a window name.
func resolveRange(now time.Time) (timeutil.Window, error) {
	if startTime != "" {
		from, err := timeutil.ParseAt(startTime, now)
		if err != nil {
			return timeutil.Window{}, skerrors.InvalidTimeError(startTime)
		}
		to, err := timeutil.ParseAt(endTime, now)
		if err != nil {
			return timeutil.Window{}, skerrors.InvalidTimeError(endTime)
		}
		if !from.Before(to) {
			return timeutil.Window{}, fmt.Errorf("start time must be before end time")
		}
		return timeutil.Window{From: from, To: to}, nil
	}

	name := windowName
	if name == "" {
		name = viper.GetString("window")
	}
	if name == "" {
		name = defaultWindow
	}
	return timeutil.ResolveWindow(name, now)
}

func describeWindow(w timeutil.Window) string {
	if w.Name != "" {
		return strings.ToLower(w.Name)
	}
	return fmt.Sprintf("%s to %s", w.From.Format(timeutil.LocalLayout), w.To.Format(timeutil.LocalLayout))
}

// renderJob prints the status box of a finished job, the pages it offers
// and the selected page.
func renderJob(ctx context.Context, app *App, orch *sumo.Orchestrator, job *sumo.Job, format output.Format, loc *time.Location) error {
	app.Render.Job(jobSummary(job, loc))

	switch job.State {
	case sumo.JobErrored:
		return fmt.Errorf("search job %s failed: %s", job.ID, job.Err)
	case sumo.JobDone:
	default:
		return fmt.Errorf("search job %s still %s, results are paged once it is done", job.ID, strings.ToLower(job.ServiceState))
	}
	if !job.HasResults() {
		app.Render.NoResults()
		return nil
	}

	kind, total := resultKind(job)
	pages := sumo.Pages(total)
	if !app.Render.Quiet() && len(pages) > 1 {
		app.Render.Section("Pages")
		for _, p := range pages {
			app.Render.Info("  %s", p.Label(kind))
		}
		app.Render.Newline()
	}

	page, err := sumo.PageAt(total, pageNumber)
	if err != nil {
		return err
	}
	if page.Empty() {
		app.Render.NoResults()
		return nil
	}

	app.Render.Status("Fetching %s...", page.Label(kind))
	var rows []sumo.Row
	if kind == "Records" {
		rows, err = orch.Records(ctx, job.ID, page)
	} else {
		rows, err = orch.Messages(ctx, job.ID, page)
	}
	if err != nil {
		return err
	}

	f := output.NewFormatter(format, app.Render.Out(),
		output.WithRoot(strings.ToLower(kind)),
		output.WithOffset(int(page.Offset)),
		output.WithClock(app.Now),
	)
	if err := f.Rows(rows); err != nil {
		return err
	}
	if path := f.CSVPath(); path != "" {
		app.Render.Success("Wrote %s", path)
	}
	return nil
}

// resultKind picks messages or records from the flags, falling back to
// records when the job produced any.
func resultKind(job *sumo.Job) (string, int64) {
	switch {
	case wantMessages:
		return "Messages", job.MessageCount
	case wantRecords:
		return "Records", job.RecordCount
	case job.PreferRecords():
		return "Records", job.RecordCount
	default:
		return "Messages", job.MessageCount
	}
}

func jobSummary(job *sumo.Job, loc *time.Location) ui.JobSummary {
	s := ui.JobSummary{
		ID:       job.ID,
		State:    job.ServiceState,
		Messages: job.MessageCount,
		Records:  job.RecordCount,
		Progress: job.Progress,
		Warnings: strings.Join(job.PendingWarnings, " "),
		Errors:   strings.Join(job.PendingErrors, " "),
	}
	// Jobs looked up by id alone carry no window.
	if job.To > 0 {
		s.From = timeutil.FromMillis(job.From, loc)
		s.To = timeutil.FromMillis(job.To, loc)
	}
	return s
}
