package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/jmurray2011/sumoknife/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	historyClear bool
	historyRun   int
)

// HistoryEntry represents a single search in history.
type HistoryEntry struct {
	Timestamp    time.Time `json:"timestamp"`
	Connection   string    `json:"connection"`
	Query        string    `json:"query"`
	Window       string    `json:"window,omitempty"` // named window, when used
	From         string    `json:"from,omitempty"`   // -s as typed
	To           string    `json:"to,omitempty"`     // -e as typed
	JobID        string    `json:"job_id,omitempty"`
	MessageCount int64     `json:"message_count,omitempty"`
	RecordCount  int64     `json:"record_count,omitempty"`
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View search history",
	Long: `View and manage your search history.

Shows recent searches, allowing you to quickly re-run one. Relative
windows are resolved again when a search is re-run.

Examples:
  # List recent searches
  sumoknife history

  # Clear all history
  sumoknife history --clear

  # Re-run search #3 from history
  sumoknife history --run 3`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().BoolVar(&historyClear, "clear", false, "Clear search history")
	historyCmd.Flags().IntVar(&historyRun, "run", 0, "Re-run search by number")
	addResultFlags(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	historyFile, err := getHistoryFilePath()
	if err != nil {
		return err
	}

	if historyClear {
		if err := os.Remove(historyFile); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to clear history: %w", err)
		}
		app.Render.Success("History cleared")
		return nil
	}

	entries, err := loadHistory()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		app.Render.Info("No search history found.")
		return nil
	}

	if historyRun > 0 {
		if historyRun > len(entries) {
			return fmt.Errorf("search #%d not found (history has %d entries)", historyRun, len(entries))
		}
		entry := entries[historyRun-1]
		app.Render.Status("Re-running search from %s...", entry.Timestamp.Format("2006-01-02 15:04:05"))
		app.Render.Newline()

		applyHistoryEntry(app, entry)
		return runQuery(cmd, nil)
	}

	out := app.Render.Out()
	for i, entry := range entries {
		num := ui.LabelStyle.Render(fmt.Sprintf("[%d]", i+1))
		ts := ui.MutedStyle.Render(entry.Timestamp.Format("2006-01-02 15:04:05"))
		conn := ui.SuccessStyle.Render(entry.Connection)

		var resultInfo string
		if entry.RecordCount > 0 || entry.MessageCount > 0 {
			resultInfo = ui.MutedStyle.Render(fmt.Sprintf("(%d messages, %d records)", entry.MessageCount, entry.RecordCount))
		}

		fmt.Fprintf(out, "%s %s  %s  %s  %s  %s\n", num, ts, conn, describeEntryRange(entry),
			truncateString(oneLine(entry.Query), 50), resultInfo)
	}

	app.Render.Newline()
	app.Render.Info("Use 'sumoknife history --run N' to re-run a search")
	return nil
}

// applyHistoryEntry sets the query flags from a history entry.
func applyHistoryEntry(app *App, entry HistoryEntry) {
	queryString = entry.Query
	savedQuery = ""
	windowName = entry.Window
	startTime = entry.From
	endTime = entry.To
	if endTime == "" {
		endTime = "now"
	}
	if entry.Connection != "" {
		app.Config.Connection = entry.Connection
	}
}

func describeEntryRange(entry HistoryEntry) string {
	if entry.Window != "" {
		return "-w " + fmt.Sprintf("%q", entry.Window)
	}
	s := "-s " + entry.From
	if entry.To != "" && entry.To != "now" {
		s += " -e " + entry.To
	}
	return s
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func getHistoryFilePath() (string, error) {
	// Check config for custom history file path
	if historyFile := viper.GetString("history_file"); historyFile != "" {
		// Expand ~ if present
		if historyFile[0] == '~' {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			historyFile = filepath.Join(home, historyFile[1:])
		}
		return historyFile, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".sumoknife_history.json"), nil
}

// getMaxHistoryEntries returns the configured max history size (default 100)
func getMaxHistoryEntries() int {
	max := viper.GetInt("history_max")
	if max <= 0 {
		return 100
	}
	return max
}

func loadHistory() ([]HistoryEntry, error) {
	historyPath, err := getHistoryFilePath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(historyPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}

	var entries []HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse history: %w", err)
	}

	return entries, nil
}

// AddToHistory prepends entry to the history file, dropping the oldest
// entries past history_max.
func AddToHistory(entry HistoryEntry) error {
	entries, err := loadHistory()
	if err != nil {
		entries = []HistoryEntry{}
	}

	entries = append([]HistoryEntry{entry}, entries...)

	maxEntries := getMaxHistoryEntries()
	if len(entries) > maxEntries {
		entries = entries[:maxEntries]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	historyPath, err := getHistoryFilePath()
	if err != nil {
		return err
	}
	return os.WriteFile(historyPath, data, 0600)
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
