package cmd

import (
	"github.com/jmurray2011/sumoknife/internal/output"
	"github.com/jmurray2011/sumoknife/pkg/timeutil"

	"github.com/spf13/cobra"
)

var formatsCmd = &cobra.Command{
	Use:   "formats",
	Short: "List results formats",
	Long: `List the formats results can be printed in. Use one with -o or the
results_format setting.`,
	Args: cobra.NoArgs,
	RunE: runFormats,
}

var windowsCmd = &cobra.Command{
	Use:   "windows",
	Short: "List named time windows",
	Long: `List the named time windows accepted by 'sumoknife query -w', with
the bounds each resolves to right now in the configured timezone.`,
	Args: cobra.NoArgs,
	RunE: runWindows,
}

func init() {
	rootCmd.AddCommand(formatsCmd, windowsCmd)
}

func runFormats(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	current, err := app.ResultsFormat()
	if err != nil {
		current = output.DefaultFormat
	}

	rows := make([][]string, 0, len(output.Formats()))
	for _, f := range output.Formats() {
		marker := ""
		if f == current {
			marker = "*"
		}
		rows = append(rows, []string{marker, string(f)})
	}
	app.Render.Table([]string{"", "Format"}, rows)
	return nil
}

func runWindows(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	loc, err := app.Location()
	if err != nil {
		return err
	}
	now := app.Now().In(loc)

	names := timeutil.WindowNames()
	rows := make([][]string, 0, len(names))
	for _, name := range names {
		w, err := timeutil.ResolveWindow(name, now)
		if err != nil {
			return err
		}
		rows = append(rows, []string{w.Name, w.From.Format(timeutil.LocalLayout), w.To.Format(timeutil.LocalLayout)})
	}
	app.Render.Table([]string{"Window", "From", "To"}, rows)
	return nil
}
