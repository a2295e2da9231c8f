package cmd

import (
	"github.com/jmurray2011/sumoknife/internal/metadata"

	"github.com/spf13/cobra"
)

var completeQuery string

var completeCmd = &cobra.Command{
	Use:   "complete FIELD [PREFIX]",
	Short: "Suggest values for a query field",
	Long: `Suggest completions from the metadata of the active connection.

FIELD is one of _collector, _sourceName, _sourceCategory, _index or _view;
any other field suggests metadata fields and query keywords. A one
character PREFIX matches the start of a value and a longer one matches
anywhere in it. With --query, the fields of extraction rules whose scope
appears in the query are suggested as well.

Examples:
  sumoknife complete _sourceCategory prod
  sumoknife complete fields s --query '_sourceCategory=prod/web'`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runComplete,
}

func init() {
	rootCmd.AddCommand(completeCmd)
	completeCmd.Flags().StringVar(&completeQuery, "query", "", "Query whose extraction rule fields are suggested")
}

func runComplete(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	prefix := ""
	if len(args) > 1 {
		prefix = args[1]
	}

	conn, _, err := app.Activate(cmd.Context(), app.Config.Connection)
	if err != nil {
		return err
	}
	idx := conn.State().Completion

	var candidates []metadata.Candidate
	if completeQuery != "" {
		candidates = append(candidates, idx.FieldsFor(completeQuery, prefix)...)
	}
	candidates = append(candidates, idx.Lookup(args[0], prefix)...)

	if len(candidates) == 0 {
		app.Render.NoResults()
		return nil
	}
	rows := make([][]string, 0, len(candidates))
	for _, c := range candidates {
		rows = append(rows, []string{c.Value, c.Type})
	}
	app.Render.Table([]string{"Value", "Type"}, rows)
	return nil
}
