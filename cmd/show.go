package cmd

import (
	"fmt"
	"strings"

	skerrors "github.com/jmurray2011/sumoknife/internal/errors"
	"github.com/jmurray2011/sumoknife/internal/metadata"
	"github.com/jmurray2011/sumoknife/internal/output"
	"github.com/jmurray2011/sumoknife/internal/sumo"

	"github.com/spf13/cobra"
)

var (
	showExpressions bool
	showQueries     bool
)

// showKinds are the listings show accepts. Sources are read out of the
// collectors collection.
var showKinds = []string{"collectors", "sources", "users", "roles", "fers", "partitions", "views", "queries"}

var showCmd = &cobra.Command{
	Use:   "show KIND [NAME]",
	Short: "List account metadata",
	Long: `List the metadata of the active connection in the results format.

Kinds: collectors, sources, users, roles, fers, partitions, views, queries

Examples:
  # All collectors as a grid
  sumoknife show collectors

  # One field extraction rule as a query
  sumoknife show fers "Apache Access" --expressions

  # Scheduled view queries
  sumoknife show views --queries`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: showKinds,
	RunE:      runShow,
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showExpressions, "expressions", false, "Print field extraction rules as queries")
	showCmd.Flags().BoolVar(&showQueries, "queries", false, "Print scheduled view queries")
}

func runShow(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	kind := strings.ToLower(args[0])
	if !validShowKind(kind) {
		return skerrors.UnknownKindError(kind, showKinds)
	}

	format, err := app.ResultsFormat()
	if err != nil {
		return err
	}

	conn, _, err := app.Activate(cmd.Context(), app.Config.Connection)
	if err != nil {
		return err
	}
	state := conn.State()

	rows, nameKey := showRows(state, kind)
	if len(args) > 1 {
		row, ok := metadata.FindByName(rows, nameKey, args[1])
		if !ok {
			return fmt.Errorf("no %s named %q", strings.TrimSuffix(kind, "s"), args[1])
		}
		rows = []sumo.Row{row}
	}

	switch {
	case showExpressions && kind == "fers":
		printPipelines(app, rows, "name", metadata.FERExpression)
		return nil
	case showQueries && kind == "views":
		printPipelines(app, rows, "indexName", metadata.ViewQuery)
		return nil
	}

	if len(rows) == 0 {
		app.Render.NoResults()
		return nil
	}

	f := output.NewFormatter(format, app.Render.Out(), output.WithRoot(kind))
	if err := f.Rows(rows); err != nil {
		return err
	}
	if path := f.CSVPath(); path != "" {
		app.Render.Success("Wrote %s", path)
	}
	return nil
}

func validShowKind(kind string) bool {
	for _, k := range showKinds {
		if k == kind {
			return true
		}
	}
	return false
}

// showRows returns the rows listed for kind and the key rows are named by.
func showRows(state *metadata.State, kind string) ([]sumo.Row, string) {
	switch kind {
	case "collectors":
		return state.Collectors(), "name"
	case "sources":
		return state.Sources(), "name"
	case "users":
		return state.Users(), "email"
	case "views":
		return state.Rows(metadata.KindViews), "indexName"
	default:
		return state.Rows(metadata.Kind(kind)), "name"
	}
}

func printPipelines(app *App, rows []sumo.Row, nameKey string, lines func(sumo.Row) []string) {
	out := app.Render.Out()
	for _, row := range rows {
		app.Render.Section(sumo.AsString(row[nameKey]))
		for _, line := range lines(row) {
			fmt.Fprintln(out, line)
		}
		app.Render.Divider()
	}
}
