package cmd

import (
	"fmt"

	"github.com/jmurray2011/sumoknife/internal/connection"
	"github.com/jmurray2011/sumoknife/internal/logging"
	"github.com/jmurray2011/sumoknife/internal/metadata"

	"github.com/spf13/cobra"
)

var (
	connectRefresh bool
	connectDefault bool
)

var connectCmd = &cobra.Command{
	Use:   "connect [NAME]",
	Short: "Activate a connection and load its metadata",
	Long: `Activate a connection: load collectors, sources, saved queries, field
extraction rules, partitions, scheduled views, roles and users, from the
local cache when present and from the API otherwise.

Examples:
  # Activate the default connection
  sumoknife connect

  # Reload everything from the API and make prod the default
  sumoknife connect prod --refresh --default`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConnect,
}

func init() {
	rootCmd.AddCommand(connectCmd)
	connectCmd.Flags().BoolVar(&connectRefresh, "refresh", false, "Ignore the metadata cache and reload from the API")
	connectCmd.Flags().BoolVar(&connectDefault, "default", false, "Make this the default connection")
}

func runConnect(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	name := ""
	if len(args) > 0 {
		name = args[0]
	}

	conn, err := app.Connection(name)
	if err != nil {
		return err
	}
	if connectRefresh {
		if err := app.Cache(conn).Clear(); err != nil {
			return err
		}
		logging.Debug("cleared metadata cache %s", app.Cache(conn).Dir())
	}

	app.Render.Status("Connecting to %s (%s)...", conn.Name, conn.BaseURL())
	done := 0
	_, report, err := app.Activate(cmd.Context(), conn.Name, metadata.WithResultHandler(func(res metadata.LoadResult) {
		done++
		app.Render.Progress(fmt.Sprintf("Loaded %s", res.Kind.Title()), done*100/len(metadata.Kinds))
	}))
	if err != nil {
		return fmt.Errorf("failed to activate %s: %w", conn.Name, err)
	}

	if connectDefault {
		if err := makeDefault(app, conn); err != nil {
			return err
		}
	}

	app.Render.Newline()
	renderReport(app, conn, report)
	for k, saveErr := range report.SaveErrors {
		logging.Warn("could not cache %s: %v", k.Title(), saveErr)
	}
	app.Render.Newline()
	app.Render.Success("%s is ready", conn.Name)
	return nil
}

func makeDefault(app *App, conn *connection.Connection) error {
	cfg, err := app.LoadConnections()
	if err != nil {
		return err
	}
	cfg.DefaultConnection = conn.Name
	return app.SaveConnections(cfg)
}

// renderReport prints the connection and one line per kind in load order.
func renderReport(app *App, conn *connection.Connection, report *metadata.Report) {
	app.Render.KeyValue("Connection", conn.Name)
	app.Render.KeyValue("Endpoint", conn.BaseURL())
	app.Render.Section("Metadata")
	for _, res := range report.Results {
		provenance := metadata.NotLoaded
		if res.Collection != nil {
			provenance = res.Collection.Provenance
		}
		app.Render.KeyValueIndent(res.Kind.Title(), fmt.Sprintf("%d (%s)", res.Collection.Len(), provenance), 1)
		if err := res.Err(); err != nil {
			app.Render.KeyValueIndent("Error", err.Error(), 2)
		}
	}
}
