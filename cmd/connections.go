package cmd

import (
	"fmt"
	"strings"

	"github.com/jmurray2011/sumoknife/internal/connection"
	"github.com/jmurray2011/sumoknife/internal/logging"

	"github.com/spf13/cobra"
)

var (
	addAccessID  string
	addAccessKey string
	addEndpoint  string
	addAsDefault bool
)

var connectionsCmd = &cobra.Command{
	Use:     "connections",
	Aliases: []string{"conns"},
	Short:   "List saved connections",
	Long: `List the connections saved in the config file.

Examples:
  # List connections
  sumoknife connections

  # Save a connection and make it the default
  sumoknife connections add prod --access-id ID --access-key KEY --endpoint api.us2.sumologic.com --default

  # Remove a connection
  sumoknife connections remove staging`,
	Args: cobra.NoArgs,
	RunE: runConnections,
}

var connectionsAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Save a connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionsAdd,
}

var connectionsRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Remove a saved connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionsRemove,
}

var connectionsDefaultCmd = &cobra.Command{
	Use:   "default NAME",
	Short: "Set the default connection",
	Args:  cobra.ExactArgs(1),
	RunE:  runConnectionsDefault,
}

func init() {
	rootCmd.AddCommand(connectionsCmd)
	connectionsCmd.AddCommand(connectionsAddCmd, connectionsRemoveCmd, connectionsDefaultCmd)

	connectionsAddCmd.Flags().StringVar(&addAccessID, "access-id", "", "Access ID")
	connectionsAddCmd.Flags().StringVar(&addAccessKey, "access-key", "", "Access key")
	connectionsAddCmd.Flags().StringVar(&addEndpoint, "endpoint", "", "API endpoint host, e.g. api.us2.sumologic.com")
	connectionsAddCmd.Flags().BoolVar(&addAsDefault, "default", false, "Make this the default connection")
	_ = connectionsAddCmd.MarkFlagRequired("access-id")
	_ = connectionsAddCmd.MarkFlagRequired("access-key")
	_ = connectionsAddCmd.MarkFlagRequired("endpoint")
}

func runConnections(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	cfg, err := app.LoadConnections()
	if err != nil {
		return err
	}

	names := cfg.Names()
	if len(names) == 0 {
		app.Render.Info("No connections saved.")
		app.Render.Info("Use 'sumoknife connections add NAME --access-id ID --access-key KEY --endpoint HOST' to add one.")
		return nil
	}

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		c := cfg.Connections[name]
		marker := ""
		if name == cfg.DefaultConnection {
			marker = "*"
		}
		rows = append(rows, []string{marker, name, c.BaseURL(), c.AccessID, c.Masked()})
	}
	app.Render.Table([]string{"", "Name", "Endpoint", "Access ID", "Access Key"}, rows)
	return nil
}

func runConnectionsAdd(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	cfg, err := app.LoadConnections()
	if err != nil {
		return err
	}

	conn := &connection.Connection{
		Name:      args[0],
		AccessID:  addAccessID,
		AccessKey: addAccessKey,
		Endpoint:  strings.TrimRight(addEndpoint, "/"),
	}
	if err := cfg.Add(conn); err != nil {
		return err
	}
	if addAsDefault || cfg.DefaultConnection == "" {
		cfg.DefaultConnection = conn.Name
	}
	if err := app.SaveConnections(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	app.Render.Success("Saved connection %s (%s)", conn.Name, conn.BaseURL())
	return nil
}

func runConnectionsRemove(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	cfg, err := app.LoadConnections()
	if err != nil {
		return err
	}
	conn, ok := cfg.Connections[args[0]]
	if err := cfg.Remove(args[0]); err != nil {
		return err
	}
	if err := app.SaveConnections(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	if ok {
		if err := app.Cache(conn).Clear(); err != nil {
			logging.Error("removing metadata of %s: %v", conn.Name, err)
		} else {
			logging.Info("removed metadata cache %s", app.Cache(conn).Dir())
		}
	}

	app.Render.Success("Removed connection %s", args[0])
	return nil
}

func runConnectionsDefault(cmd *cobra.Command, args []string) error {
	app := GetApp(cmd)
	cfg, err := app.LoadConnections()
	if err != nil {
		return err
	}
	if _, err := cfg.Resolve(args[0]); err != nil {
		return err
	}
	cfg.DefaultConnection = args[0]
	if err := app.SaveConnections(cfg); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	app.Render.Success("Default connection is now %s", args[0])
	return nil
}
