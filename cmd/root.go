package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/jmurray2011/sumoknife/internal/connection"
	"github.com/jmurray2011/sumoknife/internal/logging"
	"github.com/jmurray2011/sumoknife/internal/metadata"
	"github.com/jmurray2011/sumoknife/internal/output"
	"github.com/jmurray2011/sumoknife/internal/sumo"
	"github.com/jmurray2011/sumoknife/internal/ui"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	connectionName string
	outputFormat   string
	cfgFile        string
	verbose        bool
	noColor        bool
	quiet          bool

	// render is the global renderer for all output
	render *ui.Renderer
)

var rootCmd = &cobra.Command{
	Use:   "sumoknife",
	Short: "Search and inspect a Sumo Logic account from the terminal",
	Long: `sumoknife - a pocket knife for Sumo Logic.

Submits search jobs, follows them to completion, pages through their
messages and records, and lists the collectors, sources, users, roles,
field extraction rules, partitions, scheduled views and saved queries of
an account.

Configuration:
  Connections live in ~/.sumoknife/config.yaml:

    connections:
      prod:
        access_id: suABCDEF
        access_key: ****
        endpoint: api.us2.sumologic.com
    default_connection: prod

    results_format: grid   # see 'sumoknife formats'
    timezone: UTC
    timeout: 15s
    poll_interval: 1s
    batch_delay: 600ms

Examples:
  # Save and activate a connection
  sumoknife connections add prod --access-id ID --access-key KEY --endpoint api.us2.sumologic.com
  sumoknife connect prod

  # Run a search over the last 15 minutes
  sumoknife query -q '_sourceCategory=prod/web error | count by _sourceHost' -w "Last 15 Minutes"

  # List users with their roles as JSON
  sumoknife show users -o json_pretty`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// One App per invocation, shared by commands that call each other.
		if ctx := cmd.Context(); ctx != nil && ctx.Value(appContextKey{}) == nil {
			cmd.SetContext(SetApp(ctx, NewApp()))
		}
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// SetVersion sets the version string for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

func init() {
	cobra.OnInitialize(initConfig, initRenderer, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sumoknife/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&connectionName, "connection", "c", "", "Connection to use (default: default_connection)")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "", "Results format (see 'sumoknife formats')")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output for debugging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "Suppress status messages")

	// Bind flags to viper
	_ = viper.BindPFlag("connection", rootCmd.PersistentFlags().Lookup("connection"))
	_ = viper.BindPFlag("results_format", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

// initRenderer initializes the global renderer with current settings.
func initRenderer() {
	render = ui.NewRendererWithOptions(
		ui.WithNoColor(noColor || os.Getenv("NO_COLOR") != ""),
		ui.WithQuiet(quiet),
	)
}

// initLogger sets the level of the default logger from --verbose or the
// log_level setting.
func initLogger() {
	level := logging.ParseLevel(viper.GetString("log_level"))
	if IsVerbose() {
		level = logging.LevelDebug
	}
	logging.Default().SetLevel(level)
}

// IsVerbose returns true if verbose mode is enabled
func IsVerbose() bool {
	return verbose || viper.GetBool("verbose")
}

// Debugf prints a debug message if verbose mode is enabled
func Debugf(format string, args ...interface{}) {
	if IsVerbose() {
		render.Debug(format, args...)
	}
}

// defaultHome returns the user's home directory, or "." when unknown.
func defaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func initConfig() {
	home := defaultHome()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(filepath.Join(home, ".sumoknife"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	// Environment variables
	viper.SetEnvPrefix("SUMOKNIFE")
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("results_format", string(output.DefaultFormat))
	viper.SetDefault("timeout", sumo.DefaultTimeout)
	viper.SetDefault("poll_interval", sumo.DefaultPollInterval)
	viper.SetDefault("batch_delay", metadata.DefaultBatchDelay)
	viper.SetDefault("rate_limit", 0)
	viper.SetDefault("history_max", 100)
	viper.SetDefault("metadata_dir", filepath.Join(home, ".sumoknife", "metadata"))
	viper.SetDefault("timezone", "UTC")
	viper.SetDefault("log_level", "info")
	viper.SetDefault("window", defaultWindow)
	// history_file defaults to ~/.sumoknife_history.json (handled in history.go)

	// Read config file (ignore if not found, warn on other errors)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: error reading config file: %v\n", err)
		}
	}
}

// configFilePath returns the config file connections are read from and
// saved to.
func configFilePath() string {
	if cfgFile != "" {
		return cfgFile
	}
	if used := viper.ConfigFileUsed(); used != "" {
		return used
	}
	if path := connection.ConfigPath(); path != "" {
		return path
	}
	return filepath.Join(".sumoknife", "config.yaml")
}

// getConnectionName returns the connection from flags or config.
func getConnectionName() string {
	if connectionName != "" {
		return connectionName
	}
	return viper.GetString("connection")
}

// getOutputFormat returns the results format from flags or config.
func getOutputFormat() string {
	if outputFormat != "" {
		return outputFormat
	}
	return viper.GetString("results_format")
}

// durationSetting reads a duration setting, falling back to def when it
// is unset or not positive.
func durationSetting(key string, def time.Duration) time.Duration {
	if d := viper.GetDuration(key); d > 0 {
		return d
	}
	return def
}
