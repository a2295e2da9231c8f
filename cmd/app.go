package cmd

import (
	"context"
	"time"

	"github.com/jmurray2011/sumoknife/internal/connection"
	"github.com/jmurray2011/sumoknife/internal/logging"
	"github.com/jmurray2011/sumoknife/internal/metadata"
	"github.com/jmurray2011/sumoknife/internal/output"
	"github.com/jmurray2011/sumoknife/internal/sumo"
	"github.com/jmurray2011/sumoknife/internal/ui"
	"github.com/jmurray2011/sumoknife/pkg/timeutil"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// appContextKey is the context key for the App instance.
type appContextKey struct{}

// Config holds all configuration values that were previously global.
type Config struct {
	Connection   string
	OutputFormat string
	ConfigPath   string
	MetadataDir  string
	Timezone     string
	Timeout      time.Duration
	PollInterval time.Duration
	BatchDelay   time.Duration
	RateLimit    float64
	Verbose      bool
	NoColor      bool
	Quiet        bool
}

// App holds the application dependencies that can be injected for testing.
type App struct {
	Config Config
	Render *ui.Renderer
	Logger logging.Logger

	// Fetcher replaces the HTTP client when set (for tests).
	Fetcher sumo.Fetcher

	// Now is the clock used for time windows.
	Now func() time.Time
}

// NewApp creates a new App with default configuration from viper.
func NewApp() *App {
	cfg := Config{
		Connection:   getConnectionName(),
		OutputFormat: getOutputFormat(),
		ConfigPath:   configFilePath(),
		MetadataDir:  viper.GetString("metadata_dir"),
		Timezone:     viper.GetString("timezone"),
		Timeout:      durationSetting("timeout", sumo.DefaultTimeout),
		PollInterval: durationSetting("poll_interval", sumo.DefaultPollInterval),
		BatchDelay:   viper.GetDuration("batch_delay"),
		RateLimit:    viper.GetFloat64("rate_limit"),
		Verbose:      IsVerbose(),
		NoColor:      noColor,
		Quiet:        quiet,
	}
	return NewAppWithConfig(cfg, render, logging.Default())
}

// NewAppWithConfig creates a new App with the given configuration.
// This is primarily used for testing.
func NewAppWithConfig(cfg Config, renderer *ui.Renderer, logger logging.Logger) *App {
	if renderer == nil {
		renderer = ui.NewRenderer()
	}
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &App{
		Config: cfg,
		Render: renderer,
		Logger: logger,
		Now:    time.Now,
	}
}

// GetApp retrieves the App from the command context.
// If no App is set, it creates a new default one.
func GetApp(cmd *cobra.Command) *App {
	if ctx := cmd.Context(); ctx != nil {
		if app, ok := ctx.Value(appContextKey{}).(*App); ok {
			return app
		}
	}
	// Fallback: create default app (maintains backward compatibility)
	return NewApp()
}

// SetApp stores the App in the context for a command.
func SetApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appContextKey{}, app)
}

// Debugf prints a debug message if verbose mode is enabled.
func (a *App) Debugf(format string, args ...interface{}) {
	if a.Config.Verbose {
		a.Render.Debug(format, args...)
	}
}

// ResultsFormat returns the configured results format.
func (a *App) ResultsFormat() (output.Format, error) {
	return output.ParseFormat(a.Config.OutputFormat)
}

// Location returns the timezone time windows are computed in.
func (a *App) Location() (*time.Location, error) {
	return timeutil.LoadLocation(a.Config.Timezone)
}

// LoadConnections reads the saved connections.
func (a *App) LoadConnections() (*connection.Config, error) {
	return connection.LoadConfig(a.Config.ConfigPath)
}

// SaveConnections writes the saved connections back.
func (a *App) SaveConnections(cfg *connection.Config) error {
	return connection.SaveConfig(a.Config.ConfigPath, cfg)
}

// Connection resolves the named connection, or the selected one when
// name is empty.
func (a *App) Connection(name string) (*connection.Connection, error) {
	cfg, err := a.LoadConnections()
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = a.Config.Connection
	}
	return cfg.Resolve(name)
}

// Client returns the fetcher requests to conn go through.
func (a *App) Client(conn *connection.Connection) (sumo.Fetcher, error) {
	if a.Fetcher != nil {
		return a.Fetcher, nil
	}
	cc := conn.ClientConfig()
	cc.Timeout = a.Config.Timeout
	cc.RateLimit = a.Config.RateLimit
	cc.Logger = a.Logger.WithField("connection", conn.Name)
	client, err := sumo.NewClient(cc)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Cache returns the metadata cache of conn.
func (a *App) Cache(conn *connection.Connection) *metadata.Cache {
	return metadata.NewCache(a.Config.MetadataDir, conn.CacheKey())
}

// Engine returns a metadata engine for conn reading through f.
func (a *App) Engine(conn *connection.Connection, f sumo.Fetcher, opts ...metadata.Option) *metadata.Engine {
	base := []metadata.Option{
		metadata.WithCache(a.Cache(conn)),
		metadata.WithBatchDelay(a.Config.BatchDelay),
		metadata.WithExportInterval(a.Config.PollInterval),
		metadata.WithLogger(a.Logger.WithField("connection", conn.Name)),
	}
	return metadata.NewEngine(f, append(base, opts...)...)
}

// Orchestrator returns a job orchestrator reading through f.
func (a *App) Orchestrator(f sumo.Fetcher) *sumo.Orchestrator {
	return sumo.NewOrchestrator(f,
		sumo.WithPollInterval(a.Config.PollInterval),
		sumo.WithJobLogger(a.Logger),
	)
}

// Activate resolves a connection and loads its metadata.
func (a *App) Activate(ctx context.Context, name string, opts ...metadata.Option) (*connection.Connection, *metadata.Report, error) {
	conn, err := a.Connection(name)
	if err != nil {
		return nil, nil, err
	}
	f, err := a.Client(conn)
	if err != nil {
		return nil, nil, err
	}
	report, err := conn.Activate(ctx, a.Engine(conn, f, opts...))
	if err != nil {
		return conn, report, err
	}
	for _, res := range report.Failed() {
		a.Render.Warning("%s unavailable: %v", res.Kind.Title(), res.Err())
	}
	return conn, report, nil
}
