package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mmcdole/curator/internal/adapter"
	"github.com/mmcdole/curator/internal/config"
	"github.com/mmcdole/curator/internal/curatorapi"
	"github.com/mmcdole/curator/internal/dashboard"
	"github.com/mmcdole/curator/internal/logging"
	"github.com/mmcdole/curator/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// rootOptions holds the persistent flags shared by every subcommand
type rootOptions struct {
	configPath string
	apiURL     string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "curator",
		Short: "Review console for torrents staged by the curator",
		Long: `curator - review torrent candidates staged by the curator backend.

Without a subcommand it opens the interactive dashboard. The other
subcommands talk to the same REST API for scripting.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd, opts)
		},
	}

	rootCmd.Version = Version

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default is ~/.config/curator/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&opts.apiURL, "api-url", "", "curator API base URL (overrides api.url)")

	rootCmd.AddCommand(newDashboardCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newActionCommand(opts, "approve"))
	rootCmd.AddCommand(newActionCommand(opts, "reject"))
	rootCmd.AddCommand(newOpenCommand(opts))
	rootCmd.AddCommand(newHealthCommand(opts))
	rootCmd.AddCommand(newHistoryCommand(opts))
	rootCmd.AddCommand(newInitCommand(opts))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// app bundles the services every subcommand builds from the configuration
type app struct {
	cfg       *config.Config
	viper     *viper.Viper
	logger    *slog.Logger
	logCloser io.Closer
	store     *store.DashboardStore
	client    *curatorapi.Client
}

// loadApp reads configuration, sets up logging and opens the local store
func loadApp(cmd *cobra.Command, opts *rootOptions) (*app, error) {
	v := viper.New()
	if flag := cmd.Root().PersistentFlags().Lookup("api-url"); flag != nil && flag.Changed {
		if err := v.BindPFlag("api.url", flag); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(v, opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger, closer, err := logging.SetupLogger(&cfg.Logging)
	if err != nil {
		// Fall back to null logger if file logging fails
		logger = logging.NullLogger()
		closer = nil
	}
	slog.SetDefault(logger)

	logger.Info("starting curator", "version", Version, "command", cmd.Name(), "api", cfg.API.URL)

	st, err := store.NewDashboardStore(cfg.Storage.Dir, cfg.API.URL)
	if err != nil {
		// Another console may hold the database lock; keep going without persistence
		logger.Warn("failed to open store, using memory only", "dir", cfg.Storage.Dir, "error", err)
		st, _ = store.NewDashboardStore("", "")
	}

	return &app{
		cfg:       cfg,
		viper:     v,
		logger:    logger,
		logCloser: closer,
		store:     st,
		client:    curatorapi.NewClient(cfg.API.URL, cfg.API.Timeout, logger),
	}, nil
}

// newController builds a controller that records history. Interactive
// controllers also restore and persist the dashboard preferences.
func (a *app) newController(interactive bool) *dashboard.Controller {
	opts := []dashboard.Option{dashboard.WithHistory(a.store)}

	if interactive {
		filter := a.cfg.DefaultStatus()
		if prefs, ok := a.store.LoadPreferences(); ok {
			filter = prefs.Filter
		}
		opts = append(opts,
			dashboard.WithPreferences(a.store),
			dashboard.WithFilter(filter),
		)
	}

	return dashboard.NewController(a.client, a.logger, opts...)
}

// launcher opens torrent links with the configured program
func (a *app) launcher() *adapter.Launcher {
	return adapter.NewLauncher(a.cfg.Dashboard.OpenCommand, a.cfg.Dashboard.OpenArgs, a.logger)
}

// autoRefresh reports whether the dashboard should start with the timer on
func (a *app) autoRefresh() bool {
	if prefs, ok := a.store.LoadPreferences(); ok {
		return prefs.AutoRefresh
	}
	return a.cfg.Dashboard.AutoRefresh
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		a.logger.Warn("failed to close store", "error", err)
	}
	a.logger.Info("shutting down")
	if a.logCloser != nil {
		a.logCloser.Close()
	}
}
