package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/yerlanov/trackd/internal/clock"
	"github.com/yerlanov/trackd/internal/config"
	"github.com/yerlanov/trackd/internal/events"
	"github.com/yerlanov/trackd/internal/storage"
	"github.com/yerlanov/trackd/internal/tracker"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	cfgPath  string
	userFlag string
)

var rootCmd = &cobra.Command{
	Use:   "trackd",
	Short: "Track time against daily targets",
	Long: `trackd tracks time spent on named activities. Start and stop sessions
against a tracker, then report work debt or advance versus a daily target
over arbitrary or predefined date ranges.`,
	SilenceUsage: true,
}

// App bundles the wired services a command needs.
type App struct {
	Config   *config.Config
	Log      zerolog.Logger
	Trackers *tracker.Service
	Stats    *tracker.Stats

	store     *storage.Store
	publisher events.Publisher
}

// User is the user identifier commands scope to: the --user flag when set,
// otherwise the configured default.
func (a *App) User() string {
	if userFlag != "" {
		return userFlag
	}
	return a.Config.User.Name
}

// Close releases the publisher and the database.
func (a *App) Close() {
	if c, ok := a.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			a.Log.Warn().Err(err).Msg("failed to close publisher")
		}
	}
	if err := a.store.Close(); err != nil {
		a.Log.Warn().Err(err).Msg("failed to close database")
	}
}

// newApp loads config and wires storage, events, and services.
func newApp() (*App, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}

	log := setupLogger(cfg.Logging)

	store, err := storage.Open(cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	var pub events.Publisher = events.LogPublisher{Log: log}
	if cfg.Events.Enabled {
		rp, err := events.NewRedisPublisher(events.RedisOptions{
			Host:     cfg.Events.Redis.Host,
			Port:     cfg.Events.Redis.Port,
			Password: cfg.Events.Redis.Password,
			DB:       cfg.Events.Redis.DB,
			Channel:  cfg.Events.Channel,
		}, log)
		if err != nil {
			// Event delivery is best-effort; a dead broker must not take
			// the CLI down with it.
			log.Warn().Err(err).Msg("redis unreachable, event publishing disabled")
		} else {
			pub = rp
		}
	}

	clk := clock.RealClock{}
	return &App{
		Config:    cfg,
		Log:       log,
		Trackers:  tracker.NewService(store, clk, pub, log),
		Stats:     tracker.NewStats(store, clk),
		store:     store,
		publisher: pub,
	}, nil
}

// withApp wraps a command body with app construction and teardown.
func withApp(fn func(app *App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}
		defer app.Close()
		return fn(app, cmd, args)
	}
}

// setupLogger builds the zerolog logger from config.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Format == "console" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}

// parseTrackerID parses a tracker ID argument.
func parseTrackerID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid tracker ID %q", arg)
	}
	return uint(id), nil
}

// friendly rewrites taxonomy errors into user-facing messages.
func friendly(err error) error {
	switch {
	case errors.Is(err, tracker.ErrNotFound):
		return errors.New("tracker not found")
	case errors.Is(err, tracker.ErrNoActiveSession):
		return errors.New("no active session; start the tracker first")
	case errors.Is(err, tracker.ErrValidation):
		return err
	case errors.Is(err, tracker.ErrStorage):
		return fmt.Errorf("storage error: %v", err)
	}
	return err
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("trackd %s (commit %s, built %s)\n", version, commit, date)
	},
}

// SetVersion sets the version information.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&userFlag, "user", "", "User the command operates on (defaults to config)")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(archiveCmd)
	rootCmd.AddCommand(unarchiveCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(versionCmd)
}
