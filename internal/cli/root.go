// Package cli contains the weather-extractor commands.
package cli

import (
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/i474232898/weather-extractor/internal/config"
	"github.com/i474232898/weather-extractor/internal/logging"
	"github.com/i474232898/weather-extractor/internal/weather"
	"github.com/i474232898/weather-extractor/internal/weather/providers"
)

var (
	cfgFile string
	verbose bool
	noColor bool
	appCfg  *config.AppConfig
	logger  *zap.Logger
	version = "dev"
)

var rootCmd = &cobra.Command{
	Use:   "weather-extractor",
	Short: "Historical weather extraction from the Open-Meteo archive",
	Long: `weather-extractor downloads hourly historical weather for a location,
one request per enabled variable group, merges the groups on their
timestamps and optionally resamples to daily or monthly statistics.

Example usage:
  weather-extractor extract --config job.json          # Run a job file
  weather-extractor extract --config job.json --daily  # Also write a daily summary
  weather-extractor groups                             # List variable groups
  weather-extractor serve                              # HTTP API and scheduled runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string reported by the CLI.
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "extraction job file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
}

// initConfig loads environment settings and the console logger.
func initConfig() error {
	var err error
	logger, err = logging.NewConsole(verbose)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	zap.ReplaceGlobals(logger)

	appCfg, err = config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger.Debug("configuration loaded",
		zap.String("archive_url", appCfg.ArchiveURL),
		zap.Int("max_concurrent_requests", appCfg.MaxConcurrentRequests),
		zap.Float64("requests_per_second", appCfg.RequestsPerSecond))
	return nil
}

// newService wires the archive fetcher into a pipeline service.
func newService(cfg *config.AppConfig, log *zap.Logger) *weather.Service {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	archive := providers.NewOpenMeteoArchive(httpClient, providers.ArchiveOptions{
		BaseURL:           cfg.ArchiveURL,
		Backoff:           providers.BackoffConfig{MaxRetries: cfg.MaxRetries},
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            log,
	})
	return weather.NewService(weather.DefaultCatalog(), archive,
		weather.WithConcurrency(cfg.MaxConcurrentRequests),
		weather.WithLogger(log))
}
