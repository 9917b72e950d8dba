package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httpapi "github.com/i474232898/weather-extractor/internal/api/http"
	"github.com/i474232898/weather-extractor/internal/config"
	"github.com/i474232898/weather-extractor/internal/logging"
	"github.com/i474232898/weather-extractor/internal/scheduler"
	"github.com/i474232898/weather-extractor/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API and run scheduled extractions",
	Long: `Start the HTTP API. When a job file is given with --config or the
EXTRACTION_CONFIG environment variable, the job is also run every
FETCH_INTERVAL over a rolling window of recent days.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("port", "", "listen port (default: PORT or 8080)")
}

func runServe(cmd *cobra.Command, args []string) error {
	log, err := logging.New(appCfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	svc := newService(appCfg, log)

	// In-memory run history with configured retention.
	runs := store.NewMemoryStore(appCfg.StoreMaxHistory, appCfg.StoreMaxAge)

	jobFile := cfgFile
	if jobFile == "" {
		jobFile = appCfg.ExtractionConfig
	}
	var job *config.Job
	if jobFile != "" {
		if job, err = config.LoadJob(jobFile); err != nil {
			return err
		}
	}

	sched := scheduler.New(job, appCfg.FetchInterval, svc, runs, log)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}
	defer sched.Stop()

	app := httpapi.NewApp("weather-extractor")
	app.Use(fiberlogger.New())
	app.Use(recover.New())
	httpapi.RegisterRoutes(app, svc, runs)

	port, _ := cmd.Flags().GetString("port")
	if port == "" {
		port = appCfg.Port
	}

	go func() {
		log.Info("http server listening", zap.String("port", port))
		if err := app.Listen(":" + port); err != nil {
			log.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error("error during shutdown", zap.Error(err))
	}
	return nil
}
