package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/jwalitptl/medconnect-api/internal/bootstrap"
	"github.com/jwalitptl/medconnect-api/internal/config"
	"github.com/jwalitptl/medconnect-api/internal/handler/health"
	prometheushandler "github.com/jwalitptl/medconnect-api/internal/handler/prometheus"
	"github.com/jwalitptl/medconnect-api/internal/worker"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
)

func main() {
	var configPath string
	cmd := &cobra.Command{
		Use:          "medconnect-worker",
		Short:        "Run the scheduled cleanup jobs",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "path to config file (default ./config.yaml)")

	if err := cmd.Execute(); err != nil {
		log.Fatal().Err(err).Msg("Worker failed")
	}
}

func run(path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	logr := logger.Setup(cfg.Log.Level, cfg.Log.Format).WithFields(map[string]interface{}{"service": "worker"})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repos, err := bootstrap.OpenRepositories(startCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer repos.Close(context.Background())

	rds, err := bootstrap.OpenRedis(startCtx, cfg.Redis, logr)
	if err != nil {
		return err
	}
	defer rds.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("medconnect_worker", registry)

	jobs, err := bootstrap.CleanupJobs(cfg.Jobs, repos, logr, m)
	if err != nil {
		return err
	}
	scheduler, err := bootstrap.Schedule(jobs, logr)
	if err != nil {
		return err
	}
	scheduler.Start()

	if rds.Client != nil {
		auditor := worker.NewEventAuditor(rds.Broker, logr)
		go func() {
			if err := auditor.Run(ctx); err != nil {
				logr.Error(err, "Event auditor stopped")
			}
		}()
	}

	checks := map[string]health.Pinger{"database": repos.Ping}
	if ping := rds.Ping(); ping != nil {
		checks["redis"] = ping
	}
	srv := healthServer(cfg.Server.WorkerHealthPort, checks, registry)
	go func() {
		logr.Info("Starting health server", "port", cfg.Server.WorkerHealthPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Error(err, "Health server failed")
			stop()
		}
	}()

	<-ctx.Done()
	logr.Info("Shutting down worker")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	scheduler.Stop(shutdownCtx)
	return srv.Shutdown(shutdownCtx)
}

func healthServer(port int, checks map[string]health.Pinger, gatherer prometheus.Gatherer) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	health.NewHandler(checks).RegisterRoutes(engine)
	engine.GET("/metrics", prometheushandler.New(gatherer).Handler())

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
