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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/medconnect-api/internal/bootstrap"
	"github.com/jwalitptl/medconnect-api/internal/email"
	adminhandler "github.com/jwalitptl/medconnect-api/internal/handler/admin"
	appointmenthandler "github.com/jwalitptl/medconnect-api/internal/handler/appointment"
	authhandler "github.com/jwalitptl/medconnect-api/internal/handler/auth"
	chatbothandler "github.com/jwalitptl/medconnect-api/internal/handler/chatbot"
	contacthandler "github.com/jwalitptl/medconnect-api/internal/handler/contact"
	doctorhandler "github.com/jwalitptl/medconnect-api/internal/handler/doctor"
	"github.com/jwalitptl/medconnect-api/internal/handler/health"
	healthdatahandler "github.com/jwalitptl/medconnect-api/internal/handler/healthdata"
	paymenthandler "github.com/jwalitptl/medconnect-api/internal/handler/payment"
	prescriptionhandler "github.com/jwalitptl/medconnect-api/internal/handler/prescription"
	prometheushandler "github.com/jwalitptl/medconnect-api/internal/handler/prometheus"
	recordhandler "github.com/jwalitptl/medconnect-api/internal/handler/record"
	reminderhandler "github.com/jwalitptl/medconnect-api/internal/handler/reminder"
	"github.com/jwalitptl/medconnect-api/internal/middleware"
	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/router"
	adminservice "github.com/jwalitptl/medconnect-api/internal/service/admin"
	appointmentservice "github.com/jwalitptl/medconnect-api/internal/service/appointment"
	authservice "github.com/jwalitptl/medconnect-api/internal/service/auth"
	contactservice "github.com/jwalitptl/medconnect-api/internal/service/contact"
	doctorservice "github.com/jwalitptl/medconnect-api/internal/service/doctor"
	"github.com/jwalitptl/medconnect-api/internal/service/event"
	healthdataservice "github.com/jwalitptl/medconnect-api/internal/service/healthdata"
	patientservice "github.com/jwalitptl/medconnect-api/internal/service/patient"
	paymentservice "github.com/jwalitptl/medconnect-api/internal/service/payment"
	prescriptionservice "github.com/jwalitptl/medconnect-api/internal/service/prescription"
	recordservice "github.com/jwalitptl/medconnect-api/internal/service/record"
	reminderservice "github.com/jwalitptl/medconnect-api/internal/service/reminder"
	"github.com/jwalitptl/medconnect-api/internal/storage"
	"github.com/jwalitptl/medconnect-api/pkg/auth"
	"github.com/jwalitptl/medconnect-api/pkg/metrics"
	"github.com/jwalitptl/medconnect-api/pkg/security"
	"github.com/jwalitptl/medconnect-api/pkg/websocket"
)

const revocationSweep = 10 * time.Minute

func runServer(path string) error {
	cfg, log, err := load(path)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	repos, err := bootstrap.OpenRepositories(startCtx, cfg.Database)
	if err != nil {
		return err
	}
	defer repos.Close(context.Background())
	if err := repos.Migrate(startCtx); err != nil {
		return fmt.Errorf("failed to prepare storage: %w", err)
	}

	rds, err := bootstrap.OpenRedis(startCtx, cfg.Redis, log)
	if err != nil {
		return err
	}
	defer rds.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.NewMetrics("medconnect", registry)

	hub := websocket.NewHub()
	hub.OnCountChange = func(n int) { m.WebsocketClients.Set(float64(n)) }

	mailer := email.NewService(cfg.Email, log)
	events := event.NewEventService(rds.Broker, hub, mailer, m, log)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.TokenExpiry())
	revocations := auth.NewRevocationList(revocationSweep)
	store := storage.NewLocal(cfg.Uploads.Dir, cfg.Uploads.MaxFileSize)

	authSvc := authservice.NewService(authservice.Options{
		Repos:        repos,
		ResetCodes:   rds.ResetCodes,
		JWT:          jwtSvc,
		Revocations:  revocations,
		Passwords:    security.NewBcryptHasher(bcrypt.DefaultCost),
		Codes:        security.NewCodeHasher(cfg.SessionSecret),
		Mailer:       mailer,
		Logger:       log,
		DefaultSlots: cfg.DefaultSlots,
	})
	if cfg.Admin.Email != "" && cfg.Admin.Password != "" {
		if err := authSvc.EnsureAdmin(startCtx, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}
	}

	appointmentSvc := appointmentservice.NewService(repos, events, m, log)
	doctorSvc := doctorservice.NewService(repos, log)
	patientSvc := patientservice.NewService(repos.Patients, log)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc, revocations)
	authorize := func(ctx context.Context, who websocket.Identity, topic string) bool {
		return appointmentSvc.CanSubscribe(ctx, model.Actor{ID: who.UserID, Role: who.Role}, topic)
	}

	checks := map[string]health.Pinger{"database": repos.Ping}
	if ping := rds.Ping(); ping != nil {
		checks["redis"] = ping
	}

	r := router.NewRouter(authMiddleware, router.Handlers{
		Resources: []router.Handler{
			authhandler.NewHandler(authSvc, patientSvc, doctorSvc, store, log),
			doctorhandler.NewHandler(doctorSvc),
			adminhandler.NewHandler(adminservice.NewService(repos), doctorSvc, patientSvc, appointmentSvc),
			appointmenthandler.NewHandler(appointmentSvc),
			prescriptionhandler.NewHandler(prescriptionservice.NewService(repos, log)),
			paymenthandler.NewHandler(paymentservice.NewService(repos, appointmentSvc, log)),
			reminderhandler.NewHandler(reminderservice.NewService(repos.Reminders)),
			healthdatahandler.NewHandler(healthdataservice.NewService(repos.HealthData)),
			contacthandler.NewHandler(contactservice.NewService(repos.Contacts, mailer, log)),
			recordhandler.NewHandler(recordservice.NewService(repos.Records, store, log)),
		},
		Chatbot:   chatbothandler.NewHandler(),
		Health:    health.NewHandler(checks),
		Metrics:   prometheushandler.New(registry),
		Websocket: websocket.NewHandler(hub, cfg.AllowedOrigins(), authorize),
	}, m, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		AllowedOrigins:   cfg.AllowedOrigins(),
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		RequestTimeout:   cfg.RequestTimeout(),
		MaxUploadSize:    cfg.Uploads.MaxFileSize,
		UploadsDir:       cfg.Uploads.Dir,
	})
	r.Setup()

	if cfg.Jobs.Enabled {
		jobs, err := bootstrap.CleanupJobs(cfg.Jobs, repos, log, m)
		if err != nil {
			return err
		}
		scheduler, err := bootstrap.Schedule(jobs, log)
		if err != nil {
			return err
		}
		scheduler.Start()
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			scheduler.Stop(stopCtx)
		}()
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "driver", cfg.Database.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited")
	return nil
}
