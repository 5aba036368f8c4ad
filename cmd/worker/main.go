package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-triage/internal/config"
	"github.com/jwalitptl/clinic-triage/internal/handler"
	promhandler "github.com/jwalitptl/clinic-triage/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-triage/internal/middleware"
	"github.com/jwalitptl/clinic-triage/internal/service/notification"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/messaging"
	"github.com/jwalitptl/clinic-triage/pkg/metrics"
)

// setupHealthCheck serves liveness, readiness and metrics for the worker.
func setupHealthCheck(port int, reg *prometheus.Registry, namespace string, appLogger *logger.Logger) *http.Server {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(middleware.Recovery())

	handler.NewHandler(nil).RegisterRoutes(engine.Group(""))
	engine.GET("/metrics", promhandler.New(reg, namespace+"_worker").Handler())

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: engine,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Error(err, "health check server failed")
			os.Exit(1)
		}
	}()
	return srv
}

func main() {
	// Load config
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	appLogger := logger.NewLogger(cfg.Log.ToLoggerConfig()).WithFields(map[string]interface{}{
		"component": "notifier",
	})
	log.Logger = *appLogger.Zerolog()

	if cfg.Broker.Driver == messaging.DriverMemory {
		appLogger.Warn("memory broker does not cross process boundaries; the worker will only see its own messages")
	}

	broker, err := messaging.NewBroker(cfg.Broker.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		appLogger.Fatal(err, "failed to create message broker", "driver", cfg.Broker.Driver)
	}
	defer broker.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, "worker", reg)

	notifier := notification.NewService(cfg.Email.ToNotificationConfig(), nil, appLogger, m)

	srv := setupHealthCheck(cfg.Worker.HealthPort, reg, cfg.Monitoring.Namespace, appLogger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("shutting down...")
		cancel()
	}()

	appLogger.Info("worker started", "channel", cfg.Broker.Channel, "email_enabled", cfg.Email.Enabled)
	if err := messaging.Consume(ctx, broker, cfg.Broker.Channel, notifier.HandleEvent, appLogger); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error(err, "consumer stopped")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
}
