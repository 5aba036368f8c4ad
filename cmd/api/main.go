package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/clinic-triage/internal/config"
	"github.com/jwalitptl/clinic-triage/internal/handler"
	promhandler "github.com/jwalitptl/clinic-triage/internal/handler/prometheus"
	triagehandler "github.com/jwalitptl/clinic-triage/internal/handler/triage"
	"github.com/jwalitptl/clinic-triage/internal/middleware"
	"github.com/jwalitptl/clinic-triage/internal/router"
	"github.com/jwalitptl/clinic-triage/internal/service/triage"
	"github.com/jwalitptl/clinic-triage/pkg/logger"
	"github.com/jwalitptl/clinic-triage/pkg/messaging"
	"github.com/jwalitptl/clinic-triage/pkg/metrics"
	"github.com/jwalitptl/clinic-triage/pkg/worker"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(cfg.Log.ToLoggerConfig())
	log.Logger = *appLogger.Zerolog()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(cfg.Monitoring.Namespace, "api", reg)

	broker, err := messaging.NewBroker(cfg.Broker.ToBrokerConfig(), appLogger.Zerolog())
	if err != nil {
		appLogger.Fatal(err, "failed to create message broker", "driver", cfg.Broker.Driver)
	}
	defer broker.Close()

	relay := worker.NewEventRelay(broker, cfg.ToRelayConfig(), appLogger, m)

	engine := triage.NewEngine(triage.WithBoardSlots(cfg.Triage.BoardSlots))
	triageSvc := triage.NewService(engine, cfg.ToTriageConfig(), relay, m, appLogger)

	if err := middleware.RegisterValidators(); err != nil {
		appLogger.Fatal(err, "failed to register validators")
	}

	// Initialize handlers
	healthHandler := handler.NewHandler(map[string]handler.ReadinessChecker{
		"triage_engine": triageSvc,
	})
	triageHandler := triagehandler.NewHandler(triageSvc)

	var metricsHandler *promhandler.Handler
	if cfg.Monitoring.PrometheusEnabled {
		metricsHandler = promhandler.New(reg, cfg.Monitoring.Namespace)
	}

	r := router.NewRouter(healthHandler, triageHandler, metricsHandler, cfg.ToRouterConfig())
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		triageSvc.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		relay.Start(ctx)
	}()

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port, "broker", cfg.Broker.Driver)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal(err, "failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(err, "server forced to shutdown")
	}

	// Stop the engine and let the relay flush what is still buffered.
	cancel()
	wg.Wait()

	appLogger.Info("server exited properly")
}
