package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/absolutefisio/clinic-admin/internal/api"
	"github.com/absolutefisio/clinic-admin/internal/cashier"
	"github.com/absolutefisio/clinic-admin/internal/catalog"
	"github.com/absolutefisio/clinic-admin/internal/config"
	"github.com/absolutefisio/clinic-admin/internal/inbox"
	"github.com/absolutefisio/clinic-admin/internal/observability/metrics"
	"github.com/absolutefisio/clinic-admin/internal/patients"
	"github.com/absolutefisio/clinic-admin/internal/receipt"
	"github.com/absolutefisio/clinic-admin/internal/schedule"
	"github.com/absolutefisio/clinic-admin/internal/services"
	"github.com/absolutefisio/clinic-admin/internal/session"
	"github.com/absolutefisio/clinic-admin/internal/staff"
	"github.com/absolutefisio/clinic-admin/internal/web"
	"github.com/absolutefisio/clinic-admin/pkg/logging"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting clinic-admin",
		"env", cfg.Env,
		"port", cfg.Port,
		"backend", cfg.BackendURL,
	)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", "timezone", cfg.Timezone, "error", err)
		loc = time.Local
	}

	var backendMetrics *metrics.BackendMetrics
	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		registry := prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		backendMetrics = metrics.NewBackendMetrics(registry)
		metricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
	}

	store, err := session.NewStore(cfg.StateDir, logger)
	if err != nil {
		logger.Error("failed to open session state", "error", err)
		os.Exit(1)
	}

	client := api.NewClient(cfg.BackendURL, store.Token, backendMetrics, logger)
	client.SetTimeout(cfg.RequestTimeout)
	store.Bind(client)

	catalogs := catalog.NewAggregator(client, logger)

	scheduleScreen := schedule.NewScreen(client, catalogs, logger, loc)
	cashierScreen := cashier.NewScreen(client, catalogs, logger, loc)
	patientsScreen := patients.NewScreen(client, logger)
	dossierView := patients.NewDossierView(client)
	servicesScreen := services.NewScreen(client, logger)
	staffScreen := staff.NewScreen(client, logger)

	notifications := inbox.NewCenter(client, logger, cfg.NotifyPollInterval)
	pollCtx, stopPoll := context.WithCancel(context.Background())
	go notifications.Poll(pollCtx)

	receipts := receipt.NewBuilder(receipt.Clinic{
		Name:    cfg.ClinicName,
		Phone:   cfg.ClinicPhone,
		Address: cfg.ClinicAddress,
	}, loc)

	handlers := web.NewHandlers(web.HandlersConfig{
		Config:   cfg,
		Logger:   logger,
		Location: loc,
		Session:  store,
		Reset:    session.NewResetFlow(client),
		Schedule: scheduleScreen,
		Cashier:  cashierScreen,
		Patients: patientsScreen,
		Dossier:  dossierView,
		Services: servicesScreen,
		Staff:    staffScreen,
		Inbox:    notifications,
		Receipts: receipts,
	})

	router := web.NewRouter(web.RouterConfig{
		Logger:         logger,
		Session:        store,
		Handlers:       handlers,
		MetricsHandler: metricsHandler,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")
	stopPoll()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
