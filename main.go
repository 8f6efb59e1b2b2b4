package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"xiview-api/config"
	"xiview-api/database"
	"xiview-api/metrics"
	"xiview-api/server"
	"xiview-api/services"
)

const shutdownTimeout = 30 * time.Second

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	failed := false
	// läuft als letztes, nach allen anderen defers
	defer func() {
		if failed {
			os.Exit(1)
		}
	}()
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}
	gin.SetMode(cfg.GinMode)

	// Setup Database Connection
	db, err := database.Open(cfg.DSN(), database.PoolConfigFrom(cfg), logging)
	if err != nil {
		logging.Fatal("Failed to connect to xiview database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		logging.Fatal("Failed to access connection pool", zap.Error(err))
	}
	defer sqlDB.Close()

	// Setup Services
	m := metrics.New(prometheus.DefaultRegisterer)
	xiview := services.NewXiviewService(db, logging, m, cfg.XiviewBaseURL)

	// Setup Router
	router := server.NewRouter(xiview, server.Options{
		Logger:          logging,
		Metrics:         m,
		Gatherer:        prometheus.DefaultGatherer,
		RoutePrefix:     cfg.RoutePrefix,
		SuppressedPaths: cfg.LogSuppressedPaths,
		AllowOrigins:    cfg.CORSAllowOrigins,
		Health: func(ctx context.Context) error {
			ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			return sqlDB.PingContext(ctx)
		},
	})

	// Setup Cron
	cronScheduler := cron.New()
	collector := metrics.NewStatsCollector(db, m, logging)
	if _, err := collector.Schedule(cronScheduler, cfg.StatsSchedule); err != nil {
		logging.Fatal("Invalid stats schedule", zap.String("schedule", cfg.StatsSchedule), zap.Error(err))
	}
	cronScheduler.Start()
	defer cronScheduler.Stop()

	logging.Info("Starting server",
		zap.String("port", cfg.HTTPPort),
		zap.String("route_prefix", cfg.RoutePrefix))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		// large projects produce payloads of several hundred MB
		WriteTimeout: 10 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := serve(ctx, srv, logging); err != nil {
		logging.Error("Failed to run server", zap.Error(err))
		failed = true
	}
}

// serve runs srv until ctx is done, then drains open requests.
func serve(ctx context.Context, srv *http.Server, logging *zap.Logger) error {
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
