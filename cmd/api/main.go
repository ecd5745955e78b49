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
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"casino-minigames/internal/config"
	"casino-minigames/internal/handlers"
	"casino-minigames/internal/logger"
	"casino-minigames/internal/services"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.Env)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	if err := run(cfg, zlog); err != nil {
		zlog.Fatal("server stopped", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	paytables, err := config.LoadPaytables(cfg.PaytablePath)
	if err != nil {
		return err
	}

	redisService, err := services.NewRedisService(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer redisService.Close()

	journal, err := services.NewJournal(ctx, cfg.JournalPath, log)
	if err != nil {
		return err
	}
	defer journal.Close()

	seeds, err := services.NewSeedManager(int(cfg.SeedRotateEvery))
	if err != nil {
		return err
	}
	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTTTL)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := services.NewMetrics()
	metrics.MustRegister(registry)

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	hub := handlers.NewWebSocketHub(log)
	go hub.Run(hubCtx)

	casino := services.NewCasino(cfg, services.Deps{
		Store:       redisService,
		Journal:     journal,
		Seeds:       seeds,
		Subsidy:     services.NewSubsidy(cfg.Subsidy, metrics, log),
		Metrics:     metrics,
		Broadcaster: hub,
		Paytables:   paytables,
		Log:         log,
	})

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := handlers.NewRouter(handlers.RouterDeps{
		Casino:           casino,
		JWT:              jwtService,
		Store:            redisService,
		Hub:              hub,
		Metrics:          metrics,
		Log:              log,
		MetricsHandler:   promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		ActionsPerMinute: cfg.ActionsPerMinute,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	// unsaved balances are written before the stores close
	return casino.Shutdown(shutdownCtx)
}
