package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
	rcache "github.com/radieske/lottery-ops-platform-poc/internal/report-service/cache"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/httpapi"
	rrepo "github.com/radieske/lottery-ops-platform-poc/internal/report-service/repo"
	"github.com/radieske/lottery-ops-platform-poc/internal/report-service/ws"
	sharedcache "github.com/radieske/lottery-ops-platform-poc/internal/shared/cache"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/config"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/db"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres (leitura dos relatórios)
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()
	log.Info("postgres connected")

	// Redis (cache de relatórios + pub/sub do dashboard)
	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("failed to connect redis", zap.Error(err))
	}
	defer redisClient.Close()
	log.Info("redis connected")

	// Hub WebSocket do dashboard ao vivo, alimentado pelo Redis Pub/Sub
	hub := ws.NewHub(func(*http.Request) bool { return true })
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()
	ws.StartRedisSubscriber(ctx, redisClient, hub)

	api := &httpapi.API{
		Log:   log,
		Repo:  rrepo.NewReadRepo(pg),
		Cache: rcache.New(redisClient),
		Rates: game.DefaultRateTable(),
		Hub:   hub,
	}

	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: api.Router(),
	}

	// metrics/health
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		hctx, hcancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer hcancel()
		if err := pg.PingContext(hctx); err != nil {
			http.Error(w, "postgres not healthy: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		if err := redisClient.Ping(hctx).Err(); err != nil {
			http.Error(w, "redis not healthy: "+err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	go func() {
		addr := ":" + cfg.MetricsPort
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, metricsMux)
	}()

	log.Info("report-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
