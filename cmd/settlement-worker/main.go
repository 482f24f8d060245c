package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/lottery-ops-platform-poc/internal/game"
	"github.com/radieske/lottery-ops-platform-poc/internal/settlement"
	sharedcache "github.com/radieske/lottery-ops-platform-poc/internal/shared/cache"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/config"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/db"
	sharedkafka "github.com/radieske/lottery-ops-platform-poc/internal/shared/kafka"
	"github.com/radieske/lottery-ops-platform-poc/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Inicializa dependências: Postgres e Redis
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	redisClient, err := sharedcache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer redisClient.Close()

	// Consumer Kafka (consumer group settlement-worker)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicDrawResultsPosted, "settlement-worker")
	defer reader.Close()

	// Writers: ticket_settled e DLQ de resultados
	settledWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicTicketSettled)
	defer settledWriter.Close()

	var dlqWriter *kafka.Writer
	if cfg.TopicDrawResultsPostedDLQ != "" {
		dlqWriter = sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicDrawResultsPostedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento da liquidação
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_messages_consumed_total", Help: "mensagens consumidas"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_tickets_settled_total", Help: "bilhetes liquidados por status"}, []string{"status"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, settled, errorsBy)

	proc := &settlement.Processor{
		Log:       log,
		Reader:    reader,
		Repo:      settlement.NewPostgresRepo(pg),
		Rates:     game.DefaultRateTable(),
		Settled:   settledWriter,
		Broadcast: settlement.NewRedisBroadcaster(redisClient),
		Channel:   cfg.RedisPubSubChannel,

		OnConsumed: func() { consumed.Inc() },
		OnSettled:  func(status string) { settled.WithLabelValues(status).Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}
	if dlqWriter != nil {
		proc.DLQ = dlqWriter
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			if err := pg.PingContext(r.Context()); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			if err := redisClient.Ping(r.Context()).Err(); err != nil {
				http.Error(w, "redis", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Sinalização para shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicDrawResultsPosted))
	if err := proc.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("processor stopped with error", zap.Error(err))
	}
	log.Info("settlement-worker stopped")
}
