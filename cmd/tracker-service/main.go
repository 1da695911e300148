package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/shared/cache"
	"github.com/radieske/bet-tracker/internal/shared/config"
	"github.com/radieske/bet-tracker/internal/shared/db"
	sharedkafka "github.com/radieske/bet-tracker/internal/shared/kafka"
	"github.com/radieske/bet-tracker/internal/shared/logger"
	"github.com/radieske/bet-tracker/internal/shared/metrics"
	"github.com/radieske/bet-tracker/internal/store"
	"github.com/radieske/bet-tracker/internal/tracker/auth"
	thttp "github.com/radieske/bet-tracker/internal/tracker/http"
	kpub "github.com/radieske/bet-tracker/internal/tracker/producer"
	"github.com/radieske/bet-tracker/internal/tracker/repo"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("starting service", zap.String("env", cfg.Env))

	// Postgres: persistência de apostas e carteira
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis: sessões de autenticação
	rdb, err := cache.ConnectRedis(cfg.RedisAddr, cfg.RedisPass)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writer: eventos de ledger
	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerEvents)
	defer writer.Close()

	// deps
	repository := repo.NewPostgres(pg)
	publ := kpub.NewKafkaPublisher(writer, cfg.TopicLedgerEvents)
	sessions := auth.NewSessions(rdb, cfg.SessionTTL)

	st := store.New(log, repository, publ)
	if err := st.Hydrate(context.Background()); err != nil {
		log.Fatal("hydrate state", zap.Error(err))
	}

	// HTTP público
	api := thttp.NewServer(log, st, sessions)
	apiSrv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: api.Router(),
	}

	// metrics/health em porta separada
	metricsSrv := metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	log.Info("metrics/health", zap.String("addr", metricsSrv.Addr))

	log.Info("tracker-service listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api", zap.Error(err))
	}
}
