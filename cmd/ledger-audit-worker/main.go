package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/audit"
	"github.com/radieske/bet-tracker/internal/shared/config"
	"github.com/radieske/bet-tracker/internal/shared/db"
	sharedkafka "github.com/radieske/bet-tracker/internal/shared/kafka"
	"github.com/radieske/bet-tracker/internal/shared/logger"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// Postgres: trilha de auditoria do ledger
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Kafka consumer (consumer group ledger-audit)
	reader := sharedkafka.NewReader(cfg.KafkaBrokers, cfg.TopicLedgerEvents, "ledger-audit")
	defer reader.Close()

	// DLQ para mensagens indecodificáveis
	dlqWriter := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicLedgerEventsDLQ)
	defer dlqWriter.Close()

	// Métricas Prometheus do worker
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_audit_messages_consumed_total", Help: "mensagens consumidas"})
	inserted := prometheus.NewCounter(prometheus.CounterOpts{Name: "ledger_audit_entries_inserted_total", Help: "linhas inseridas na auditoria"})
	errorsBy := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "ledger_audit_errors_total", Help: "erros por estágio"}, []string{"stage"})
	prometheus.MustRegister(consumed, inserted, errorsBy)

	cons := &audit.Consumer{
		Log:        log,
		Reader:     reader,
		Repo:       audit.NewPostgresRepo(pg),
		DLQ:        dlqWriter,
		OnConsumed: func() { consumed.Inc() },
		OnInserted: func() { inserted.Inc() },
		OnError:    func(stage string) { errorsBy.WithLabelValues(stage).Inc() },
	}

	// Servidor HTTP para métricas e health check
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
			defer cancel()
			if err := pg.PingContext(ctx); err != nil {
				http.Error(w, "pg", http.StatusServiceUnavailable)
				return
			}
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
		})
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("metrics/health listening", zap.String("addr", addr))
		_ = http.ListenAndServe(addr, mux)
	}()

	// Shutdown gracioso (SIGINT/SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("ledger-audit-worker started", zap.String("consume", cfg.TopicLedgerEvents))
	if err := cons.Run(ctx); err != nil && ctx.Err() == nil {
		log.Fatal("consumer stopped with error", zap.Error(err))
	}
	log.Info("ledger-audit-worker stopped")
}
