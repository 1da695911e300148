package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	sharedkafka "github.com/radieske/bet-tracker/internal/shared/kafka"
	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// Consumer consome eventos de ledger do Kafka e os grava na trilha de
// auditoria. Mensagens indecodificáveis vão pra DLQ em vez de travar o loop.
type Consumer struct {
	Log    *zap.Logger
	Reader *kafka.Reader
	Repo   *PostgresRepo
	DLQ    *kafka.Writer // opcional

	OnConsumed func()       // métricas (counter++)
	OnInserted func()       // métricas
	OnError    func(string) // métricas por fase
}

// Run inicia o loop principal de consumo. Retorna quando o contexto é cancelado.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		m, err := c.Reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.Log.Warn("kafka read failed", zap.Error(err))
			if c.OnError != nil {
				c.OnError("read")
			}
			time.Sleep(500 * time.Millisecond)
			continue
		}

		if c.OnConsumed != nil {
			c.OnConsumed()
		}

		var ev events.LedgerEvent
		if err := json.Unmarshal(m.Value, &ev); err != nil {
			c.Log.Warn("invalid message", zap.Error(err))
			if c.OnError != nil {
				c.OnError("decode")
			}
			if c.DLQ != nil {
				_ = sharedkafka.WriteJSON(ctx, c.DLQ, string(m.Key), m.Value)
			}
			continue
		}

		if err := c.Repo.InsertEntry(ctx, ev); err != nil {
			c.Log.Warn("db insert failed", zap.Error(err))
			if c.OnError != nil {
				c.OnError("db_insert")
			}
			continue
		}
		if c.OnInserted != nil {
			c.OnInserted()
		}
	}
}
