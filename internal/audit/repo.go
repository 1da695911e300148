package audit

import (
	"context"
	"database/sql"

	"github.com/radieske/bet-tracker/pkg/contracts/events"
)

// PostgresRepo grava a trilha de auditoria do ledger em banco Postgres.
// A tabela é append-only: cada evento consumido vira uma linha.
type PostgresRepo struct {
	DB *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo {
	return &PostgresRepo{DB: db}
}

// InsertEntry insere um evento de ledger na trilha de auditoria.
func (r *PostgresRepo) InsertEntry(ctx context.Context, e events.LedgerEvent) error {
	const q = `
		INSERT INTO ledger_audit
		  (op, bet_id, amount, payout, balance_after, tx_count, ts_unix_ms)
		VALUES
		  ($1,$2,$3,$4,$5,$6,$7)
	`
	_, err := r.DB.ExecContext(ctx, q,
		e.Op, nullIfEmpty(e.BetID), nullIfEmpty(e.Amount), nullIfEmpty(e.Payout),
		e.BalanceAfter, e.TxCount, e.TsUnixMs,
	)
	return err
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
