package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/radieske/bet-tracker/internal/domain"
)

// Postgres implementa o colaborador de persistência: hidratação no startup e
// escrita idempotente (upsert por ID) após cada mutação do estado.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// LoadBets retorna todas as apostas registradas, na ordem de inserção.
func (p *Postgres) LoadBets(ctx context.Context) ([]domain.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, placed_at, bet_type, amount, odds, outcome, notes, favorite
		FROM bets ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("load bets: %w", err)
	}
	defer rows.Close()

	var bets []domain.Bet
	for rows.Next() {
		var b domain.Bet
		var notes sql.NullString
		if err := rows.Scan(&b.ID, &b.Date, (*string)(&b.Type), &b.Amount, &b.Odds, (*string)(&b.Outcome), &notes, &b.Favorite); err != nil {
			return nil, fmt.Errorf("scan bet: %w", err)
		}
		b.Notes = notes.String
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

// LoadWallet retorna a carteira única com o histórico do mais recente pro
// mais antigo. Se a carteira ainda não existe, cria zerada.
func (p *Postgres) LoadWallet(ctx context.Context) (domain.Wallet, error) {
	var w domain.Wallet

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return w, err
	}
	defer tx.Rollback()

	err = tx.QueryRowContext(ctx, `SELECT balance FROM wallet WHERE id=1`).Scan(&w.Balance)
	if err == sql.ErrNoRows {
		if _, err = tx.ExecContext(ctx, `INSERT INTO wallet(id, balance) VALUES(1, 0)`); err != nil {
			return w, fmt.Errorf("init wallet: %w", err)
		}
		return w, tx.Commit()
	} else if err != nil {
		return w, fmt.Errorf("load wallet: %w", err)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT id, tx_type, amount, moved_at, bet_id
		FROM wallet_transactions ORDER BY ord`)
	if err != nil {
		return w, fmt.Errorf("load transactions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var t domain.WalletTransaction
		var betID sql.NullString
		if err := rows.Scan(&t.ID, (*string)(&t.Type), &t.Amount, &t.Date, &betID); err != nil {
			return w, fmt.Errorf("scan transaction: %w", err)
		}
		t.BetID = betID.String
		w.Transactions = append(w.Transactions, t)
	}
	if err := rows.Err(); err != nil {
		return w, err
	}

	return w, tx.Commit()
}

// UpsertBet grava uma aposta por ID (put idempotente).
func (p *Postgres) UpsertBet(ctx context.Context, b domain.Bet) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO bets (id, placed_at, bet_type, amount, odds, outcome, notes, favorite)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		ON CONFLICT (id) DO UPDATE SET
			placed_at=$2, bet_type=$3, amount=$4, odds=$5, outcome=$6, notes=$7, favorite=$8`,
		b.ID, b.Date, string(b.Type), b.Amount, b.Odds, string(b.Outcome), nullIfEmpty(b.Notes), b.Favorite,
	)
	if err != nil {
		return fmt.Errorf("upsert bet: %w", err)
	}
	return nil
}

// DeleteBet remove uma aposta. Idempotente: deletar ID ausente não é erro.
func (p *Postgres) DeleteBet(ctx context.Context, id string) error {
	if _, err := p.db.ExecContext(ctx, `DELETE FROM bets WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete bet: %w", err)
	}
	return nil
}

// SaveWallet substitui atomicamente saldo e histórico. O ledger é derivado do
// estado das apostas no cliente, então a troca integral é a forma idempotente.
func (p *Postgres) SaveWallet(ctx context.Context, w domain.Wallet) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO wallet(id, balance) VALUES(1, $1)
		ON CONFLICT (id) DO UPDATE SET balance=$1`, w.Balance); err != nil {
		return fmt.Errorf("save balance: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM wallet_transactions`); err != nil {
		return fmt.Errorf("clear transactions: %w", err)
	}

	for i, t := range w.Transactions {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO wallet_transactions (id, tx_type, amount, moved_at, bet_id, ord)
			VALUES ($1,$2,$3,$4,$5,$6)`,
			t.ID, string(t.Type), t.Amount, t.Date, nullIfEmpty(t.BetID), i); err != nil {
			return fmt.Errorf("insert transaction: %w", err)
		}
	}

	return tx.Commit()
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
