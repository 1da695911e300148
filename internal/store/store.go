package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/internal/domain"
	"github.com/radieske/bet-tracker/internal/ledger"
	ev "github.com/radieske/bet-tracker/pkg/contracts/events"
)

var ErrNotFound = errors.New("bet not found")

var opsApplied = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "tracker_ledger_ops_total", Help: "operações aplicadas ao ledger"},
	[]string{"op"},
)

func init() {
	prometheus.MustRegister(opsApplied)
}

// Repo é o contrato de persistência consumido pelo store: hidratação inicial
// e puts idempotentes por ID após cada mutação.
type Repo interface {
	LoadBets(ctx context.Context) ([]domain.Bet, error)
	LoadWallet(ctx context.Context) (domain.Wallet, error)
	UpsertBet(ctx context.Context, b domain.Bet) error
	DeleteBet(ctx context.Context, id string) error
	SaveWallet(ctx context.Context, w domain.Wallet) error
}

// Publisher emite eventos de ledger após mutações bem-sucedidas.
type Publisher interface {
	PublishLedgerEvent(ctx context.Context, e ev.LedgerEvent) error
}

// Store é o dono único do estado em memória {apostas, carteira}. Toda mutação
// entra por aqui, é aplicada pelo motor de reconciliação sob o lock e só então
// persistida. Escrita otimista: falha de persistência volta pro chamador, mas
// o estado em memória não é revertido (a próxima hidratação realinha).
type Store struct {
	mu    sync.Mutex
	state ledger.State

	log  *zap.Logger
	repo Repo
	publ Publisher
}

func New(log *zap.Logger, repo Repo, publ Publisher) *Store {
	return &Store{log: log, repo: repo, publ: publ}
}

// Hydrate carrega apostas e carteira da persistência. Chamado uma vez no boot.
func (s *Store) Hydrate(ctx context.Context) error {
	bets, err := s.repo.LoadBets(ctx)
	if err != nil {
		return fmt.Errorf("hydrate bets: %w", err)
	}
	wallet, err := s.repo.LoadWallet(ctx)
	if err != nil {
		return fmt.Errorf("hydrate wallet: %w", err)
	}

	s.mu.Lock()
	s.state = ledger.State{Bets: bets, Wallet: wallet}
	s.mu.Unlock()

	s.log.Info("state hydrated",
		zap.Int("bets", len(bets)),
		zap.Int("transactions", len(wallet.Transactions)),
		zap.String("balance", wallet.Balance.String()),
	)
	return nil
}

// Bets retorna uma cópia da coleção corrente.
func (s *Store) Bets() []domain.Bet {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Bet, len(s.state.Bets))
	copy(out, s.state.Bets)
	return out
}

// Bet retorna uma aposta por ID.
func (s *Store) Bet(id string) (domain.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.state.Bets {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Bet{}, ErrNotFound
}

// Wallet retorna uma cópia da carteira corrente.
func (s *Store) Wallet() domain.Wallet {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.state.Wallet
	txs := make([]domain.WalletTransaction, len(w.Transactions))
	copy(txs, w.Transactions)
	w.Transactions = txs
	return w
}

// Balance retorna o saldo corrente sem copiar o histórico.
func (s *Store) Balance() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Wallet.Balance
}

// AddBet aplica a adição e persiste a aposta e a carteira.
func (s *Store) AddBet(ctx context.Context, bet domain.Bet) (domain.Bet, error) {
	s.mu.Lock()
	s.state = ledger.Apply(s.state, ledger.AddBet{Bet: bet})
	wallet := s.state.Wallet
	s.mu.Unlock()
	opsApplied.WithLabelValues("add_bet").Inc()

	if err := s.persistBet(ctx, bet, wallet); err != nil {
		return bet, err
	}

	s.publish(ctx, ev.LedgerEvent{
		Op:           "bet_added",
		BetID:        bet.ID,
		Amount:       bet.Amount.String(),
		Payout:       bet.Payout().String(),
		BalanceAfter: wallet.Balance.String(),
		TxCount:      len(wallet.Transactions),
	})
	return bet, nil
}

// EditBet substitui a aposta de ID pelos novos valores e persiste. ID
// desconhecido retorna ErrNotFound antes de tocar no estado.
func (s *Store) EditBet(ctx context.Context, id string, next domain.Bet) (domain.Bet, error) {
	s.mu.Lock()
	found := false
	for _, b := range s.state.Bets {
		if b.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return domain.Bet{}, ErrNotFound
	}
	next.ID = id
	s.state = ledger.Apply(s.state, ledger.EditBet{ID: id, Next: next})
	wallet := s.state.Wallet
	s.mu.Unlock()
	opsApplied.WithLabelValues("edit_bet").Inc()

	if err := s.persistBet(ctx, next, wallet); err != nil {
		return next, err
	}

	s.publish(ctx, ev.LedgerEvent{
		Op:           "bet_edited",
		BetID:        id,
		Amount:       next.Amount.String(),
		Payout:       next.Payout().String(),
		BalanceAfter: wallet.Balance.String(),
		TxCount:      len(wallet.Transactions),
	})
	return next, nil
}

// DeleteBet remove a aposta, estorna o efeito no ledger e persiste.
func (s *Store) DeleteBet(ctx context.Context, id string) error {
	s.mu.Lock()
	found := false
	for _, b := range s.state.Bets {
		if b.ID == id {
			found = true
			break
		}
	}
	if !found {
		s.mu.Unlock()
		return ErrNotFound
	}
	s.state = ledger.Apply(s.state, ledger.DeleteBet{ID: id})
	wallet := s.state.Wallet
	s.mu.Unlock()
	opsApplied.WithLabelValues("delete_bet").Inc()

	if err := s.repo.DeleteBet(ctx, id); err != nil {
		return fmt.Errorf("persist delete: %w", err)
	}
	if err := s.repo.SaveWallet(ctx, wallet); err != nil {
		return fmt.Errorf("persist wallet: %w", err)
	}

	s.publish(ctx, ev.LedgerEvent{
		Op:           "bet_deleted",
		BetID:        id,
		BalanceAfter: wallet.Balance.String(),
		TxCount:      len(wallet.Transactions),
	})
	return nil
}

// Deposit credita o valor na carteira e persiste.
func (s *Store) Deposit(ctx context.Context, amount decimal.Decimal) (domain.Wallet, error) {
	return s.move(ctx, ledger.Deposit{Amount: amount, At: time.Now().UTC()}, "deposit", amount)
}

// Withdraw debita o valor da carteira e persiste.
func (s *Store) Withdraw(ctx context.Context, amount decimal.Decimal) (domain.Wallet, error) {
	return s.move(ctx, ledger.Withdraw{Amount: amount, At: time.Now().UTC()}, "withdrawal", amount)
}

func (s *Store) move(ctx context.Context, op ledger.Op, name string, amount decimal.Decimal) (domain.Wallet, error) {
	s.mu.Lock()
	s.state = ledger.Apply(s.state, op)
	wallet := s.state.Wallet
	s.mu.Unlock()
	opsApplied.WithLabelValues(name).Inc()

	if err := s.repo.SaveWallet(ctx, wallet); err != nil {
		return wallet, fmt.Errorf("persist wallet: %w", err)
	}

	s.publish(ctx, ev.LedgerEvent{
		Op:           name,
		Amount:       amount.String(),
		BalanceAfter: wallet.Balance.String(),
		TxCount:      len(wallet.Transactions),
	})
	return wallet, nil
}

func (s *Store) persistBet(ctx context.Context, bet domain.Bet, wallet domain.Wallet) error {
	if err := s.repo.UpsertBet(ctx, bet); err != nil {
		return fmt.Errorf("persist bet: %w", err)
	}
	if err := s.repo.SaveWallet(ctx, wallet); err != nil {
		return fmt.Errorf("persist wallet: %w", err)
	}
	return nil
}

// publish é best-effort: falha de Kafka não derruba a requisição.
func (s *Store) publish(ctx context.Context, e ev.LedgerEvent) {
	if s.publ == nil {
		return
	}
	if err := s.publ.PublishLedgerEvent(ctx, e); err != nil {
		s.log.Warn("publish ledger event", zap.String("op", e.Op), zap.Error(err))
	}
}
