package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/radieske/bet-tracker/internal/domain"
)

// State é o par {apostas, carteira} reconciliado pelo motor.
type State struct {
	Bets   []domain.Bet
	Wallet domain.Wallet
}

// Op é o conjunto fechado de operações do ledger. Toda mutação de estado
// passa por Apply com uma dessas variantes.
type Op interface{ isOp() }

type AddBet struct{ Bet domain.Bet }

// EditBet substitui a aposta de ID pelos novos valores. ID desconhecido é no-op.
type EditBet struct {
	ID   string
	Next domain.Bet
}

// ReplaceBets troca a coleção inteira, reconciliando por ID contra a anterior.
type ReplaceBets struct{ Bets []domain.Bet }

type DeleteBet struct{ ID string }

type Deposit struct {
	Amount decimal.Decimal
	At     time.Time
}

type Withdraw struct {
	Amount decimal.Decimal
	At     time.Time
}

func (AddBet) isOp()      {}
func (EditBet) isOp()     {}
func (ReplaceBets) isOp() {}
func (DeleteBet) isOp()   {}
func (Deposit) isOp()     {}
func (Withdraw) isOp()    {}

// Apply computa o novo estado para uma operação. Função total: nunca falha,
// nunca faz I/O e não observa estado parcial. Validações (saldo suficiente,
// valores positivos) são responsabilidade de quem chama; o motor aceita o
// que receber, inclusive saldo negativo.
func Apply(s State, op Op) State {
	switch v := op.(type) {
	case AddBet:
		return applyAddBet(s, v.Bet)
	case EditBet:
		return applyEditBet(s, v.ID, v.Next)
	case ReplaceBets:
		return applyReplaceBets(s, v.Bets)
	case DeleteBet:
		return applyDeleteBet(s, v.ID)
	case Deposit:
		return applyMovement(s, domain.TxDeposit, v.Amount, v.At)
	case Withdraw:
		return applyMovement(s, domain.TxWithdrawal, v.Amount, v.At)
	}
	return s
}

// applyAddBet anexa a aposta e lança o débito da stake; se o resultado já é
// favorável (Won/Draw) lança também o crédito do payout.
func applyAddBet(s State, bet domain.Bet) State {
	bets := make([]domain.Bet, 0, len(s.Bets)+1)
	bets = append(bets, s.Bets...)
	bets = append(bets, bet)

	return State{Bets: bets, Wallet: settle(s.Wallet, bet)}
}

func applyEditBet(s State, id string, next domain.Bet) State {
	idx := -1
	for i, b := range s.Bets {
		if b.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return s // tolerante: edição de ID inexistente não altera nada
	}

	next.ID = id

	bets := make([]domain.Bet, len(s.Bets))
	copy(bets, s.Bets)
	bets[idx] = next

	// Estorna o efeito anterior e reaplica do zero com os novos valores,
	// garantindo no máximo um débito e um crédito por aposta.
	w := retract(s.Wallet, id)
	w = settle(w, next)

	return State{Bets: bets, Wallet: w}
}

// applyReplaceBets reconcilia a coleção nova contra a anterior: IDs que já
// existiam são estornados e reaplicados, IDs novos entram como adição e IDs
// ausentes da coleção nova têm suas transações removidas.
func applyReplaceBets(s State, newBets []domain.Bet) State {
	keep := make(map[string]bool, len(newBets))
	for _, b := range newBets {
		keep[b.ID] = true
	}

	w := s.Wallet
	for _, old := range s.Bets {
		if !keep[old.ID] {
			w = retract(w, old.ID)
		}
	}

	prior := make(map[string]bool, len(s.Bets))
	for _, b := range s.Bets {
		prior[b.ID] = true
	}

	for _, b := range newBets {
		if prior[b.ID] {
			w = retract(w, b.ID)
		}
		w = settle(w, b)
	}

	bets := make([]domain.Bet, len(newBets))
	copy(bets, newBets)

	return State{Bets: bets, Wallet: w}
}

func applyDeleteBet(s State, id string) State {
	bets := make([]domain.Bet, 0, len(s.Bets))
	for _, b := range s.Bets {
		if b.ID != id {
			bets = append(bets, b)
		}
	}

	// retract é no-op quando nenhuma transação referencia o ID
	return State{Bets: bets, Wallet: retract(s.Wallet, id)}
}

func applyMovement(s State, typ domain.WalletTransactionType, amount decimal.Decimal, at time.Time) State {
	w := s.Wallet
	w.Transactions = prepend(w.Transactions, domain.WalletTransaction{
		ID:     uuid.NewString(),
		Type:   typ,
		Amount: amount,
		Date:   at,
	})

	if typ == domain.TxDeposit {
		w.Balance = w.Balance.Add(amount)
	} else {
		w.Balance = w.Balance.Sub(amount)
	}

	return State{Bets: s.Bets, Wallet: w}
}

// settle lança na carteira o efeito de uma aposta: débito da stake e, quando
// Won/Draw, o crédito do payout. Histórico fica do mais recente pro mais antigo.
func settle(w domain.Wallet, bet domain.Bet) domain.Wallet {
	w.Transactions = prepend(w.Transactions, domain.WalletTransaction{
		ID:     uuid.NewString(),
		Type:   domain.TxBet,
		Amount: bet.Amount,
		Date:   bet.Date,
		BetID:  bet.ID,
	})
	w.Balance = w.Balance.Sub(bet.Amount)

	if bet.Settled() {
		payout := bet.Payout()
		w.Transactions = prepend(w.Transactions, domain.WalletTransaction{
			ID:     uuid.NewString(),
			Type:   domain.TxPayout,
			Amount: payout,
			Date:   bet.Date,
			BetID:  bet.ID,
		})
		w.Balance = w.Balance.Add(payout)
	}

	return w
}

// retract remove as transações ligadas ao betID e reverte o efeito delas no
// saldo (stake devolvida, payout estornado), usando os valores registrados.
func retract(w domain.Wallet, betID string) domain.Wallet {
	if betID == "" {
		return w
	}

	kept := make([]domain.WalletTransaction, 0, len(w.Transactions))
	for _, tx := range w.Transactions {
		if tx.BetID != betID {
			kept = append(kept, tx)
			continue
		}
		switch tx.Type {
		case domain.TxBet:
			w.Balance = w.Balance.Add(tx.Amount)
		case domain.TxPayout:
			w.Balance = w.Balance.Sub(tx.Amount)
		}
	}
	w.Transactions = kept

	return w
}

func prepend(txs []domain.WalletTransaction, tx domain.WalletTransaction) []domain.WalletTransaction {
	out := make([]domain.WalletTransaction, 0, len(txs)+1)
	out = append(out, tx)
	return append(out, txs...)
}
