package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/radieske/bet-tracker/internal/domain"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newBet(amount, odds string, outcome domain.BetOutcome) domain.Bet {
	return domain.Bet{
		ID:      uuid.NewString(),
		Date:    time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC),
		Type:    domain.TypeWinner,
		Amount:  dec(amount),
		Odds:    dec(odds),
		Outcome: outcome,
	}
}

func stateWithBalance(balance string) State {
	return State{Wallet: domain.Wallet{Balance: dec(balance)}}
}

// checkIntegrity confere que o saldo bate com a soma assinada do histórico
// partindo do saldo inicial informado.
func checkIntegrity(t *testing.T, s State, initial decimal.Decimal) {
	t.Helper()
	expected := initial
	for _, tx := range s.Wallet.Transactions {
		switch tx.Type {
		case domain.TxDeposit, domain.TxPayout:
			expected = expected.Add(tx.Amount)
		case domain.TxWithdrawal, domain.TxBet:
			expected = expected.Sub(tx.Amount)
		}
	}
	assert.True(t, s.Wallet.Balance.Equal(expected),
		"balance %s != history sum %s", s.Wallet.Balance, expected)
}

// checkLinkage confere os invariantes de ligação: exatamente um débito `bet`
// por aposta viva, e crédito `payout` se e somente se Won/Draw.
func checkLinkage(t *testing.T, s State) {
	t.Helper()
	debits := map[string]int{}
	payouts := map[string]int{}
	for _, tx := range s.Wallet.Transactions {
		switch tx.Type {
		case domain.TxBet:
			debits[tx.BetID]++
		case domain.TxPayout:
			payouts[tx.BetID]++
		}
	}

	live := map[string]domain.Bet{}
	for _, b := range s.Bets {
		live[b.ID] = b
	}

	for id, b := range live {
		assert.Equal(t, 1, debits[id], "bet %s debit count", id)
		if b.Settled() {
			assert.Equal(t, 1, payouts[id], "bet %s payout count", id)
		} else {
			assert.Zero(t, payouts[id], "bet %s unexpected payout", id)
		}
	}
	for id := range debits {
		_, ok := live[id]
		assert.True(t, ok, "orphan debit for %s", id)
	}
	for id := range payouts {
		_, ok := live[id]
		assert.True(t, ok, "orphan payout for %s", id)
	}
}

func TestAddBetPending(t *testing.T) {
	s := stateWithBalance("100")
	bet := newBet("20", "2", domain.OutcomePending)

	s = Apply(s, AddBet{Bet: bet})

	assert.Equal(t, "80", s.Wallet.Balance.String())
	require.Len(t, s.Wallet.Transactions, 1)
	assert.Equal(t, domain.TxBet, s.Wallet.Transactions[0].Type)
	assert.Equal(t, "20", s.Wallet.Transactions[0].Amount.String())
	assert.Equal(t, bet.ID, s.Wallet.Transactions[0].BetID)

	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestAddBetWonCreditsPayout(t *testing.T) {
	s := stateWithBalance("100")
	bet := newBet("20", "2", domain.OutcomeWon)

	s = Apply(s, AddBet{Bet: bet})

	// -20 de stake, +40 de payout
	assert.Equal(t, "120", s.Wallet.Balance.String())
	require.Len(t, s.Wallet.Transactions, 2)
	assert.Equal(t, domain.TxPayout, s.Wallet.Transactions[0].Type)
	assert.Equal(t, "40", s.Wallet.Transactions[0].Amount.String())
	assert.Equal(t, domain.TxBet, s.Wallet.Transactions[1].Type)

	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestAddBetDrawRefundsStake(t *testing.T) {
	s := stateWithBalance("100")
	bet := newBet("20", "3", domain.OutcomeDraw)

	s = Apply(s, AddBet{Bet: bet})

	// Draw devolve a stake integral: saldo não muda
	assert.Equal(t, "100", s.Wallet.Balance.String())
	require.Len(t, s.Wallet.Transactions, 2)
	assert.Equal(t, "20", s.Wallet.Transactions[0].Amount.String())

	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestAddBetLostForfeitsStake(t *testing.T) {
	s := stateWithBalance("100")
	bet := newBet("20", "2", domain.OutcomeLost)

	s = Apply(s, AddBet{Bet: bet})

	// perda é só a ausência de payout, nunca um débito extra
	assert.Equal(t, "80", s.Wallet.Balance.String())
	require.Len(t, s.Wallet.Transactions, 1)

	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestEditPendingToWon(t *testing.T) {
	// Cenário da reconciliação: saldo 100, aposta 20@2 Pending -> saldo 80.
	// Edição para Won: estorna débito (100), redebita (80), credita 40 -> 120.
	s := stateWithBalance("100")
	bet := newBet("20", "2", domain.OutcomePending)
	s = Apply(s, AddBet{Bet: bet})
	require.Equal(t, "80", s.Wallet.Balance.String())

	next := bet
	next.Outcome = domain.OutcomeWon
	s = Apply(s, EditBet{ID: bet.ID, Next: next})

	assert.Equal(t, "120", s.Wallet.Balance.String())
	require.Len(t, s.Wallet.Transactions, 2)

	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestDeleteWonBetClawsBackPayout(t *testing.T) {
	// Continuação do cenário: deletar a aposta Won devolve a stake (+20) e
	// estorna o payout (-40), voltando ao saldo inicial.
	s := stateWithBalance("100")
	bet := newBet("20", "2", domain.OutcomeWon)
	s = Apply(s, AddBet{Bet: bet})
	require.Equal(t, "120", s.Wallet.Balance.String())

	s = Apply(s, DeleteBet{ID: bet.ID})

	assert.Equal(t, "100", s.Wallet.Balance.String())
	assert.Empty(t, s.Wallet.Transactions)
	assert.Empty(t, s.Bets)
}

func TestEditToSameValuesIsIdempotent(t *testing.T) {
	s := stateWithBalance("500")
	bet := newBet("50", "1.8", domain.OutcomeWon)
	s = Apply(s, AddBet{Bet: bet})

	before := s.Wallet.Balance
	txCount := len(s.Wallet.Transactions)

	s = Apply(s, EditBet{ID: bet.ID, Next: bet})

	assert.True(t, s.Wallet.Balance.Equal(before))
	assert.Len(t, s.Wallet.Transactions, txCount)
	checkLinkage(t, s)
}

func TestRepeatedEditsKeepSingleDebit(t *testing.T) {
	s := stateWithBalance("100")
	bet := newBet("10", "2", domain.OutcomePending)
	s = Apply(s, AddBet{Bet: bet})

	// várias edições seguidas não acumulam transações
	for _, outcome := range []domain.BetOutcome{domain.OutcomeWon, domain.OutcomeLost, domain.OutcomeDraw, domain.OutcomeWon} {
		next := bet
		next.Outcome = outcome
		s = Apply(s, EditBet{ID: bet.ID, Next: next})
		checkIntegrity(t, s, dec("100"))
		checkLinkage(t, s)
	}

	assert.Equal(t, "110", s.Wallet.Balance.String()) // Won: -10 +20
	assert.Len(t, s.Wallet.Transactions, 2)
}

func TestDeleteThenReAddRestoresBalance(t *testing.T) {
	s := stateWithBalance("200")
	bet := newBet("30", "2.5", domain.OutcomeWon)
	s = Apply(s, AddBet{Bet: bet})
	balance := s.Wallet.Balance

	s = Apply(s, DeleteBet{ID: bet.ID})
	again := newBet("30", "2.5", domain.OutcomeWon) // mesmo conteúdo, ID novo
	s = Apply(s, AddBet{Bet: again})

	assert.True(t, s.Wallet.Balance.Equal(balance))
	checkIntegrity(t, s, dec("200"))
	checkLinkage(t, s)
}

func TestEditUnknownIDIsNoop(t *testing.T) {
	s := stateWithBalance("100")
	s = Apply(s, AddBet{Bet: newBet("10", "2", domain.OutcomePending)})
	before := s

	s = Apply(s, EditBet{ID: "nope", Next: newBet("99", "9", domain.OutcomeWon)})

	assert.Equal(t, before.Bets, s.Bets)
	assert.Equal(t, before.Wallet, s.Wallet)
}

func TestDeleteUnknownIDIsNoop(t *testing.T) {
	s := stateWithBalance("100")
	s = Apply(s, AddBet{Bet: newBet("10", "2", domain.OutcomePending)})
	balance := s.Wallet.Balance

	s = Apply(s, DeleteBet{ID: "nope"})

	assert.True(t, s.Wallet.Balance.Equal(balance))
	assert.Len(t, s.Bets, 1)
	assert.Len(t, s.Wallet.Transactions, 1)
}

func TestReplaceBetsReconcilesByID(t *testing.T) {
	s := stateWithBalance("100")
	a := newBet("10", "2", domain.OutcomePending)
	b := newBet("20", "3", domain.OutcomePending)
	s = Apply(s, AddBet{Bet: a})
	s = Apply(s, AddBet{Bet: b})
	require.Equal(t, "70", s.Wallet.Balance.String())

	// edita `a` para Won, mantém `b`, adiciona `c` nova
	edited := a
	edited.Outcome = domain.OutcomeWon
	c := newBet("5", "4", domain.OutcomeLost)
	s = Apply(s, ReplaceBets{Bets: []domain.Bet{edited, b, c}})

	// a: -10 +20, b: -20, c: -5 => 100 -10 +20 -20 -5 = 85
	assert.Equal(t, "85", s.Wallet.Balance.String())
	assert.Len(t, s.Bets, 3)
	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestReplaceBetsRetractsAbsentBets(t *testing.T) {
	s := stateWithBalance("100")
	a := newBet("10", "2", domain.OutcomeWon)
	b := newBet("20", "2", domain.OutcomePending)
	s = Apply(s, AddBet{Bet: a})
	s = Apply(s, AddBet{Bet: b})

	// coleção nova sem `a`: as transações dela somem e o efeito é revertido
	s = Apply(s, ReplaceBets{Bets: []domain.Bet{b}})

	assert.Equal(t, "80", s.Wallet.Balance.String())
	assert.Len(t, s.Bets, 1)
	checkIntegrity(t, s, dec("100"))
	checkLinkage(t, s)
}

func TestDepositThenWithdrawOrdering(t *testing.T) {
	s := stateWithBalance("100")
	now := time.Now()

	s = Apply(s, Deposit{Amount: dec("50"), At: now})
	s = Apply(s, Withdraw{Amount: dec("30"), At: now.Add(time.Minute)})

	assert.Equal(t, "120", s.Wallet.Balance.String())
	require.Len(t, s.Wallet.Transactions, 2)
	// mais recente primeiro
	assert.Equal(t, domain.TxWithdrawal, s.Wallet.Transactions[0].Type)
	assert.Equal(t, domain.TxDeposit, s.Wallet.Transactions[1].Type)
	checkIntegrity(t, s, dec("100"))
}

func TestEngineAllowsNegativeBalance(t *testing.T) {
	// O motor não policia saldo: a validação fica na borda HTTP.
	s := stateWithBalance("10")
	s = Apply(s, AddBet{Bet: newBet("25", "2", domain.OutcomePending)})

	assert.Equal(t, "-15", s.Wallet.Balance.String())
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	s := stateWithBalance("100")
	bet := newBet("20", "2", domain.OutcomeWon)
	s = Apply(s, AddBet{Bet: bet})

	snapshot := Apply(s, DeleteBet{ID: bet.ID})
	_ = snapshot

	// estado anterior intacto após derivar um novo
	assert.Len(t, s.Bets, 1)
	assert.Len(t, s.Wallet.Transactions, 2)
	assert.Equal(t, "120", s.Wallet.Balance.String())
}

func TestMixedSequenceKeepsInvariants(t *testing.T) {
	s := stateWithBalance("0")
	s = Apply(s, Deposit{Amount: dec("300"), At: time.Now()})

	bets := []domain.Bet{
		newBet("25", "1.5", domain.OutcomeWon),
		newBet("40", "2.2", domain.OutcomeLost),
		newBet("15", "3", domain.OutcomeDraw),
		newBet("60", "1.9", domain.OutcomePending),
	}
	for _, b := range bets {
		s = Apply(s, AddBet{Bet: b})
		checkIntegrity(t, s, decimal.Zero)
		checkLinkage(t, s)
	}

	edited := bets[3]
	edited.Outcome = domain.OutcomeWon
	s = Apply(s, EditBet{ID: bets[3].ID, Next: edited})
	s = Apply(s, DeleteBet{ID: bets[1].ID})
	s = Apply(s, Withdraw{Amount: dec("100"), At: time.Now()})

	checkIntegrity(t, s, decimal.Zero)
	checkLinkage(t, s)
}
