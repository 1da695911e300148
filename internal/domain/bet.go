package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BetOutcome string

const (
	OutcomePending BetOutcome = "Pending"
	OutcomeWon     BetOutcome = "Won"
	OutcomeLost    BetOutcome = "Lost"
	OutcomeDraw    BetOutcome = "Draw"
)

func (o BetOutcome) Valid() bool {
	switch o {
	case OutcomePending, OutcomeWon, OutcomeLost, OutcomeDraw:
		return true
	}
	return false
}

type BetType string

const (
	TypeWinner   BetType = "Winner"
	TypeTotal    BetType = "Total"
	TypeHandicap BetType = "Handicap"
	TypeOther    BetType = "Other"
)

func (t BetType) Valid() bool {
	switch t {
	case TypeWinner, TypeTotal, TypeHandicap, TypeOther:
		return true
	}
	return false
}

// Bet é o fato de aposta registrado pelo usuário.
// Payout e Profit são sempre derivados de Amount/Odds/Outcome, nunca gravados.
type Bet struct {
	ID       string
	Date     time.Time
	Type     BetType
	Amount   decimal.Decimal // stake, >= 0
	Odds     decimal.Decimal // odd decimal, >= 1
	Outcome  BetOutcome
	Notes    string
	Favorite bool
}

// Settled indica se o resultado gera crédito de payout na carteira.
// Draw devolve a stake integral (política de reembolso).
func (b Bet) Settled() bool {
	return b.Outcome == OutcomeWon || b.Outcome == OutcomeDraw
}

// Payout é o retorno bruto: Amount*Odds se Won, Amount se Draw, zero nos demais.
func (b Bet) Payout() decimal.Decimal {
	switch b.Outcome {
	case OutcomeWon:
		return b.Amount.Mul(b.Odds)
	case OutcomeDraw:
		return b.Amount
	}
	return decimal.Zero
}

// Profit é o ganho líquido: Amount*(Odds-1) se Won, -Amount se Lost, zero nos demais.
func (b Bet) Profit() decimal.Decimal {
	switch b.Outcome {
	case OutcomeWon:
		return b.Amount.Mul(b.Odds.Sub(decimal.NewFromInt(1)))
	case OutcomeLost:
		return b.Amount.Neg()
	}
	return decimal.Zero
}
