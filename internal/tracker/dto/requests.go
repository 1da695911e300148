package dto

import "github.com/shopspring/decimal"

type LoginRequest struct {
	Role string `json:"role"` // "USER" | "VISITOR"
}

// BetRequest cobre POST /bets e PUT /bets/{id}. Payout e profit não são
// aceitos do cliente: são sempre recalculados de amount/odds/outcome.
type BetRequest struct {
	Date     string          `json:"date"` // ISO 8601
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Odds     decimal.Decimal `json:"odds"`
	Outcome  string          `json:"outcome"`
	Notes    string          `json:"notes,omitempty"`
	Favorite bool            `json:"favorite"`
}

type MovementRequest struct {
	Amount decimal.Decimal `json:"amount"`
}
