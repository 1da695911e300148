package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/radieske/bet-tracker/internal/domain"
	"github.com/radieske/bet-tracker/internal/stats"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"` // "bearer"
}

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type BetResponse struct {
	ID       string          `json:"id"`
	Date     time.Time       `json:"date"`
	Type     string          `json:"type"`
	Amount   decimal.Decimal `json:"amount"`
	Odds     decimal.Decimal `json:"odds"`
	Outcome  string          `json:"outcome"`
	Payout   decimal.Decimal `json:"payout"`
	Profit   decimal.Decimal `json:"profit"`
	Notes    string          `json:"notes,omitempty"`
	Favorite bool            `json:"favorite"`
}

func FromBet(b domain.Bet) BetResponse {
	return BetResponse{
		ID:       b.ID,
		Date:     b.Date,
		Type:     string(b.Type),
		Amount:   b.Amount,
		Odds:     b.Odds,
		Outcome:  string(b.Outcome),
		Payout:   b.Payout(),
		Profit:   b.Profit(),
		Notes:    b.Notes,
		Favorite: b.Favorite,
	}
}

type TransactionResponse struct {
	ID     string          `json:"id"`
	Type   string          `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Date   time.Time       `json:"date"`
	BetID  string          `json:"betId,omitempty"`
}

type WalletResponse struct {
	Balance      decimal.Decimal       `json:"balance"`
	Transactions []TransactionResponse `json:"transactions"`
}

func FromWallet(w domain.Wallet) WalletResponse {
	out := WalletResponse{
		Balance:      w.Balance,
		Transactions: make([]TransactionResponse, 0, len(w.Transactions)),
	}
	for _, t := range w.Transactions {
		out.Transactions = append(out.Transactions, TransactionResponse{
			ID:     t.ID,
			Type:   string(t.Type),
			Amount: t.Amount,
			Date:   t.Date,
			BetID:  t.BetID,
		})
	}
	return out
}

type StatsResponse struct {
	TotalBets   int             `json:"total_bets"`
	Won         int             `json:"won"`
	Lost        int             `json:"lost"`
	Draw        int             `json:"draw"`
	Pending     int             `json:"pending"`
	TotalProfit decimal.Decimal `json:"total_profit"`
	WinRate     float64         `json:"win_rate"` // percentual
	AvgStake    decimal.Decimal `json:"avg_stake"`
	BiggestWin  decimal.Decimal `json:"biggest_win"`
	BiggestLoss decimal.Decimal `json:"biggest_loss"`
	Favorites   int             `json:"favorites"`
}

func FromSummary(s stats.Summary) StatsResponse {
	return StatsResponse{
		TotalBets:   s.TotalBets,
		Won:         s.Won,
		Lost:        s.Lost,
		Draw:        s.Draw,
		Pending:     s.Pending,
		TotalProfit: s.TotalProfit,
		WinRate:     s.WinRate,
		AvgStake:    s.AvgStake,
		BiggestWin:  s.BiggestWin,
		BiggestLoss: s.BiggestLoss,
		Favorites:   s.FavoriteBets,
	}
}

type ProfitPointResponse struct {
	Date   string          `json:"date"` // "2006-01-02"
	Profit decimal.Decimal `json:"profit"`
}
