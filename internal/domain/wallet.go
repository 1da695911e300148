package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type WalletTransactionType string

const (
	TxDeposit    WalletTransactionType = "deposit"
	TxWithdrawal WalletTransactionType = "withdrawal"
	TxBet        WalletTransactionType = "bet"
	TxPayout     WalletTransactionType = "payout"
)

// WalletTransaction é um movimento do ledger. Amount é sempre a magnitude
// (não-negativa); o sinal vem do tipo. BetID só existe em bet/payout e é
// referência de consulta, nunca de posse.
type WalletTransaction struct {
	ID     string
	Type   WalletTransactionType
	Amount decimal.Decimal
	Date   time.Time
	BetID  string
}

// Wallet é o saldo corrente mais o histórico ordenado do mais recente
// para o mais antigo.
type Wallet struct {
	Balance      decimal.Decimal
	Transactions []WalletTransaction
}
