package events

// Evento publicado no tópico "ledger_events" após cada mutação aplicada
// com sucesso pelo tracker-service.
type LedgerEvent struct {
	Op           string `json:"op"` // "bet_added" | "bet_edited" | "bet_deleted" | "deposit" | "withdrawal"
	BetID        string `json:"bet_id,omitempty"`
	Amount       string `json:"amount,omitempty"` // valor decimal como string
	Payout       string `json:"payout,omitempty"`
	BalanceAfter string `json:"balance_after"`
	TxCount      int    `json:"tx_count"` // tamanho do histórico após a operação
	TsUnixMs     int64  `json:"ts_unix_ms"`
}
