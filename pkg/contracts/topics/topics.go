package topics

const (
	// Ledger
	LedgerEvents = "ledger_events"

	// DLQs
	LedgerEventsDLQ = "ledger_events_dlq"
)
