package models

// TransactionStatus is the lifecycle status of a payment transaction.
// Transitions only move forward; success and failed are terminal.
type TransactionStatus string

const (
	TransactionInitialized TransactionStatus = "initialized"
	TransactionPending     TransactionStatus = "pending"
	TransactionSuccess     TransactionStatus = "success"
	TransactionFailed      TransactionStatus = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionSuccess || s == TransactionFailed
}

// Transaction tracks one payment attempt against the gateway.
type Transaction struct {
	TxRef    string            `json:"tx_ref"`
	Amount   float64           `json:"amount"`
	Currency string            `json:"currency"`
	Status   TransactionStatus `json:"status"`
}
