package domain

import "time"

type TransactionType string

const (
	TransactionPurchase TransactionType = "PURCHASE"
	TransactionSpend    TransactionType = "SPEND"
	TransactionGrant    TransactionType = "GRANT"
	TransactionRefund   TransactionType = "REFUND"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionPurchase, TransactionSpend, TransactionGrant, TransactionRefund:
		return true
	}
	return false
}

// TokenTransaction is an immutable ledger entry. BalanceAfter snapshots the
// provider balance right after the entry was applied; for any provider the
// entries ordered by creation time chain up to the current balance.
type TokenTransaction struct {
	ID           uint            `json:"id"`
	ProviderID   uint            `json:"provider_id"`
	Amount       int             `json:"amount"`
	BalanceAfter int             `json:"balance_after"`
	Type         TransactionType `json:"type"`
	Description  string          `json:"description"`
	RequestID    *uint           `json:"request_id,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}
