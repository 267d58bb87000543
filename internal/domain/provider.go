package domain

import "time"

// Provider is a service vendor accepting quote requests. TokenBalance is a
// materialized projection of the transaction ledger and is only ever written
// in the same store transaction that appends a ledger entry.
type Provider struct {
	ID           uint      `json:"id"`
	UserID       uint      `json:"user_id"`
	Slug         string    `json:"slug"`
	CompanyName  string    `json:"company_name"`
	Category     string    `json:"category"` // "caterer", "photographer", "dj", "venue", ...
	City         string    `json:"city"`
	Description  string    `json:"description"`
	TokenBalance int       `json:"token_balance"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type ProviderBalance struct {
	ProviderID  uint   `json:"provider_id"`
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
	Balance     int    `json:"balance"`
}
