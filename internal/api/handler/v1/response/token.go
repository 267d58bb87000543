package response

import (
	"github.com/centralevents/central-events-api/internal/domain"
)

type BalanceResponse struct {
	Balance int `json:"balance"`
}

// TokenStatusResponse is the provider's token dashboard payload.
type TokenStatusResponse struct {
	Balance      int                       `json:"balance"`
	Transactions []domain.TokenTransaction `json:"transactions"`
}

type UnlockStatusResponse struct {
	Unlocked bool `json:"unlocked"`
}
