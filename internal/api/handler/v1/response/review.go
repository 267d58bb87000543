package response

import (
	"github.com/centralevents/central-events-api/internal/domain"
)

// ProviderReviewsResponse is the public review listing for one provider.
type ProviderReviewsResponse struct {
	Reviews []domain.Review      `json:"reviews"`
	Summary domain.RatingSummary `json:"summary"`
}
