package domain

import "time"

// Review is an organizer's star rating of a provider, optionally answered by
// the provider. At most one review exists per (organizer, provider) pair.
type Review struct {
	ID          uint       `json:"id"`
	ProviderID  uint       `json:"provider_id"`
	OrganizerID uint       `json:"organizer_id"`
	AuthorName  string     `json:"author_name"`
	Rating      int        `json:"rating"` // 1..5 stars
	Comment     string     `json:"comment"`
	Reply       string     `json:"reply,omitempty"`
	RepliedAt   *time.Time `json:"replied_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// RatingSummary aggregates a provider's reviews for the directory page.
type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}
