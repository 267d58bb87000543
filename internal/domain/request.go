package domain

import "time"

type RequestStatus string

const (
	StatusPending   RequestStatus = "PENDING"
	StatusResponded RequestStatus = "RESPONDED"
	StatusAccepted  RequestStatus = "ACCEPTED"
	StatusRefused   RequestStatus = "REFUSED"
	StatusArchived  RequestStatus = "ARCHIVED"
)

func (s RequestStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusResponded, StatusAccepted, StatusRefused, StatusArchived:
		return true
	}
	return false
}

// IsTerminal reports whether no further transitions are allowed.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusArchived
}

// RequiresToken reports whether transitioning into s counts as engaging with
// the organizer and therefore must pass the unlock gate. REFUSED and ARCHIVED
// are always free.
func (s RequestStatus) RequiresToken() bool {
	switch s {
	case StatusResponded, StatusAccepted:
		return true
	case StatusPending, StatusRefused, StatusArchived:
		return false
	}
	return false
}

// QuoteRequest is an organizer's quote inquiry directed at one provider.
// Requests are never deleted; archival is a status.
type QuoteRequest struct {
	ID          uint          `json:"id"`
	OrganizerID uint          `json:"organizer_id"`
	ProviderID  uint          `json:"provider_id"`
	ContactName string        `json:"contact_name"`
	Email       string        `json:"email"`
	Phone       string        `json:"phone,omitempty"`
	EventType   string        `json:"event_type"`
	EventDate   *time.Time    `json:"event_date,omitempty"`
	GuestCount  *int          `json:"guest_count,omitempty"`
	BudgetMin   *int          `json:"budget_min,omitempty"`
	BudgetMax   *int          `json:"budget_max,omitempty"`
	Message     string        `json:"message"`
	Status      RequestStatus `json:"status"`
	Messages    []Message     `json:"messages,omitempty"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

type Message struct {
	ID         uint      `json:"id"`
	RequestID  uint      `json:"request_id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	AuthorRole string    `json:"author_role,omitempty"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}
