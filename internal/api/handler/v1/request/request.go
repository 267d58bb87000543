package request

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

const eventDateLayout = "2006-01-02"

type CreateRequestRequest struct {
	ProviderID  uint   `json:"provider_id"`
	ContactName string `json:"contact_name"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	EventType   string `json:"event_type"`
	EventDate   string `json:"event_date,omitempty"`
	GuestCount  *int   `json:"guest_count,omitempty"`
	BudgetMin   *int   `json:"budget_min,omitempty"`
	BudgetMax   *int   `json:"budget_max,omitempty"`
	Message     string `json:"message"`
}

func (req *CreateRequestRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.ProviderID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.ContactName, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.EventType, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.EventDate, validation.Date(eventDateLayout)),
		validation.Field(&req.GuestCount, validation.Min(1)),
		validation.Field(&req.BudgetMin, validation.Min(0)),
		validation.Field(&req.BudgetMax, validation.Min(0)),
		validation.Field(&req.Message, validation.Required, validation.Length(10, 2000)),
	)
	if err != nil {
		return err
	}

	return nil
}

// ParsedEventDate returns the event date as a time pointer, nil when the
// field was omitted. Call Validate first.
func (req *CreateRequestRequest) ParsedEventDate() *time.Time {
	if req.EventDate == "" {
		return nil
	}

	date, err := time.Parse(eventDateLayout, req.EventDate)
	if err != nil {
		return nil
	}

	return &date
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (req *UpdateStatusRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Status, validation.Required,
			validation.In("RESPONDED", "ACCEPTED", "REFUSED", "ARCHIVED")),
	)
}

type PostMessageRequest struct {
	Content string `json:"content"`
}

func (req *PostMessageRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Content, validation.Required, validation.Length(1, 2000)),
	)
}
