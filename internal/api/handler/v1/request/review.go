package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateReviewRequest struct {
	ProviderID uint   `json:"provider_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

func (req *CreateReviewRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProviderID, validation.Required),
		validation.Field(&req.Rating, validation.Required, validation.Min(1), validation.Max(5)),
		validation.Field(&req.Comment, validation.Required, validation.Length(1, 1000)),
	)
}

type ReplyReviewRequest struct {
	Reply string `json:"reply"`
}

func (req *ReplyReviewRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Reply, validation.Required, validation.Length(1, 1000)),
	)
}
