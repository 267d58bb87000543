package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type ToggleFavoriteRequest struct {
	ProviderID uint `json:"provider_id"`
}

func (req *ToggleFavoriteRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProviderID, validation.Required),
	)
}
