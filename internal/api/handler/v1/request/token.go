package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type GrantTokensRequest struct {
	ProviderID uint   `json:"provider_id"`
	Amount     int    `json:"amount"`
	Reason     string `json:"reason"`
}

func (req *GrantTokensRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.ProviderID, validation.Required, validation.Min(uint(1))),
		validation.Field(&req.Amount, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&req.Reason, validation.Required, validation.Length(1, 200)),
	)
}

type PurchaseTokensRequest struct {
	Package string `json:"package"`
}

func (req *PurchaseTokensRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Package, validation.Required,
			validation.In("starter", "popular", "pro")),
	)
}
