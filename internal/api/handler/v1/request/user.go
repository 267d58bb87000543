package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type UpdateProfileRequest struct {
	Name string `json:"name"`
}

func (req *UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
	)
}

type ChangePasswordRequest struct {
	Password string `json:"password"`
}

func (req *ChangePasswordRequest) Validate() error {
	if err := validation.ValidateStruct(
		req,
		validation.Field(&req.Password, validation.Required),
	); err != nil {
		return err
	}

	if matched, _ := passwordExp.MatchString(req.Password); !matched {
		return errInvalidPassword
	}

	return nil
}
