package request

import (
	"errors"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
)

// Lookahead assertions require regexp2; the stdlib engine rejects them.
const passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var (
	passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

	errInvalidPassword = errors.New("the password must be at least 8 characters and contain 1 letter and 1 number")
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Role     string `json:"role"`

	// Provider profile, required when role is "provider".
	CompanyName string `json:"company_name,omitempty"`
	Category    string `json:"category,omitempty"`
	City        string `json:"city,omitempty"`
	Description string `json:"description,omitempty"`
}

func (req *SignupRequest) Validate() error {
	err := validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Role, validation.Required, validation.In("organizer", "provider")),
	)
	if err != nil {
		return err
	}

	if matched, _ := passwordExp.MatchString(req.Password); !matched {
		return errInvalidPassword
	}

	if req.Role == "provider" {
		return validation.ValidateStruct(
			req,
			validation.Field(&req.CompanyName, validation.Required, validation.Length(2, 100)),
			validation.Field(&req.Category, validation.Required, validation.In(
				"caterer", "photographer", "dj", "venue", "florist", "other")),
			validation.Field(&req.City, validation.Required, validation.Length(2, 100)),
			validation.Field(&req.Description, validation.Length(0, 2000)),
		)
	}

	return nil
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (req *LoginRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Email, validation.Required, is.Email),
		validation.Field(&req.Password, validation.Required),
	)
}
