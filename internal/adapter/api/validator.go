package api

import (
	"github.com/go-playground/validator/v10"
)

// Validator plugs go-playground/validator into Echo's c.Validate.
type Validator struct {
	validate *validator.Validate
}

func NewValidator() *Validator {
	return &Validator{validate: validator.New()}
}

// Validate returns validator.ValidationErrors as is so response.Error can
// turn the first failure into a message.
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}
