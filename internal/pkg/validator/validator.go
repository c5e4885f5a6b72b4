package validator

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"societyhub/internal/domain"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate struct fields
func Validate(v interface{}) map[string]string {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return map[string]string{"_": err.Error()}
	}

	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		out[fe.Field()] = fe.Tag()
	}
	return out
}

// Struct validates v and returns a domain validation error describing every
// failing field, or nil.
func Struct(v interface{}) error {
	if fields := Validate(v); fields != nil {
		return domain.InvalidFields("invalid input", fields)
	}
	return nil
}
