package auth

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// validateClaims rejects well-signed tokens that do not carry a usable identity.
func validateClaims(claims CustomClaims) error {
	return validate.Struct(claims)
}
