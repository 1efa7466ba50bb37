// Package validator provides the shared struct validator instance,
// wired through fx into the components that check tagged structs.
package validator

import (
	"github.com/go-playground/validator/v10"
)

func NewValidator() *validator.Validate {
	return validator.New()
}
