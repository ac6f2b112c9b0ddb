// Package web defines common components for a web application.
package web

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Response holds the common response type for all APIs.
type Response struct {
	AccessToken          string `json:"access_token,omitempty"`
	AccessTokenExpiresAt string `json:"access_token_expires_at,omitempty"`
	Data                 any    `json:"data,omitempty"`
	Error                string `json:"error,omitempty"`
}

// Error wraps a given err into a json friendly response.
func Error(err error) Response {
	return Response{Error: err.Error()}
}

// GetErrorMsg returns a readable message for the first binding validation failure.
func GetErrorMsg(ve validator.ValidationErrors) string {
	field := ve[0]

	switch field.Tag() {
	case "required":
		return field.Field() + " is required"
	case "email":
		return field.Field() + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field.Field(), field.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field.Field(), field.Param())
	case "accnumber":
		return field.Field() + " must be a sixteen-digit account number"
	case "numeric":
		return field.Field() + " must be numeric"
	}

	return field.Field() + " is invalid"
}
