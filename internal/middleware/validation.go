package middleware

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	apierrors "bondpulse/internal/errors"
)

// maxTickerLength bounds symbols accepted on the URL
const maxTickerLength = 16

// Validator checks request structs and path values with validator/v10
type Validator struct {
	validate *validator.Validate
}

// NewValidator creates a validator with the custom tags registered and
// json names used in error messages
func NewValidator() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("ticker", isValidTicker)

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return &Validator{validate: v}
}

// ValidateStruct returns an *apierrors.APIError listing every failed field
func (v *Validator) ValidateStruct(s any) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	out := make([]apierrors.ValidationError, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: formatValidationError(fe),
		})
	}
	return apierrors.NewValidationErrors(out)
}

// ValidateTicker checks a symbol taken from the URL
func (v *Validator) ValidateTicker(symbol string) error {
	if err := v.validate.Var(symbol, "required,ticker"); err != nil {
		return apierrors.ErrValidation("ticker", "ticker must be 1-16 letters, digits, '.', '_' or '-'")
	}
	return nil
}

func formatValidationError(fe validator.FieldError) string {
	field, param := fe.Field(), fe.Param()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, strings.ReplaceAll(param, " ", ", "))
	case "ticker":
		return fmt.Sprintf("%s must be a valid ticker symbol", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, param)
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, param)
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// isValidTicker accepts letters, digits, '.', '_' and '-' in either case
func isValidTicker(fl validator.FieldLevel) bool {
	ticker := fl.Field().String()
	if len(ticker) == 0 || len(ticker) > maxTickerLength {
		return false
	}
	for _, ch := range ticker {
		switch {
		case ch >= 'A' && ch <= 'Z', ch >= 'a' && ch <= 'z', ch >= '0' && ch <= '9':
		case ch == '.' || ch == '_' || ch == '-':
		default:
			return false
		}
	}
	return true
}
