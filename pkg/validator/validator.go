// Package validator wraps go-playground/validator with the custom rules the
// transfer API needs.
package validator

import (
	"fmt"
	"html"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := &Validator{
		validate: validator.New(),
	}
	v.registerCustomValidations()
	return v
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			var errMessages []string
			for _, e := range validationErrors {
				errMessages = append(errMessages, fmt.Sprintf(
					"Field '%s' failed validation '%s'",
					e.Field(),
					e.Tag(),
				))
			}
			return fmt.Errorf("validation failed: %v", errMessages)
		}
		return err
	}
	return nil
}

// ValidateStructured returns a field -> message map for frontend usage.
func (v *Validator) ValidateStructured(i interface{}) map[string]string {
	errs := make(map[string]string)
	if err := v.validate.Struct(i); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			for _, e := range validationErrors {
				msg := fmt.Sprintf("failed validation on '%s'", e.Tag())
				switch e.Tag() {
				case "required":
					msg = "This field is required"
				case "channel":
					msg = "Channel must be wallet, qr or bank"
				case "pin":
					msg = "PIN must be exactly 4 digits"
				case "money":
					msg = "Amount must be positive with at most 2 decimal places"
				}
				errs[e.Field()] = msg
			}
			return errs
		}
		errs["_"] = err.Error()
		return errs
	}
	return nil
}

var (
	pinPattern   = regexp.MustCompile(`^[0-9]{4}$`)
	otpPattern   = regexp.MustCompile(`^[0-9]{6}$`)
	phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

func (v *Validator) registerCustomValidations() {
	// channel: one of the three supported transfer channels
	_ = v.validate.RegisterValidation("channel", func(fl validator.FieldLevel) bool {
		switch fl.Field().String() {
		case "wallet", "qr", "bank":
			return true
		}
		return false
	})

	// pin: exactly four numeric characters
	_ = v.validate.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pinPattern.MatchString(fl.Field().String())
	})

	// otp: exactly six numeric characters
	_ = v.validate.RegisterValidation("otp", func(fl validator.FieldLevel) bool {
		return otpPattern.MatchString(fl.Field().String())
	})

	// phone: loose E.164-style phone number
	_ = v.validate.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})

	// money: positive decimal string with at most two fractional digits
	_ = v.validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return d.IsPositive() && d.Exponent() >= -2
	})
}

// Sanitize strips control characters and escapes HTML in user-supplied text.
func Sanitize(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, s)
	return html.EscapeString(s)
}
