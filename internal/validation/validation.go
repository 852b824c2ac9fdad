// Package validation wraps go-playground/validator so forms report every violation at once.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"storefront/internal/apperr"
)

// Validator checks structs against their `validate` tags.
type Validator struct {
	validate *validator.Validate
}

// New returns a Validator that reports json field names and understands decimal amounts.
func New() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	return &Validator{validate: v}
}

// Struct validates s and returns the violations in field order, or nil.
func (v *Validator) Struct(s interface{}) ([]apperr.Violation, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate %T: %w", s, err)
	}
	violations := make([]apperr.Violation, 0, len(verrs))
	for _, e := range verrs {
		violations = append(violations, apperr.Violation{
			Field:   e.Field(),
			Rule:    e.Tag(),
			Message: message(e),
		})
	}
	return violations, nil
}

// Check validates s and folds any violations into a single validation error.
func (v *Validator) Check(s interface{}, summary string) error {
	violations, err := v.Struct(s)
	if err != nil {
		return err
	}
	if len(violations) > 0 {
		return apperr.Validation(summary, violations...)
	}
	return nil
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", e.Field())
	case "email":
		return "Please enter a valid email address"
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", e.Field(), e.Param())
	case "min":
		if isNumber(e.Kind()) {
			return fmt.Sprintf("%s must be at least %s", e.Field(), e.Param())
		}
		return fmt.Sprintf("%s must have at least %s entries", e.Field(), e.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s long", e.Field(), e.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", e.Field(), e.Param())
	default:
		return fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
	}
}

func isNumber(k reflect.Kind) bool {
	switch k {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}
