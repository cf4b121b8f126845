package validation

import (
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator wraps the schema checks shared by source rows and report payloads
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a validator with the decimal tag registered and field
// names taken from csv/json tags.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterTagNameFunc(fieldName)
	_ = v.RegisterValidation("decimal", func(fl validator.FieldLevel) bool {
		_, err := ParseDecimal(fl.Field().String())
		return err == nil
	})
	return &Validator{validate: v}
}

// Validate runs struct tag validation
func (v *Validator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

// FormatValidationErrors turns validator errors into per-field messages
func (v *Validator) FormatValidationErrors(err error) map[string]string {
	errors := make(map[string]string)

	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		for _, e := range validationErrors {
			field := e.Field()
			switch e.Tag() {
			case "required":
				errors[field] = field + " is required"
			case "email":
				errors[field] = field + " must be a valid email address"
			case "max":
				errors[field] = field + " must be at most " + e.Param() + " characters"
			case "oneof":
				errors[field] = field + " must be one of [" + e.Param() + "]"
			case "decimal":
				errors[field] = field + " must be a decimal number"
			default:
				errors[field] = field + " is invalid"
			}
		}
	}

	return errors
}

// reason flattens field messages into a stable single-line string for diagnostics
func (v *Validator) reason(err error) string {
	fields := v.FormatValidationErrors(err)
	if len(fields) == 0 {
		return err.Error()
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	messages := make([]string, len(keys))
	for i, key := range keys {
		messages[i] = fields[key]
	}
	return strings.Join(messages, "; ")
}

// ParseDecimal coerces a numeric source string; a decimal comma is accepted.
// Empty input is zero.
func ParseDecimal(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid decimal %q", s)
	}
	return d, nil
}

// SplitList splits a multi-valued contact column on commas or semicolons
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ';'
	})
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func fieldName(fld reflect.StructField) string {
	for _, tag := range []string{"csv", "json"} {
		name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}
