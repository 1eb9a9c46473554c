package models

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// validate is the shared validator instance.
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report JSON names so errors match what hyprctl prints.
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	validate.RegisterValidation("address", validateAddress)
}

// FieldError describes one invalid field of a record.
type FieldError struct {
	Field   string
	Message string
	Value   any
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s (got %v)", e.Field, e.Message, e.Value)
}

// ValidationError reports every invalid field of one record returned by the
// compositor.
type ValidationError struct {
	Kind   string
	Index  int
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	if e.Index >= 0 {
		fmt.Fprintf(&sb, "invalid %s at index %d", e.Kind, e.Index)
	} else {
		fmt.Fprintf(&sb, "invalid %s", e.Kind)
	}
	for i, fe := range e.Fields {
		if i == 0 {
			sb.WriteString(": ")
		} else {
			sb.WriteString("; ")
		}
		sb.WriteString(fe.Error())
	}
	return sb.String()
}

func check(kind string, index int, record any) error {
	err := validate.Struct(record)
	if err == nil {
		return nil
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return fmt.Errorf("validate %s: %w", kind, err)
	}
	out := &ValidationError{Kind: kind, Index: index}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   trimRoot(fe.Namespace()),
			Message: formatValidationError(fe),
			Value:   fe.Value(),
		})
	}
	return out
}

func trimRoot(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// formatValidationError converts validator.FieldError to a human-readable message.
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "len":
		return fmt.Sprintf("must have exactly %s elements", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "address":
		return "must be a hexadecimal address"
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// validateAddress accepts hexadecimal strings with or without the 0x prefix,
// the two forms the compositor uses in JSON replies and event frames.
func validateAddress(fl validator.FieldLevel) bool {
	return IsAddress(fl.Field().String())
}

// IsAddress reports whether s is a window address.
func IsAddress(s string) bool {
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if s == "" {
		return false
	}
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
