package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator wraps go-playground/validator with the service's custom rules and messages.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field failure
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return ve[0].String()
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

// First returns the message clients see for the whole error set.
func (ve ValidationErrors) First() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	return ve[0].String()
}

func (e ValidationError) String() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

func New() *Validator {
	validate := validator.New()

	// Report fields by their JSON (or form) name so messages match the request body.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"json", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	v := &Validator{validate: validate}
	v.registerBusinessRules()
	return v
}

// Validate checks s against its struct tags. It returns nil or ValidationErrors.
func (v *Validator) Validate(s interface{}) error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}
	return v.toValidationErrors(err)
}

// Var validates a single value against a tag expression, reporting failures under field.
func (v *Validator) Var(field string, value interface{}, tag string) error {
	err := v.validate.Var(value, tag)
	if err == nil {
		return nil
	}
	verrs := v.toValidationErrors(err)
	for i := range verrs {
		verrs[i].Field = field
	}
	return verrs
}

func (v *Validator) toValidationErrors(err error) ValidationErrors {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: "request", Message: err.Error(), Rule: "invalid"}}
	}

	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fe.Field(),
			Message: getErrorMessage(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}
	return out
}

// getErrorMessage returns user-friendly error messages
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "min":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("length must be at least %s characters long", err.Param())
		}
		return fmt.Sprintf("must be at least %s", err.Param())
	case "max":
		if err.Kind() == reflect.String {
			return fmt.Sprintf("length must be less than or equal to %s characters long", err.Param())
		}
		return fmt.Sprintf("must be at most %s", err.Param())
	case "signup_role":
		return "must be one of [contributor, viewer]"
	case "question_status":
		return "must be one of [approved, rejected, pending]"
	case "question_text", "not_blank":
		return "is not allowed to be empty"
	case "password_bytes":
		return fmt.Sprintf("must not exceed %d bytes", MaxPasswordBytes)
	default:
		return fmt.Sprintf("validation failed for rule '%s'", err.Tag())
	}
}
