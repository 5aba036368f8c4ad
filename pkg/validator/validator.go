package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TagCPF is the struct tag that checks the XXX.XXX.XXX-XX format.
const TagCPF = "cpf"

var cpfPattern = regexp.MustCompile(`^\d{3}\.\d{3}\.\d{3}-\d{2}$`)

// IsCPF reports whether s has the XXX.XXX.XXX-XX shape. Check digits are not
// verified.
func IsCPF(s string) bool {
	return cpfPattern.MatchString(s)
}

func validateCPF(fl validator.FieldLevel) bool {
	return IsCPF(fl.Field().String())
}

// Register installs the cpf tag, any extra tags, and reports fields by their
// json names.
func Register(v *validator.Validate, extra map[string]validator.Func) error {
	if err := v.RegisterValidation(TagCPF, validateCPF); err != nil {
		return fmt.Errorf("failed to register %s validator: %w", TagCPF, err)
	}
	for tag, fn := range extra {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("failed to register %s validator: %w", tag, err)
		}
	}

	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return nil
}

// FieldError is a client facing description of one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var tagMessages = map[string]string{
	"required": "%s is required",
	"email":    "%s must be a valid email",
	"min":      "%s must not be empty",
	TagCPF:     "%s must match XXX.XXX.XXX-XX",
	"symptom":  "%s is not a known symptom",
}

// Messages converts validator errors to field messages. Other errors yield a
// single entry without a field.
func Messages(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Message: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, e := range verrs {
		msg := e.Error()
		if format, ok := tagMessages[e.Tag()]; ok {
			msg = fmt.Sprintf(format, e.Field())
		}
		out = append(out, FieldError{Field: e.Field(), Message: msg})
	}
	return out
}

// Summary joins Messages into one line.
func Summary(err error) string {
	fields := Messages(err)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = f.Message
	}
	return strings.Join(parts, "; ")
}
