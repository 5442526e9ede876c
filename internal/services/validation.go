package services

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/yukikurage/portfolio-api/internal/constants"
	"github.com/yukikurage/portfolio-api/internal/models"
)

// FieldError describes one offending input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError is returned when input does not satisfy its schema or policy.
type ValidationError struct {
	Message string
	Fields  []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(parts, "; "))
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("mobile", validateMobile); err != nil {
		panic(err)
	}
	return v
}

// validateMobile accepts digits optionally separated by '+', spaces and '-'.
func validateMobile(fl validator.FieldLevel) bool {
	digits := strings.NewReplacer("+", "", " ", "", "-", "").Replace(fl.Field().String())
	if digits == "" {
		return false
	}
	for _, r := range digits {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidatePortfolioData decodes raw into PortfolioData and checks it against
// the portfolio schema. All offending fields are reported together.
func ValidatePortfolioData(raw json.RawMessage) (models.PortfolioData, error) {
	var data models.PortfolioData

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return data, &ValidationError{
			Message: "Invalid portfolio data",
			Fields:  []FieldError{{Field: "data", Message: "is required"}},
		}
	}

	var fields []FieldError
	if err := json.Unmarshal(trimmed, &data); err != nil {
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return data, &ValidationError{
				Message: "Invalid portfolio data",
				Fields:  []FieldError{{Field: "data", Message: "must be a JSON object"}},
			}
		}
		fields = append(fields, FieldError{
			Field:   typeErr.Field,
			Message: fmt.Sprintf("must be of type %s", typeErr.Type.String()),
		})
	}

	fields = append(fields, rawFieldErrors(trimmed)...)
	fields = append(fields, structFieldErrors(validate.Struct(data))...)
	if len(fields) > 0 {
		return data, &ValidationError{Message: "Invalid portfolio data", Fields: dedupeFields(fields)}
	}

	return data, nil
}

var (
	// presence-only keys: an empty string is a valid value
	requiredDataKeys = []string{"name", "about", "template_selected"}
	stringListKeys   = []string{"skills", "hobbies"}
)

// rawFieldErrors checks what decoding into PortfolioData cannot see: missing
// or null string keys, and null items inside the string lists.
func rawFieldErrors(raw []byte) []FieldError {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(raw, &object); err != nil {
		return nil
	}

	var fields []FieldError
	for _, key := range requiredDataKeys {
		if isNull(object[key]) {
			fields = append(fields, FieldError{Field: key, Message: "is required"})
		}
	}

	for _, key := range stringListKeys {
		value, ok := object[key]
		if !ok || isNull(value) {
			continue
		}
		var items []json.RawMessage
		if err := json.Unmarshal(value, &items); err != nil {
			continue
		}
		for _, item := range items {
			if isNull(item) {
				fields = append(fields, FieldError{Field: key, Message: "must contain only strings"})
				break
			}
		}
	}
	return fields
}

func isNull(value json.RawMessage) bool {
	trimmed := bytes.TrimSpace(value)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// ValidateTemplate rejects templates outside the known set.
func ValidateTemplate(template string) *FieldError {
	for _, t := range constants.Templates {
		if template == t {
			return nil
		}
	}
	return &FieldError{
		Field:   "template",
		Message: "must be one of: " + strings.Join(constants.Templates, ", "),
	}
}

// ValidatePassword applies the password policy: minimum length, at least one
// digit and at least one uppercase letter.
func ValidatePassword(password string) []FieldError {
	var fields []FieldError
	if utf8.RuneCountInString(password) < constants.MinPasswordLength {
		fields = append(fields, FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at least %d characters long", constants.MinPasswordLength),
		})
	}
	if !strings.ContainsFunc(password, unicode.IsDigit) {
		fields = append(fields, FieldError{Field: "password", Message: "must contain at least one number"})
	}
	if !strings.ContainsFunc(password, unicode.IsUpper) {
		fields = append(fields, FieldError{Field: "password", Message: "must contain at least one uppercase letter"})
	}
	return fields
}

// ValidateEmail checks the email address format.
func ValidateEmail(email string) *FieldError {
	if err := validate.Var(email, "required,email"); err != nil {
		return &FieldError{Field: "email", Message: "must be a valid email address"}
	}
	return nil
}

func structFieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}

	fields := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return fields
}

// fieldPath drops the root struct name from a validator namespace.
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "mobile":
		return "must contain only digits and valid characters"
	default:
		return "is invalid"
	}
}

func dedupeFields(fields []FieldError) []FieldError {
	seen := make(map[string]struct{}, len(fields))
	out := fields[:0]
	for _, f := range fields {
		if _, ok := seen[f.Field]; ok {
			continue
		}
		seen[f.Field] = struct{}{}
		out = append(out, f)
	}
	return out
}
