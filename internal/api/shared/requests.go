package shared

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Global validator instance for reuse; Validate is safe for concurrent use.
var validate = validator.New(validator.WithRequiredStructEnabled())

// UnknownFieldError reports a request body property that is not part of
// the declared input shape. Bodies are decoded strictly, so extra
// properties fail before the payload reaches a service.
type UnknownFieldError struct {
	Field string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Field)
}

// DecodeJSON decodes the request body into the given struct, rejecting
// properties outside the target shape with an UnknownFieldError.
func DecodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if field, ok := unknownField(err); ok {
			return &UnknownFieldError{Field: field}
		}
		return err
	}
	return nil
}

// unknownField extracts the property name from the decoder's
// `json: unknown field "x"` error, which encoding/json does not expose
// as a typed value.
func unknownField(err error) (string, bool) {
	const prefix = `json: unknown field "`
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.TrimSuffix(strings.TrimPrefix(msg, prefix), `"`), true
}

// ValidateRequest runs the declared field rules against the given struct and
// returns one FieldError per invalid property, using the JSON field names.
// A nil slice means the value is valid.
func ValidateRequest(v any) []FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "", Errors: []string{"invalid request"}}}
	}

	byField := make(map[string][]string)
	order := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := jsonFieldName(fe)
		if _, seen := byField[field]; !seen {
			order = append(order, field)
		}
		byField[field] = append(byField[field], constraintMessage(fe))
	}

	out := make([]FieldError, 0, len(order))
	for _, field := range order {
		out = append(out, FieldError{Field: field, Errors: byField[field]})
	}
	return out
}

// jsonFieldName lowers the leading struct path segment, turning
// "CreateUserInput.Password" into "password".
func jsonFieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return ""
	}
	return strings.ToLower(name[:1]) + name[1:]
}

// constraintMessage maps a failed validation tag to a human-readable message.
func constraintMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters long", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed the %q constraint", fe.Tag())
	}
}
