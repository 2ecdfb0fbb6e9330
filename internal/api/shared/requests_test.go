package shared

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Age      int    `json:"age"      validate:"gte=0"`
}

func TestValidateRequest(t *testing.T) {
	t.Run("valid input yields no field errors", func(t *testing.T) {
		errs := ValidateRequest(&sampleInput{Email: "a@x.com", Password: "secret123"})
		assert.Nil(t, errs)
	})

	t.Run("field names use the json casing", func(t *testing.T) {
		errs := ValidateRequest(&sampleInput{Email: "nope", Password: "123"})
		require.Len(t, errs, 2)

		assert.Equal(t, "email", errs[0].Field)
		assert.Equal(t, []string{"must be a valid email address"}, errs[0].Errors)

		assert.Equal(t, "password", errs[1].Field)
		assert.Equal(t, []string{"must be at least 6 characters long"}, errs[1].Errors)
	})

	t.Run("missing required fields", func(t *testing.T) {
		errs := ValidateRequest(&sampleInput{})
		require.Len(t, errs, 2)
		assert.Equal(t, []string{"is required"}, errs[0].Errors)
	})

	t.Run("gte constraint message carries the bound", func(t *testing.T) {
		errs := ValidateRequest(&sampleInput{Email: "a@x.com", Password: "secret123", Age: -1})
		require.Len(t, errs, 1)
		assert.Equal(t, "age", errs[0].Field)
		assert.Equal(t, []string{"must be greater than or equal to 0"}, errs[0].Errors)
	})
}

func TestDecodeJSON(t *testing.T) {
	decode := func(t *testing.T, body string) (*sampleInput, error) {
		t.Helper()
		req := httptest.NewRequest("POST", "/", strings.NewReader(body))
		var in sampleInput
		return &in, DecodeJSON(req, &in)
	}

	t.Run("declared fields decode", func(t *testing.T) {
		in, err := decode(t, `{"email": "a@x.com", "password": "secret123", "age": 30}`)
		require.NoError(t, err)
		assert.Equal(t, "a@x.com", in.Email)
		assert.Equal(t, 30, in.Age)
	})

	t.Run("extra properties fail with the offending name", func(t *testing.T) {
		_, err := decode(t, `{"email": "a@x.com", "password": "secret123", "role": "admin"}`)
		var unknown *UnknownFieldError
		require.ErrorAs(t, err, &unknown)
		assert.Equal(t, "role", unknown.Field)
	})

	t.Run("malformed payloads keep the decoder error", func(t *testing.T) {
		_, err := decode(t, `{"email":`)
		require.Error(t, err)
		var unknown *UnknownFieldError
		assert.False(t, errors.As(err, &unknown))
	})
}

func TestTraceIDRoundTrip(t *testing.T) {
	ctx := SetTraceID(context.Background())
	id := GetTraceID(ctx)
	assert.NotEmpty(t, id)

	// A context without a trace ID reads as empty.
	assert.Empty(t, GetTraceID(context.Background()))
}
