package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructors_StatusMapping(t *testing.T) {
	cause := errors.New("unexpected EOF")

	tests := []struct {
		name       string
		err        *Error
		wantType   ErrorType
		wantStatus int
	}{
		{"bad request", BadRequestError("payload is not valid JSON", cause), TypeBadRequest, http.StatusBadRequest},
		{"rate limited", RateLimitedError("too many connections from this address"), TypeRateLimited, http.StatusTooManyRequests},
		{"unavailable", UnavailableError("subscriber capacity reached"), TypeUnavailable, http.StatusServiceUnavailable},
		{"internal", InternalError("failed to read body", cause), TypeInternal, http.StatusInternalServerError},
		{"unknown type", &Error{Type: "mystery"}, "mystery", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.HTTPStatus())
		})
	}
}

func TestError_MessageIncludesCause(t *testing.T) {
	err := BadRequestError("payload is not valid JSON", errors.New("unexpected EOF"))
	assert.Equal(t, "bad_request: payload is not valid JSON: unexpected EOF", err.Error())

	noCause := UnavailableError("subscriber capacity reached")
	assert.Equal(t, "unavailable: subscriber capacity reached", noCause.Error())
}

func TestError_UnwrapThroughWrapping(t *testing.T) {
	cause := errors.New("boom")
	wrapped := fmt.Errorf("submit: %w", BadRequestError("bad", cause))

	assert.ErrorIs(t, wrapped, cause)
	assert.Equal(t, TypeBadRequest, AsStructuredError(wrapped).Type)
	assert.Equal(t, TypeInternal, AsStructuredError(cause).Type)
}

func TestToResponse_JSONShape(t *testing.T) {
	err := BadRequestError("payload must be a JSON object", nil).WithContext("kind", "array")

	data, marshalErr := json.Marshal(err.ToResponse())
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"error":"payload must be a JSON object","type":"bad_request","context":{"kind":"array"}}`, string(data))

	data, marshalErr = json.Marshal(RateLimitedError("slow down").ToResponse())
	require.NoError(t, marshalErr)
	assert.JSONEq(t, `{"error":"slow down","type":"rate_limited"}`, string(data))
}

func TestAsStructuredError(t *testing.T) {
	assert.Nil(t, AsStructuredError(nil))

	original := BadRequestError("bad", nil)
	assert.Same(t, original, AsStructuredError(fmt.Errorf("wrapped: %w", original)))

	plain := errors.New("disk on fire")
	converted := AsStructuredError(plain)
	assert.Equal(t, TypeInternal, converted.Type)
	assert.Equal(t, "internal server error", converted.Message)
	assert.ErrorIs(t, converted, plain)
}
