package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsCarryStatusAndCode(t *testing.T) {
	cases := []struct {
		err    error
		code   string
		status int
	}{
		{NewFieldErrors(map[string]string{"email": "required"}), "VALIDATION_FAILED", http.StatusBadRequest},
		{NewNotFound("menu", nil), "NOT_FOUND", http.StatusNotFound},
		{NewUnauthorized("token expired"), "UNAUTHORIZED", http.StatusUnauthorized},
		{NewForbidden("insufficient permissions"), "FORBIDDEN", http.StatusForbidden},
		{NewConflict("schedule is full", nil), "CONFLICT", http.StatusBadRequest},
		{NewTooManyRequests("too many login attempts"), "RATE_LIMITED", http.StatusTooManyRequests},
		{NewInternalError(errors.New("boom")), "INTERNAL_ERROR", http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			d := ToDomainError(tc.err)
			require.NotNil(t, d)
			assert.Equal(t, tc.code, d.Code)
			assert.Equal(t, tc.status, d.HTTPStatus)
			assert.True(t, IsCode(tc.err, tc.code))
		})
	}
}

func TestToDomainErrorWrapsUnknownErrors(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))

	missing := ToDomainError(fmt.Errorf("load menu: %w", pgx.ErrNoRows))
	assert.Equal(t, "NOT_FOUND", missing.Code)

	cause := errors.New("connection reset")
	internal := ToDomainError(cause)
	assert.Equal(t, "INTERNAL_ERROR", internal.Code)
	assert.ErrorIs(t, internal, cause)
	assert.Equal(t, "internal server error: connection reset", internal.Error())

	wrapped := fmt.Errorf("login: %w", NewTooManyRequests("slow down"))
	assert.Equal(t, http.StatusTooManyRequests, ToDomainError(wrapped).HTTPStatus)
}
