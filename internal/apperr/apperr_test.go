package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusMapping(t *testing.T) {
	assert.Equal(t, http.StatusUnauthorized, AuthRequired().Status)
	assert.Equal(t, http.StatusForbidden, ItemForbidden().Status)
	assert.Equal(t, http.StatusBadRequest, Validation("title", "Title is required").Status)
	assert.Equal(t, http.StatusTooManyRequests, RateLimited().Status)
	assert.Equal(t, http.StatusMethodNotAllowed, MethodNotAllowed().Status)
	assert.Equal(t, http.StatusConflict, Conflict("taken").Status)
}

func TestFromWrapsUnknownErrors(t *testing.T) {
	raw := errors.New("connection reset")
	e := From(raw)
	assert.Equal(t, CodeInternal, e.Code)
	assert.Equal(t, "Server error", e.Message)
	assert.ErrorIs(t, e, raw)
}

func TestFromKeepsAppErrorThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("update item: %w", Forbidden("Not the owner"))
	e := From(wrapped)
	assert.Equal(t, CodeForbidden, e.Code)
	assert.True(t, Is(wrapped, CodeForbidden))
	assert.False(t, Is(wrapped, CodeValidation))
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "VALIDATION_ERROR: Title is required (field: title)", Validation("title", "Title is required").Error())
}
