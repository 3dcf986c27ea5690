package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAsAppError(t *testing.T) {
	t.Run("Passes AppError through", func(t *testing.T) {
		original := NewNotFoundError("Task not found")
		assert.Same(t, original, AsAppError(original))
	})

	t.Run("Wraps unknown errors as 500", func(t *testing.T) {
		cause := errors.New("connection refused")
		appErr := AsAppError(cause)

		assert.Equal(t, CodeServerError, appErr.Code)
		assert.Equal(t, "Something went wrong", appErr.Message)
		assert.Equal(t, http.StatusInternalServerError, appErr.StatusCode)
		assert.Equal(t, cause, errors.Unwrap(appErr))
	})
}

func TestWriteError_SingleMessageShape(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewNotFoundError("Task not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"success": false,
		"error":   "NotFound",
		"message": "Task not found",
	}, body)
}

func TestWriteError_ListShape(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, NewValidationErrors([]string{"Email is required", "Name is required"}))

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, map[string]any{
		"success": false,
		"errors":  []any{"Email is required", "Name is required"},
	}, body)
}

func TestInvalidCredentialsCarriesListForm(t *testing.T) {
	appErr := NewInvalidCredentialsError()

	assert.Equal(t, http.StatusUnauthorized, appErr.StatusCode)
	assert.Equal(t, []string{"Invalid credentials"}, appErr.Errors)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "NotFound: Task not found", NewNotFoundError("Task not found").Error())

	wrapped := NewInternalError("Something went wrong", errors.New("boom"))
	assert.Equal(t, "ServerError: Something went wrong (boom)", wrapped.Error())
}
