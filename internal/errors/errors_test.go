package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIError_Error(t *testing.T) {
	err := NewAPIError("taiga", 403, "forbidden")
	assert.Contains(t, err.Error(), "taiga")
	assert.Contains(t, err.Error(), "403")
	assert.Contains(t, err.Error(), "forbidden")
}

func TestAPIError_NoStatusCode(t *testing.T) {
	err := NewAPIError("taiga", 0, "unable to resolve version for task update")
	assert.Equal(t, "taiga API error: unable to resolve version for task update", err.Error())
}

func TestAPIError_WithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := &APIError{Service: "taiga", StatusCode: 500, Message: "fail", Err: inner}
	assert.ErrorIs(t, err, inner)
}

func TestValidationError(t *testing.T) {
	err := NewValidation("%s must be an integer", "project_id")
	assert.Equal(t, "project_id must be an integer", err.Error())
	assert.True(t, IsValidation(err))
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidation(errors.New("plain")))
}

func TestConflictError(t *testing.T) {
	remote := NewAPIError("taiga", 409, "version mismatch")
	err := &ConflictError{Entity: "task", ID: 7, LatestVersion: 2, Err: remote}
	assert.Equal(t, "conflict updating task 7: latest version is 2", err.Error())
	assert.True(t, IsConflict(err))
	assert.ErrorIs(t, err, remote)
	assert.False(t, IsConflict(remote))
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFound("status '%s' not found for project %d", "Doing", 3)
	assert.Equal(t, "status 'Doing' not found for project 3", err.Error())
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotFound(ErrUnauthorized))
}

func TestAsAPIError(t *testing.T) {
	apiErr := NewAPIError("taiga", 409, "conflict")
	got, ok := AsAPIError(fmt.Errorf("updating: %w", apiErr))
	assert.True(t, ok)
	assert.Equal(t, 409, got.StatusCode)

	_, ok = AsAPIError(errors.New("other"))
	assert.False(t, ok)
}
