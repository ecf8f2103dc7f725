package common

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceErrorsAreNotFound(t *testing.T) {
	for _, err := range []error{ErrUserNotFound, ErrNewsNotFound, ErrCommentNotFound} {
		assert.True(t, IsNotFound(err), err.Error())
		assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", err)), err.Error())
	}
	assert.False(t, IsNotFound(ErrConflict))
}

func TestValidationErrors(t *testing.T) {
	errs := ValidationErrors{
		{Field: "text", Message: "first"},
		{Field: "other", Message: "skip"},
		{Field: "text", Message: "second"},
	}

	assert.True(t, IsValidation(errs))
	assert.True(t, IsValidation(errs[0]))
	assert.Equal(t, []string{"first", "second"}, errs.Field("text"))
	assert.Nil(t, errs.Field("missing"))
	assert.Equal(t, "text: first; other: skip; text: second", errs.Error())

	var target ValidationErrors
	assert.True(t, errors.As(fmt.Errorf("create comment: %w", errs), &target))
	assert.Len(t, target, 3)
}

func TestWrapInternal(t *testing.T) {
	cause := errors.New("boom")
	err := WrapInternal("select news", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "select news")
}

func TestUsernameTakenIsConflict(t *testing.T) {
	assert.True(t, IsConflict(ErrUsernameTaken))
	assert.False(t, IsUnauthorized(ErrUsernameTaken))
	assert.False(t, IsForbidden(ErrUsernameTaken))
}

func TestAuthErrorsAreUnauthorized(t *testing.T) {
	for _, err := range []error{ErrInvalidCredentials, ErrInvalidToken, ErrTokenRevoked} {
		assert.True(t, IsUnauthorized(err), err.Error())
		assert.True(t, IsUnauthorized(fmt.Errorf("resolve: %w", err)), err.Error())
		assert.False(t, IsForbidden(err), err.Error())
	}
	assert.False(t, IsUnauthorized(ErrForbidden))
	assert.True(t, IsForbidden(fmt.Errorf("publish: %w", ErrForbidden)))
}

func TestIsBadRequest(t *testing.T) {
	assert.True(t, IsBadRequest(fmt.Errorf("%w: invalid request body", ErrBadRequest)))
	assert.False(t, IsBadRequest(ErrValidation))
}
