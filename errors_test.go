package accounts_test

import (
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	accounts "github.com/klsrv/go-accounts"
	"github.com/stretchr/testify/assert"
)

func TestStructuredErrorProperties(t *testing.T) {
	t.Run("ErrIdentityNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, accounts.ErrIdentityNotFound.Category)
		assert.Equal(t, "identity not found", accounts.ErrIdentityNotFound.Message)
	})

	t.Run("ErrProfileNotFound", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryNotFound, accounts.ErrProfileNotFound.Category)
	})

	t.Run("ErrPasswordMismatch", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, accounts.ErrPasswordMismatch.Category)
		assert.Equal(t, accounts.TextCodePasswordMismatch, accounts.ErrPasswordMismatch.TextCode)
	})

	t.Run("ErrUsernameTaken", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryConflict, accounts.ErrUsernameTaken.Category)
		assert.Equal(t, accounts.TextCodeUsernameTaken, accounts.ErrUsernameTaken.TextCode)
	})

	t.Run("ErrEmailTaken", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryConflict, accounts.ErrEmailTaken.Category)
		assert.Equal(t, accounts.TextCodeEmailTaken, accounts.ErrEmailTaken.TextCode)
	})

	t.Run("ErrOldPasswordInvalid", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryAuth, accounts.ErrOldPasswordInvalid.Category)
		assert.Equal(t, accounts.TextCodeInvalidCreds, accounts.ErrOldPasswordInvalid.TextCode)
	})

	t.Run("ErrNoEmptyString", func(t *testing.T) {
		assert.Equal(t, goerrors.CategoryValidation, accounts.ErrNoEmptyString.Category)
		assert.Equal(t, accounts.TextCodeEmptyPassword, accounts.ErrNoEmptyString.TextCode)
	})
}

func TestValidationErrorsCollects(t *testing.T) {
	verrs := &accounts.ValidationErrors{}
	assert.False(t, verrs.HasErrors())
	assert.NoError(t, verrs.ErrOrNil())

	verrs.Append(nil)
	assert.False(t, verrs.HasErrors())

	verrs.Append(accounts.ErrPasswordMismatch)
	verrs.Append(accounts.ErrUsernameTaken)
	verrs.Append(errors.New("plain failure"))

	assert.True(t, verrs.HasErrors())
	assert.Len(t, verrs.Errors, 3)

	messages := verrs.Messages()
	assert.Equal(t, []string{
		"passwords do not match",
		"an identity with this username already exists",
		"plain failure",
	}, messages)

	assert.Equal(t,
		"passwords do not match\nan identity with this username already exists\nplain failure",
		verrs.Error())

	err := verrs.ErrOrNil()
	assert.Error(t, err)

	unwrapped, ok := accounts.AsValidationErrors(err)
	assert.True(t, ok)
	assert.Same(t, verrs, unwrapped)
}

func TestAsValidationErrors(t *testing.T) {
	_, ok := accounts.AsValidationErrors(nil)
	assert.False(t, ok)

	_, ok = accounts.AsValidationErrors(errors.New("nope"))
	assert.False(t, ok)
}

func TestIsConflictError(t *testing.T) {
	assert.True(t, accounts.IsConflictError(accounts.ErrUsernameTaken))
	assert.True(t, accounts.IsConflictError(accounts.ErrEmailTaken))
	assert.False(t, accounts.IsConflictError(accounts.ErrPasswordMismatch))
	assert.False(t, accounts.IsConflictError(errors.New("other")))
	assert.False(t, accounts.IsConflictError(nil))
}
