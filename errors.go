package accounts

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

const (
	// TextCodeInvalidUsername marks a username outside the permitted charset
	TextCodeInvalidUsername = "INVALID_USERNAME"
	// TextCodeInvalidEmail marks a syntactically invalid email
	TextCodeInvalidEmail = "INVALID_EMAIL"
	// TextCodeWeakPassword marks a password rejected by the strength rules
	TextCodeWeakPassword = "WEAK_PASSWORD"
	// TextCodePasswordMismatch marks a password/repeat mismatch
	TextCodePasswordMismatch = "PASSWORD_MISMATCH"
	// TextCodeUsernameTaken marks a username held by another identity
	TextCodeUsernameTaken = "USERNAME_TAKEN"
	// TextCodeEmailTaken marks an email held by another identity
	TextCodeEmailTaken = "EMAIL_TAKEN"
	// TextCodeInvalidCreds marks a failed old-password verification
	TextCodeInvalidCreds = "INVALID_CREDENTIALS"
	// TextCodeEmptyPassword marks an empty password input
	TextCodeEmptyPassword = "EMPTY_PASSWORD"
)

// ErrIdentityNotFound is returned when no identity exists for the given id
var ErrIdentityNotFound = goerrors.New("identity not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrProfileNotFound is returned when an identity has no owned profile
var ErrProfileNotFound = goerrors.New("profile not found", goerrors.CategoryNotFound).
	WithCode(goerrors.CodeNotFound)

// ErrPasswordMismatch is returned when password and repeat password differ
var ErrPasswordMismatch = goerrors.New("passwords do not match", goerrors.CategoryValidation).
	WithTextCode(TextCodePasswordMismatch)

// ErrUsernameTaken is returned when another identity already holds the username
var ErrUsernameTaken = goerrors.New("an identity with this username already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode(TextCodeUsernameTaken)

// ErrEmailTaken is returned when another identity already holds the email
var ErrEmailTaken = goerrors.New("an identity with this email already exists", goerrors.CategoryConflict).
	WithCode(goerrors.CodeConflict).
	WithTextCode(TextCodeEmailTaken)

// ErrOldPasswordInvalid is returned when the old password does not verify
// against the stored hash
var ErrOldPasswordInvalid = goerrors.New("the old password is incorrect", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrMismatchedHashAndPassword is the generic credential verification failure
var ErrMismatchedHashAndPassword = goerrors.New("the credentials provided are invalid", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrNoEmptyString rejects empty passwords before hashing
var ErrNoEmptyString = goerrors.New("value must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ValidationErrors collects classified validation failures so register and
// update can report every problem at once instead of stopping at the first.
// The zero value is ready to use.
type ValidationErrors struct {
	Errors []*goerrors.Error
}

// Append records err if it is non-nil. Plain errors are wrapped as
// validation failures so the collection stays uniformly classified.
func (v *ValidationErrors) Append(err error) {
	if err == nil {
		return
	}

	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		v.Errors = append(v.Errors, richErr)
		return
	}

	v.Errors = append(v.Errors, goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()))
}

// HasErrors reports whether any failure was collected.
func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

// Messages returns the collected failure messages in the order they were
// recorded.
func (v *ValidationErrors) Messages() []string {
	out := make([]string, 0, len(v.Errors))
	for _, e := range v.Errors {
		out = append(out, e.Message)
	}
	return out
}

// Error implements the error interface joining all messages.
func (v *ValidationErrors) Error() string {
	return strings.Join(v.Messages(), "\n")
}

// ErrOrNil returns the collection as an error, or nil when empty.
func (v *ValidationErrors) ErrOrNil() error {
	if v.HasErrors() {
		return v
	}
	return nil
}

// AsValidationErrors unwraps err into a ValidationErrors collection.
func AsValidationErrors(err error) (*ValidationErrors, bool) {
	if err == nil {
		return nil, false
	}
	if v, ok := err.(*ValidationErrors); ok {
		return v, true
	}
	return nil, false
}

// IsConflictError reports whether err carries a uniqueness conflict.
func IsConflictError(err error) bool {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		return richErr.Category == goerrors.CategoryConflict
	}
	return false
}

// isUniqueViolation matches driver-level unique constraint failures. The
// database constraint is the final arbiter when two writes race past the
// availability pre-checks.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value violates unique constraint")
}

// conflictFromUniqueViolation maps a driver unique violation to the matching
// classified conflict, defaulting to username when the column is unknown.
func conflictFromUniqueViolation(err error) *goerrors.Error {
	msg := err.Error()
	if strings.Contains(msg, "email") {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}
