package accounts

import (
	"errors"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	goerrors "github.com/goliatone/go-errors"
)

// Permitted username charset: ASCII letters, digits, and .@+-_
var usernameRe = regexp.MustCompile(`\A[A-Za-z0-9.@+_-]+\z`)

const minPasswordLength = 8

// commonPasswords is the short list of passwords rejected outright. A
// deployment can swap in a larger corpus via SetCommonPasswords.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"passw0rd":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty":     {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"11111111":   {},
	"iloveyou":   {},
	"admin123":   {},
	"letmein":    {},
	"welcome1":   {},
	"monkey123":  {},
	"dragon123":  {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"superman":   {},
	"trustno1":   {},
	"abc12345":   {},
}

// SetCommonPasswords replaces the common-password corpus. Entries are
// matched case-insensitively.
func SetCommonPasswords(passwords []string) {
	next := make(map[string]struct{}, len(passwords))
	for _, p := range passwords {
		next[strings.ToLower(p)] = struct{}{}
	}
	commonPasswords = next
}

// ValidateUsername checks the value against the permitted ASCII username
// charset.
func ValidateUsername(value string) error {
	err := validation.Validate(value,
		validation.Required,
		validation.Length(1, 150),
		validation.Match(usernameRe).Error("only letters, digits and .@+-_ are allowed"),
	)
	if err == nil {
		return nil
	}

	return goerrors.New("enter a valid username: "+err.Error(), goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidUsername)
}

// ValidateEmail checks the value is a syntactically valid email address.
func ValidateEmail(value string) error {
	err := validation.Validate(value, validation.Required, is.Email)
	if err == nil {
		return nil
	}

	return goerrors.New("enter a valid email address", goerrors.CategoryValidation).
		WithTextCode(TextCodeInvalidEmail)
}

// ValidatePasswordStrength rejects passwords that are too short, appear on
// the common-password list, are fully numeric, or are too similar to any of
// the given attributes (typically username and email). All applicable
// reasons are reported in a single failure.
func ValidatePasswordStrength(password string, similar ...string) error {
	var reasons []string

	if len(password) < minPasswordLength {
		reasons = append(reasons, "password is too short, it must contain at least 8 characters")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		reasons = append(reasons, "password is too common")
	}

	if password != "" && isFullyNumeric(password) {
		reasons = append(reasons, "password is entirely numeric")
	}

	for _, attr := range similar {
		if tooSimilar(password, attr) {
			reasons = append(reasons, "password is too similar to other account attributes")
			break
		}
	}

	if len(reasons) == 0 {
		return nil
	}

	return goerrors.New(strings.Join(reasons, "; "), goerrors.CategoryValidation).
		WithTextCode(TextCodeWeakPassword)
}

// ValidateStringEquals builds an ozzo rule asserting the value equals the
// expected string. Used by payloads to check repeat-password fields.
func ValidateStringEquals(expected string) validation.RuleFunc {
	return func(value interface{}) error {
		s, ok := value.(string)
		if !ok {
			return errors.New("must be a string")
		}
		if s != expected {
			return errors.New("values do not match")
		}
		return nil
	}
}

func isFullyNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// tooSimilar flags passwords that contain, or are contained in, a
// meaningful chunk of the attribute. Attributes are split on non
// alphanumeric runs so the local part of an email is compared on its own.
func tooSimilar(password, attr string) bool {
	if password == "" || attr == "" {
		return false
	}

	pwd := strings.ToLower(password)
	parts := append(splitAlphanumeric(attr), attr)

	for _, part := range parts {
		part = strings.ToLower(part)
		if len(part) < 4 {
			continue
		}
		if strings.Contains(pwd, part) || strings.Contains(part, pwd) {
			return true
		}
	}

	return false
}

func splitAlphanumeric(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		alnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
		return !alnum
	})
}
