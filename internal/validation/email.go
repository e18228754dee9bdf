package validation

import (
	"errors"
	"net/mail"
	"strings"
)

// NormalizeEmail trims and lowercases an address before lookup or storage.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail validates email format and length
// Uses Go's built-in net/mail parser which follows RFC 5322
func ValidateEmail(email string) error {
	if email == "" {
		return errors.New("Email là bắt buộc")
	}

	// RFC 5321: total max 254 with @
	if len(email) > 254 {
		return errors.New("Email quá dài (tối đa 254 ký tự)")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("Email không hợp lệ")
	}

	return nil
}
