package validation

import (
	"errors"
	"strings"
	"unicode/utf8"
)

// ValidateName validates a display name
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return errors.New("Tên không được để trống")
	}

	if utf8.RuneCountInString(trimmed) > 100 {
		return errors.New("Tên quá dài (tối đa 100 ký tự)")
	}

	return nil
}

// ValidateMaxLength rejects values longer than max runes.
func ValidateMaxLength(field, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return errors.New(field + " quá dài")
	}
	return nil
}
