package validation

import "errors"

const MinPasswordLength = 6

// ValidatePassword enforces the account password rules
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return errors.New("Mật khẩu phải có ít nhất 6 ký tự")
	}

	// bcrypt silently truncates passwords longer than 72 bytes
	if len(password) > 72 {
		return errors.New("Mật khẩu không được vượt quá 72 ký tự")
	}

	return nil
}
