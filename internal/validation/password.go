package validation

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

// Admin password length bounds, in characters.
const (
	MinPasswordLength = 12
	MaxPasswordLength = 128
)

// ValidatePassword enforces the admin account password policy.
func ValidatePassword(password string) error {
	n := utf8.RuneCountInString(password)
	if n < MinPasswordLength {
		return errors.New("password minimal 12 karakter")
	}
	if n > MaxPasswordLength {
		return errors.New("password maksimal 128 karakter")
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	switch {
	case !upper:
		return errors.New("password harus mengandung huruf besar")
	case !lower:
		return errors.New("password harus mengandung huruf kecil")
	case !digit:
		return errors.New("password harus mengandung angka")
	case !special:
		return errors.New("password harus mengandung karakter khusus")
	}
	return nil
}
