package domain

import "strings"

// NormalizePhone accepts a 10-digit number with or without the country
// prefix and returns prefix+digits.
func NormalizePhone(raw, prefix string) (string, error) {
	s := strings.Join(strings.Fields(raw), "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.TrimPrefix(s, prefix)
	if !isDigits(s, 10) {
		return "", ErrInvalidPhone
	}
	return prefix + s, nil
}

func ValidateOTP(otp string) error {
	if !isDigits(otp, 6) {
		return ErrInvalidOTP
	}
	return nil
}

func ValidatePincode(code string) error {
	if !isDigits(code, 6) {
		return ErrInvalidPincode
	}
	return nil
}

func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
