package validators

import "strings"

const MinPhoneDigits = 10

// IsPhone accepts digits with the usual separators and at least MinPhoneDigits digits.
func IsPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}

	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
		default:
			return false
		}
	}
	return digits >= MinPhoneDigits && digits <= 15
}
