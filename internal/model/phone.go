package model

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizePhone canonicalizes a phone number to E.164 so that different
// representations of the same number collapse to one subscriber record.
// Formatting characters are stripped, bare 10-digit US numbers get the +1
// country code, and 11-digit numbers starting with 1 get a leading +.
func NormalizePhone(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrInvalidPhone
	}

	plus := strings.HasPrefix(s, "+")
	var digits strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.' || r == '+':
			// formatting only
		default:
			return "", ErrInvalidPhone
		}
	}

	d := digits.String()
	switch {
	case plus:
		if len(d) < 8 || len(d) > 15 {
			return "", ErrInvalidPhone
		}
		return "+" + d, nil
	case len(d) == 10:
		return "+1" + d, nil
	case len(d) == 11 && d[0] == '1':
		return "+" + d, nil
	default:
		return "", ErrInvalidPhone
	}
}
