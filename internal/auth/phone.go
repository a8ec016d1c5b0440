package auth

import (
	"errors"
	"strings"
	"unicode"
)

// ErrInvalidPhone is returned for numbers that are not 11 digits starting with 7
var ErrInvalidPhone = errors.New("invalid phone format, example: +7 999 123 45 67")

// NormalizePhone strips every non-digit and returns the canonical 7XXXXXXXXXX form
func NormalizePhone(phone string) (string, error) {
	var b strings.Builder
	for _, r := range phone {
		if unicode.IsDigit(r) && r < unicode.MaxASCII {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()
	if len(cleaned) != 11 || cleaned[0] != '7' {
		return "", ErrInvalidPhone
	}
	return cleaned, nil
}
