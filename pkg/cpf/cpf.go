// Package cpf provides normalization and validation for Brazilian CPF
// identifiers, the 11-digit national tax IDs used to key case-record lookups.
package cpf

import (
	"errors"
	"fmt"
	"strings"
)

// Length is the number of digits in a normalized CPF.
const Length = 11

// ErrInvalid is returned when an identifier cannot be reduced to 11 digits.
var ErrInvalid = errors.New("invalid cpf")

// Normalize strips formatting punctuation (dots, dashes, whitespace) from a
// raw identifier and validates the result. Returns the 11-digit form or
// ErrInvalid when the input does not reduce to exactly 11 digits.
func Normalize(raw string) (string, error) {
	var sb strings.Builder
	sb.Grow(Length)

	for _, r := range raw {
		if r >= '0' && r <= '9' {
			sb.WriteRune(r)
		}
	}

	normalized := sb.String()
	if len(normalized) != Length {
		return "", fmt.Errorf("%w: %q does not reduce to %d digits", ErrInvalid, raw, Length)
	}

	return normalized, nil
}

// Mask renders a normalized CPF in the conventional 000.000.000-00 display
// form. Inputs that are not 11 digits are returned unchanged.
func Mask(normalized string) string {
	if len(normalized) != Length {
		return normalized
	}
	return normalized[:3] + "." + normalized[3:6] + "." + normalized[6:9] + "-" + normalized[9:]
}
