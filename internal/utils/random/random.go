// File: internal/utils/random/random.go
package random

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
)

const (
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits    = "0123456789"
	special   = "!@#$%^&*()-_=+[]{}|;:,.<>?"
)

// Int returns a random integer in [min, max].
func Int(min, max int64) (int64, error) {
	if min > max {
		return 0, fmt.Errorf("min cannot be greater than max")
	}
	if min == max {
		return min, nil
	}
	n, err := rand.Int(rand.Reader, big.NewInt(max-min+1))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random int: %w", err)
	}
	return n.Int64() + min, nil
}

// StringFromCharset returns a random string built from charset.
func StringFromCharset(length int, charset string) (string, error) {
	charsetLength := big.NewInt(int64(len(charset)))
	result := strings.Builder{}
	result.Grow(length)

	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, charsetLength)
		if err != nil {
			return "", fmt.Errorf("failed to generate random index: %w", err)
		}
		result.WriteByte(charset[n.Int64()])
	}

	return result.String(), nil
}

// Password generates a random password with at least one character from
// each class (lower, upper, digit, special). Used as the throwaway
// credential on accounts created via Telegram login.
func Password(length int) (string, error) {
	if length < 8 {
		return "", fmt.Errorf("password length must be at least 8 characters")
	}

	classes := []string{lowercase, uppercase, digits, special}
	parts := make([]string, 0, len(classes)+1)
	for _, class := range classes {
		ch, err := StringFromCharset(1, class)
		if err != nil {
			return "", err
		}
		parts = append(parts, ch)
	}

	all := lowercase + uppercase + digits + special
	rest, err := StringFromCharset(length-len(classes), all)
	if err != nil {
		return "", err
	}
	parts = append(parts, rest)

	// Shuffle so the guaranteed classes do not sit at fixed positions.
	runes := []rune(strings.Join(parts, ""))
	for i := len(runes) - 1; i > 0; i-- {
		j, err := Int(0, int64(i))
		if err != nil {
			return "", err
		}
		runes[i], runes[j] = runes[j], runes[i]
	}

	return string(runes), nil
}
