// Package shared provides small helpers used by more than one service.
package shared

import (
	"crypto/rand"
	"math/big"
	"strings"
)

var ten = big.NewInt(10)

// MakeRandDigits returns a string of n decimal digits, each drawn uniformly
// and independently from crypto/rand. Leading zeros are kept, so the result
// is always exactly n characters long.
//
// It returns an error if the random number generator fails.
func MakeRandDigits(n int) (string, error) {
	var sb strings.Builder
	sb.Grow(n)
	for i := 0; i < n; i++ {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + d.Int64()))
	}
	return sb.String(), nil
}

// NormalizeEmail lowercases and trims an email address. Every lookup and
// write keyed on email goes through it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailLocalPart returns everything before the first '@', or the whole string
// when there is none.
func EmailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}
