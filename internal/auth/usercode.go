package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"unicode"
)

const userCodeAttempts = 10

var ErrUserCodeExhausted = errors.New("failed to generate a unique user code after retries")

// Initials returns up to three uppercase initials of name, or "U" when it has no letters.
func Initials(name string) string {
	var b strings.Builder
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if b.Len() >= 3 {
			break
		}
	}
	if b.Len() == 0 {
		return "U"
	}
	return b.String()
}

// GenerateUserCode builds a human-readable id: initials plus a random 5-digit suffix.
// exists reports whether a candidate is taken; collisions are retried.
func GenerateUserCode(name string, exists func(code string) (bool, error)) (string, error) {
	prefix := Initials(name)
	for i := 0; i < userCodeAttempts; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(90000))
		if err != nil {
			return "", err
		}
		code := fmt.Sprintf("%s%05d", prefix, n.Int64()+10000)
		taken, err := exists(code)
		if err != nil {
			return "", err
		}
		if !taken {
			return code, nil
		}
	}
	return "", ErrUserCodeExhausted
}
