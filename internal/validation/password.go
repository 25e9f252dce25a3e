package validation

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"unicode"
)

// PasswordRule is one of the five password requirements.
type PasswordRule struct {
	Name    string
	Message string
	Check   func(string) bool
}

func hasRune(pred func(rune) bool) func(string) bool {
	return func(s string) bool {
		for _, r := range s {
			if pred(r) {
				return true
			}
		}
		return false
	}
}

func isSpecial(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.IsSpace(r)
}

// PasswordRules are evaluated in order; the first failure is the message
// shown inline.
var PasswordRules = []PasswordRule{
	{Name: "length", Message: "Password must be at least 8 characters", Check: func(s string) bool { return len([]rune(s)) >= 8 }},
	{Name: "uppercase", Message: "Password must contain an uppercase letter", Check: hasRune(unicode.IsUpper)},
	{Name: "lowercase", Message: "Password must contain a lowercase letter", Check: hasRune(unicode.IsLower)},
	{Name: "digit", Message: "Password must contain a number", Check: hasRune(unicode.IsDigit)},
	{Name: "special", Message: "Password must contain a special character", Check: hasRune(isSpecial)},
}

// PasswordErrors returns the messages of every unmet rule.
func PasswordErrors(pw string) []string {
	var out []string
	for _, r := range PasswordRules {
		if !r.Check(pw) {
			out = append(out, r.Message)
		}
	}
	return out
}

// PasswordScore counts the satisfied rules.
func PasswordScore(pw string) int {
	n := 0
	for _, r := range PasswordRules {
		if r.Check(pw) {
			n++
		}
	}
	return n
}

var strengthLabels = []string{"Very Weak", "Very Weak", "Weak", "Fair", "Good", "Strong"}

// PasswordStrength labels pw by its score.
func PasswordStrength(pw string) string {
	return strengthLabels[PasswordScore(pw)]
}

const (
	upperChars   = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	lowerChars   = "abcdefghijkmnopqrstuvwxyz"
	digitChars   = "23456789"
	specialChars = "!@#$%^&*()-_=+?"
)

// GeneratePassword returns a random password of length n (at least 12)
// containing one character of every class.
func GeneratePassword(n int) (string, error) {
	if n < 12 {
		n = 12
	}
	classes := []string{upperChars, lowerChars, digitChars, specialChars}
	all := upperChars + lowerChars + digitChars + specialChars

	out := make([]byte, 0, n)
	for _, set := range classes {
		c, err := pick(set)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	for len(out) < n {
		c, err := pick(all)
		if err != nil {
			return "", err
		}
		out = append(out, c)
	}
	// Fisher-Yates so the class characters are not always first.
	for i := len(out) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle password: %w", err)
		}
		k := int(j.Int64())
		out[i], out[k] = out[k], out[i]
	}
	return string(out), nil
}

func pick(set string) (byte, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("generate password: %w", err)
	}
	return set[i.Int64()], nil
}
