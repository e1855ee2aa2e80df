package biz

import (
	"strings"
	"unicode"
)

const passwordSpecials = `!@#$%^&*(),.?":{}|<>`

// PasswordCheck reports which password policy predicates hold. The
// registration form shows each predicate live, so all five are always
// evaluated.
type PasswordCheck struct {
	MinLength bool `json:"min_length"`
	Uppercase bool `json:"uppercase"`
	Lowercase bool `json:"lowercase"`
	Digit     bool `json:"digit"`
	Special   bool `json:"special"`
}

// OK reports whether every predicate passed.
func (c PasswordCheck) OK() bool {
	return c.MinLength && c.Uppercase && c.Lowercase && c.Digit && c.Special
}

// CheckPassword evaluates the password policy on a candidate password.
func CheckPassword(password string) PasswordCheck {
	c := PasswordCheck{MinLength: len(password) >= 8}
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			c.Uppercase = true
		case unicode.IsLower(r):
			c.Lowercase = true
		case unicode.IsDigit(r):
			c.Digit = true
		case strings.ContainsRune(passwordSpecials, r):
			c.Special = true
		}
	}
	return c
}

// PasswordError returns the first human-readable policy violation, or ""
// when the password passes.
func PasswordError(c PasswordCheck) string {
	switch {
	case !c.MinLength:
		return "Password must be at least 8 characters long"
	case !c.Uppercase:
		return "Password must contain an uppercase letter"
	case !c.Lowercase:
		return "Password must contain a lowercase letter"
	case !c.Digit:
		return "Password must contain a digit"
	case !c.Special:
		return "Password must contain a special character"
	}
	return ""
}
