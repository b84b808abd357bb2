package utils

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Character classes a password policy can ask for.
const (
	ClassDigit   = "digit"
	ClassUpper   = "upper"
	ClassLower   = "lower"
	ClassSpecial = "special"
)

var classLabels = map[string]string{
	ClassDigit:   "digit",
	ClassUpper:   "uppercase letter",
	ClassLower:   "lowercase letter",
	ClassSpecial: "special character",
}

// PasswordPolicy describes the strength rules applied at signup.
// With RequireAll unset a password needs any one of RequiredClasses.
type PasswordPolicy struct {
	MinLength       int
	RequiredClasses []string
	RequireAll      bool
	AllowNumeric    bool
}

func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{
		MinLength:       8,
		RequiredClasses: []string{ClassDigit, ClassUpper, ClassLower, ClassSpecial},
	}
}

// Check returns an error describing the first rule the password breaks.
func (p PasswordPolicy) Check(password string) error {
	if len([]rune(password)) < p.MinLength {
		return fmt.Errorf("password must be at least %d characters", p.MinLength)
	}

	present := map[string]bool{}
	numeric := true
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			present[ClassDigit] = true
		case unicode.IsUpper(r):
			present[ClassUpper] = true
			numeric = false
		case unicode.IsLower(r):
			present[ClassLower] = true
			numeric = false
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			present[ClassSpecial] = true
			numeric = false
		default:
			numeric = false
		}
	}
	if numeric && !p.AllowNumeric {
		return fmt.Errorf("password cannot be entirely numeric")
	}

	if len(p.RequiredClasses) == 0 {
		return nil
	}
	matched := 0
	for _, class := range p.RequiredClasses {
		if present[class] {
			matched++
		}
	}
	if p.RequireAll && matched < len(p.RequiredClasses) {
		return fmt.Errorf("password must contain at least one %s", p.classList("and"))
	}
	if !p.RequireAll && matched == 0 {
		return fmt.Errorf("password must contain at least one %s", p.classList("or"))
	}
	return nil
}

// Describe returns a human readable summary of the policy.
func (p PasswordPolicy) Describe() string {
	msg := fmt.Sprintf("password must be at least %d characters", p.MinLength)
	if len(p.RequiredClasses) > 0 {
		conj := "or"
		if p.RequireAll {
			conj = "and"
		}
		msg += " and contain at least one " + p.classList(conj)
	}
	if !p.AllowNumeric {
		msg += ", and cannot be entirely numeric"
	}
	return msg
}

func (p PasswordPolicy) classList(conj string) string {
	labels := make([]string, 0, len(p.RequiredClasses))
	for _, class := range p.RequiredClasses {
		if label, ok := classLabels[class]; ok {
			labels = append(labels, label)
		} else {
			labels = append(labels, class)
		}
	}
	if len(labels) < 2 {
		return strings.Join(labels, "")
	}
	return strings.Join(labels[:len(labels)-1], ", ") + " " + conj + " " + labels[len(labels)-1]
}

func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
