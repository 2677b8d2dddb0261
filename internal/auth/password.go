package auth

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"github.com/pdt-ict/portal/internal/shared"
)

const (
	// MinPasswordLength is the shortest accepted password, in characters.
	MinPasswordLength = 8
	// SpecialCharacters lists the symbols that satisfy the special-character rule.
	SpecialCharacters = `!@#$%^&*(),.?":{}|<>`
	// PasswordPolicyMessage enumerates the rule for clients.
	PasswordPolicyMessage = "Password must be at least 8 characters long and contain uppercase, lowercase, numbers, and special characters"
)

// ErrWeakPassword is returned for passwords that violate the policy.
var ErrWeakPassword = shared.NewPublicError(shared.ErrValidation, PasswordPolicyMessage)

// ValidatePassword enforces length and character-class rules. The letter and digit
// classes are ASCII only.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return ErrWeakPassword
	}
	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case 'A' <= r && r <= 'Z':
			upper = true
		case 'a' <= r && r <= 'z':
			lower = true
		case '0' <= r && r <= '9':
			digit = true
		case strings.ContainsRune(SpecialCharacters, r):
			special = true
		}
	}
	if !upper || !lower || !digit || !special {
		return ErrWeakPassword
	}
	return nil
}

// Sanitize strips angle brackets and surrounding whitespace.
func Sanitize(value string) string {
	return strings.TrimSpace(strings.NewReplacer("<", "", ">", "").Replace(value))
}

// SanitizeFields sanitizes every top-level string value of a decoded JSON object in place.
func SanitizeFields(fields map[string]any) {
	for key, value := range fields {
		if s, ok := value.(string); ok {
			fields[key] = Sanitize(s)
		}
	}
}

// Hasher produces salted one-way password hashes.
type Hasher struct {
	cost int
}

// NewHasher returns a bcrypt Hasher. A zero cost selects bcrypt.DefaultCost (10 rounds).
func NewHasher(cost int) Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash salts and hashes password.
func (h Hasher) Hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", shared.NewPublicError(shared.ErrValidation, "Password must be at most 72 bytes long")
		}
		return "", err
	}
	return string(hashed), nil
}

// Compare reports whether password matches hash.
func (h Hasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
