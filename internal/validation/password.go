// Package validation holds the input rules shared by handlers and services.
package validation

import (
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 128
	MinUsernameLength = 3
	MaxUsernameLength = 30
	MaxEmailLength    = 254
)

var (
	usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// dateOfVisitRegex only checks the shape; AsDate parses the value.
	dateOfVisitRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// ValidatePassword enforces length and character-class rules.
func ValidatePassword(password string) error {
	length := len([]rune(password))
	if length < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	if length > MaxPasswordLength {
		return fmt.Errorf("password must be at most %d characters", MaxPasswordLength)
	}

	var upper, lower, digit, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}

	var missing []string
	if !upper {
		missing = append(missing, "an uppercase letter")
	}
	if !lower {
		missing = append(missing, "a lowercase letter")
	}
	if !digit {
		missing = append(missing, "a digit")
	}
	if !special {
		missing = append(missing, "a special character")
	}
	if len(missing) > 0 {
		return fmt.Errorf("password must contain %s", strings.Join(missing, ", "))
	}
	return nil
}

// ValidateUsername allows letters, digits, underscores and hyphens, and
// rejects names that start or end with a separator.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength || len(username) > MaxUsernameLength {
		return fmt.Errorf("username must be %d-%d characters", MinUsernameLength, MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username may only contain letters, numbers, underscores and hyphens")
	}
	if strings.ContainsAny(username[:1], "_-") || strings.ContainsAny(username[len(username)-1:], "_-") {
		return errors.New("username must start and end with a letter or number")
	}
	return nil
}

// ValidateEmail accepts a bare RFC 5322 address of at most 254 characters.
func ValidateEmail(email string) error {
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email must be at most %d characters", MaxEmailLength)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return errors.New("invalid email format")
	}
	at := strings.LastIndexByte(email, '@')
	domain := email[at+1:]
	if !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") || strings.HasPrefix(domain, ".") {
		return errors.New("invalid email domain")
	}
	return nil
}

// ValidateDateOfVisit accepts YYYY-MM-DD calendar dates.
func ValidateDateOfVisit(date string) error {
	if !dateOfVisitRegex.MatchString(date) {
		return errors.New("dateOfVisit must be formatted YYYY-MM-DD")
	}
	if _, err := AsDate(date); err != nil {
		return errors.New("dateOfVisit is not a valid date")
	}
	return nil
}
