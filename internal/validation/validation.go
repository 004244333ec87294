// Package validation implements the form checks applied to auth input
// before it reaches a service.
package validation

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	maxEmailLength = 254
	maxNameLength  = 50
	minPasswordLen = 8
)

var (
	// Requires something@something.something; "a@b" is rejected because
	// the domain has no dot.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s\-']+$`)
)

// Result carries the outcome of a single field check.
type Result struct {
	Valid bool
	Error string
}

func valid() Result {
	return Result{Valid: true}
}

func invalid(msg string) Result {
	return Result{Valid: false, Error: msg}
}

// Email validates an email address.
func Email(email string) Result {
	trimmed := strings.TrimSpace(email)

	if trimmed == "" {
		return invalid("Email is required")
	}
	if len(trimmed) > maxEmailLength {
		return invalid("Email is too long")
	}
	if !emailPattern.MatchString(trimmed) {
		return invalid("Please enter a valid email address")
	}

	return valid()
}

// Name validates a person name field. fieldName is used in the error
// message, e.g. "First name".
func Name(name, fieldName string) Result {
	if fieldName == "" {
		fieldName = "Name"
	}
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return invalid(fmt.Sprintf("%s is required", fieldName))
	}
	if len(trimmed) > maxNameLength {
		return invalid(fmt.Sprintf("%s must be %d characters or less", fieldName, maxNameLength))
	}
	if !namePattern.MatchString(trimmed) {
		return invalid(fmt.Sprintf("%s can only contain letters, spaces, hyphens, and apostrophes", fieldName))
	}

	return valid()
}

// Password validates a password.
func Password(password string) Result {
	if password == "" {
		return invalid("Password is required")
	}
	if len(password) < minPasswordLen {
		return invalid(fmt.Sprintf("Password must be at least %d characters", minPasswordLen))
	}

	return valid()
}

// Sanitize trims the input, strips angle brackets and cuts it down to
// maxLength runes.
func Sanitize(input string, maxLength int) string {
	if maxLength <= 0 {
		maxLength = maxEmailLength
	}

	cleaned := strings.NewReplacer("<", "", ">", "").Replace(strings.TrimSpace(input))
	if runes := []rune(cleaned); len(runes) > maxLength {
		cleaned = string(runes[:maxLength])
	}
	return cleaned
}
