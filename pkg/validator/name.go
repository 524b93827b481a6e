package validator

import (
	"errors"
	"regexp"
	"strings"
)

var (
	// ErrEmptyName indicates the name is empty or whitespace only
	ErrEmptyName = errors.New("full name cannot be empty")

	// ErrSingleName indicates the name has no surname part
	ErrSingleName = errors.New("full name must include first and last name")

	// ErrInvalidNameChars indicates the name contains disallowed characters
	ErrInvalidNameChars = errors.New("name can only contain letters, spaces, hyphens, and apostrophes")
)

// nameRegex allows letters (any script), spaces, hyphens, and apostrophes
var nameRegex = regexp.MustCompile(`^[\p{L}][\p{L} '\-]*$`)

// ValidateFullName checks that a payer name is usable for payment payloads.
// Returns the trimmed name on success.
func ValidateFullName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrEmptyName
	}

	if !nameRegex.MatchString(trimmed) {
		return "", ErrInvalidNameChars
	}

	if len(strings.Fields(trimmed)) < 2 {
		return "", ErrSingleName
	}

	return trimmed, nil
}

// SplitName splits a full name into first and last name parts.
// A single-word name comes back with an empty last name.
func SplitName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}
