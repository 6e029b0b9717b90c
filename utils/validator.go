// utils/validator.go - Input validation
package utils

import "strings"

// ValidatePassword checks password strength for password changes. Format
// validation of other fields happens in the request binding tags.
func ValidatePassword(password string) (bool, string) {
	if len(password) < 8 {
		return false, "Password must be at least 8 characters"
	}
	if strings.TrimSpace(password) != password {
		return false, "Password must not start or end with spaces"
	}

	return true, ""
}

// SanitizeInput removes potentially harmful characters
func SanitizeInput(input string) string {
	// Remove leading/trailing spaces
	input = strings.TrimSpace(input)

	// Remove null bytes
	input = strings.ReplaceAll(input, "\x00", "")

	return input
}
