package services

import (
	"os"
	"strconv"
)

// envIntDefault reads an integer environment variable with a fallback.
func envIntDefault(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
