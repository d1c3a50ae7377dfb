package auth

import "strings"

// BearerToken strips an optional, case-insensitive "Bearer " prefix from an
// Authorization value or token parameter
func BearerToken(value string) string {
	if len(value) >= 7 && strings.EqualFold(value[:7], "bearer ") {
		value = value[7:]
	}
	return strings.TrimSpace(value)
}
