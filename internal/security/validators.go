package security

import (
	"fmt"
	"regexp"
	"strings"
)

// Input length constraints
const (
	MaxParticipantNameLength = 50
	MaxCategoryLength        = 50
)

var (
	// Room ids are short url-safe tokens
	roomIDRegex = regexp.MustCompile(`^[A-Za-z0-9_-]{1,32}$`)
)

// ValidateRoomID checks that a client-supplied room id is a plausible room
// token before it reaches any lookup.
func ValidateRoomID(id string) error {
	if id == "" {
		return fmt.Errorf("room id cannot be empty")
	}
	if !roomIDRegex.MatchString(id) {
		return fmt.Errorf("invalid room id format")
	}
	return nil
}

// SanitizeField normalizes an optional identity field: trims whitespace,
// strips control characters and rejects values over maxLen. The empty result
// means "field not provided" and is never applied by callers.
func SanitizeField(raw string, maxLen int) string {
	field := strings.TrimSpace(raw)
	field = strings.Map(func(r rune) rune {
		if r < 32 || r == 127 {
			return -1
		}
		return r
	}, field)
	if len(field) > maxLen {
		return ""
	}
	return field
}

// SanitizeName normalizes a required identity field. Anything that does not
// survive SanitizeField falls back to the given sentinel, per the
// defensive-defaulting policy at the boundary.
func SanitizeName(raw, fallback string, maxLen int) string {
	name := SanitizeField(raw, maxLen)
	if name == "" {
		return fallback
	}
	return name
}
