package errors

import "unicode"

// MaxUIDLength bounds node UIDs accepted from API clients.
const MaxUIDLength = 253

// ValidateUID validates a node UID received from a client.
//
// Validation rules:
//   - UID cannot be empty
//   - Maximum length of MaxUIDLength
//   - No control characters
func ValidateUID(uid string) error {
	if uid == "" {
		return New(ErrCodeInvalidGraph, "node uid cannot be empty")
	}
	if len(uid) > MaxUIDLength {
		return New(ErrCodeInvalidGraph, "node uid too long (max %d characters)", MaxUIDLength)
	}
	for _, r := range uid {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidGraph, "node uid contains invalid control characters")
		}
	}
	return nil
}

// ValidateType validates a node type. Types become section group names and
// metric label values, so they are restricted to lowercase names.
func ValidateType(typ string) error {
	if typ == "" {
		return New(ErrCodeInvalidGraph, "node type cannot be empty")
	}
	if len(typ) > 63 {
		return New(ErrCodeInvalidGraph, "node type too long (max 63 characters)")
	}
	for _, r := range typ {
		if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
			return New(ErrCodeInvalidGraph, "node type %q must be lowercase alphanumeric", typ)
		}
	}
	return nil
}
