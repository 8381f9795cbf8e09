package domain

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxValueSize bounds a single form value, in bytes.
const DefaultMaxValueSize = 4096

var (
	ErrValueTooLarge = errors.New("value exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("value contains invalid UTF-8 sequences")
)

// SanitizeValue enforces the size limit (DefaultMaxValueSize when limit is
// not positive), rejects invalid UTF-8 and strips control characters other
// than newline, tab and carriage return. Oversized values are rejected, not
// truncated.
func SanitizeValue(value string, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultMaxValueSize
	}
	if len(value) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrValueTooLarge, len(value), limit)
	}
	if !utf8.ValidString(value) {
		return "", ErrInvalidUTF8
	}
	if strings.IndexFunc(value, unsafeControl) < 0 {
		return value, nil
	}
	return strings.Map(func(r rune) rune {
		if unsafeControl(r) {
			return -1
		}
		return r
	}, value), nil
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
