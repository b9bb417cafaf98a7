package util

import "strings"

const replacement = '_'

// Sanitize makes a remote-supplied name safe for use as a single local path
// component. Path separators, reserved characters and control characters are
// replaced, and names that would resolve to the current or parent directory
// are neutralized.
func Sanitize(name string) string {
	sanitized := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return replacement
		}
		if r < 0x20 {
			return replacement
		}

		return r
	}, name)

	sanitized = strings.TrimRight(sanitized, ". ")

	switch sanitized {
	case "", ".", "..":
		return string(replacement)
	}

	return sanitized
}
