// Package util contains small, dependency-free helpers.
package util

import (
	"strings"
	"unicode"
)

// Slugify derives a URL-safe identifier from a display name: lowercase
// letters and digits, with every other run of characters collapsed into a
// single hyphen. The function is deterministic and idempotent: slugifying an
// already-slugified string is a no-op.
func Slugify(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)

			continue
		}
		pendingHyphen = true
	}

	return b.String()
}
