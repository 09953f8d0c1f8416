package utils

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Slugify lowercases s and replaces runs of non-alphanumeric characters with
// single hyphens.
func Slugify(s string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// TenantSlug builds a unique-ish tenant slug from a display name by appending
// a short random suffix. The tenants.slug unique constraint is the final
// arbiter.
func TenantSlug(name string) string {
	base := Slugify(name)
	if base == "" {
		base = "studio"
	}
	suffix := strings.SplitN(uuid.New().String(), "-", 2)[0]
	return base + "-" + suffix
}
