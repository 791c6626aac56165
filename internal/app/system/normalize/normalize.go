// Package normalize canonicalizes user-supplied identifiers before they are
// stored or compared.
package normalize

import (
	"regexp"
	"strings"
)

func lowerTrim(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Email is the stored and compared form of an address.
func Email(s string) string { return lowerTrim(s) }

// Status and Role compare case-insensitively.
func Status(s string) string { return lowerTrim(s) }
func Role(s string) string   { return lowerTrim(s) }

// Name, QueryParam and Slug are only trimmed; slugs are stored as given.
func Name(s string) string       { return strings.TrimSpace(s) }
func QueryParam(s string) string { return strings.TrimSpace(s) }
func Slug(s string) string       { return strings.TrimSpace(s) }

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// SectionKey turns raw input into a section key: runs of characters outside
// [A-Za-z0-9] become a single hyphen, edges lose their hyphens and the
// result is lowercased. Empty means the input had nothing usable.
func SectionKey(raw string) string {
	parts := strings.FieldsFunc(raw, func(r rune) bool { return !isKeyRune(r) })
	return strings.ToLower(strings.Join(parts, "-"))
}

var sectionKeyPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// IsSectionKey reports whether s is already a normalized section key.
func IsSectionKey(s string) bool {
	return sectionKeyPattern.MatchString(s)
}

var sectionTypePattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// SectionType lowercases and trims a section type tag. ok is false for an
// empty tag or one with characters outside [a-z0-9-].
func SectionType(s string) (string, bool) {
	t := lowerTrim(s)
	return t, sectionTypePattern.MatchString(t)
}
