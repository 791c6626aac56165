package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSectionKey(t *testing.T) {
	tests := map[string]string{
		"hero":               "hero",
		"Photo Gallery!":     "photo-gallery",
		"  Infos  ":          "infos",
		"contact_infos":      "contact-infos",
		"--map--":            "map",
		"a--b":               "a-b",
		"Été 2024":           "t-2024",
		"Section 1 / Part 2": "section-1-part-2",
		"!!!":                "",
		"":                   "",
		"---":                "",
	}
	for in, want := range tests {
		got := SectionKey(in)
		assert.Equal(t, want, got, "SectionKey(%q)", in)
		assert.Equal(t, got, SectionKey(got), "idempotent for %q", in)
		if got != "" {
			assert.True(t, IsSectionKey(got), "%q matches the key pattern", got)
		}
	}
}

func TestIsSectionKey(t *testing.T) {
	for _, k := range []string{"hero", "google-map", "a1-b2-c3"} {
		assert.True(t, IsSectionKey(k), k)
	}
	for _, k := range []string{"", "-hero", "hero-", "a--b", "Hero", "hero_1"} {
		assert.False(t, IsSectionKey(k), k)
	}
}

func TestSectionType(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"gallery", "gallery", true},
		{" Google-Map ", "google-map", true},
		{"hero_compact", "hero_compact", false},
		{"", "", false},
		{"text!", "text!", false},
	}
	for _, tt := range tests {
		got, ok := SectionType(tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}

func TestIdentifiers(t *testing.T) {
	assert.Equal(t, "contact@example.fr", Email("  Contact@Example.FR\n"))
	assert.Equal(t, "admin", Role(" Admin "))
	assert.Equal(t, "disabled", Status("DISABLED"))
	assert.Equal(t, "Hélène Martin", Name("\tHélène Martin "))
	assert.Equal(t, "Massage Suédois", QueryParam(" Massage Suédois "))
	assert.Equal(t, "Soins-Visage", Slug(" Soins-Visage "))
	assert.Empty(t, Email("   "))
}
