package sectiontypes

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefaultContent(t *testing.T) {
	tests := []struct {
		typ  string
		want map[string]any
	}{
		{"text", map[string]any{"title": "", "paragraphs": []any{}, "image": nil}},
		{"gallery", map[string]any{"title": "", "images": []any{}}},
		{"quote", map[string]any{"text": "", "author": ""}},
		{"hero-compact", map[string]any{"title": "", "subtitle": "", "image": nil, "compact": true}},
		{"google-map", map[string]any{"embedUrl": ""}},
		{"contact-infos", map[string]any{
			"address": map[string]any{"street": "", "city": ""},
			"phone":   "",
			"email":   "",
			"hours":   []any{},
		}},
		{"contact-form", map[string]any{}},
		{"no-such-type", map[string]any{}},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, DefaultContent(tt.typ)); diff != "" {
				t.Errorf("DefaultContent(%q) mismatch (-want +got):\n%s", tt.typ, diff)
			}
		})
	}
}

func TestDefaultContentReturnsFreshCopies(t *testing.T) {
	a := DefaultContent("contact-info")
	a["phone"] = "changed"
	a["address"].(map[string]any)["city"] = "Lyon"

	b := DefaultContent("contact-info")
	if b["phone"] != "" {
		t.Errorf("phone = %v, want empty string", b["phone"])
	}
	if city := b["address"].(map[string]any)["city"]; city != "" {
		t.Errorf("address.city = %v, want empty string", city)
	}
}

func TestTypesAreUniqueAndCategorized(t *testing.T) {
	seen := map[string]bool{}
	for _, typ := range Types() {
		if seen[typ.Value] {
			t.Errorf("duplicate type %q", typ.Value)
		}
		seen[typ.Value] = true
		if typ.Label == "" || typ.Category == "" {
			t.Errorf("type %q missing label or category", typ.Value)
		}
	}
	for _, required := range []string{Hero, Text, ContactInfo, ContactInfos, GoogleMap, "gallery"} {
		if !seen[required] {
			t.Errorf("Types() missing %q", required)
		}
	}
}

func TestTypesReturnsCopy(t *testing.T) {
	list := Types()
	list[0].Label = "mutated"
	if Types()[0].Label == "mutated" {
		t.Error("Types() exposes the registry backing array")
	}
}

func TestAnimations(t *testing.T) {
	list := Animations()
	if len(list) == 0 || list[0].Value != "none" {
		t.Errorf("Animations()[0] = %+v, want value none", list)
	}
}

func TestIsContactInfo(t *testing.T) {
	if !IsContactInfo("contact-info") || !IsContactInfo("contact-infos") {
		t.Error("IsContactInfo should accept both contact detail tags")
	}
	if IsContactInfo("contact-form") {
		t.Error("IsContactInfo(contact-form) = true, want false")
	}
}
