package pages

import (
	"strings"

	"github.com/dalemusser/stratasite/internal/app/system/contentops"
	"github.com/spf13/cast"
)

// Admin payloads are decoded into a map so that an absent key can be told
// apart from an explicit null. Scalars are coerced loosely: "3" is a valid
// navOrder and 1 a valid showInNav.

func stringField(p map[string]any, key string) *string {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	s := strings.TrimSpace(cast.ToString(v))
	return &s
}

func optionalField(p map[string]any, key string) contentops.Optional {
	v, ok := p[key]
	if !ok {
		return contentops.Optional{}
	}
	if v == nil {
		return contentops.Optional{Set: true}
	}
	s := cast.ToString(v)
	return contentops.Optional{Set: true, Value: &s}
}

func intField(p map[string]any, key string) *int {
	v, ok := p[key]
	if !ok || v == nil {
		return nil
	}
	n := cast.ToInt(v)
	return &n
}

func boolField(p map[string]any, key string) *bool {
	v, ok := p[key]
	if !ok {
		return nil
	}
	b := cast.ToBool(v)
	return &b
}

func pagePatch(p map[string]any) contentops.PagePatch {
	patch := contentops.PagePatch{
		MetaTitle:       optionalField(p, "metaTitle"),
		MetaDescription: optionalField(p, "metaDescription"),
		NavTitle:        optionalField(p, "navTitle"),
		ShowInNav:       boolField(p, "showInNav"),
		NavOrder:        intField(p, "navOrder"),
	}
	if _, ok := p["title"]; ok {
		t := cast.ToString(p["title"])
		patch.Title = &t
	}
	return patch
}

func addSectionInput(p map[string]any) contentops.AddSectionInput {
	in := contentops.AddSectionInput{
		Key:       cast.ToString(p["key"]),
		Type:      stringField(p, "type"),
		Title:     stringField(p, "title"),
		SortOrder: intField(p, "sortOrder"),
	}
	if content, ok := p["content"].(map[string]any); ok {
		in.Content = content
	}
	return in
}

func sectionPatch(p map[string]any) contentops.SectionPatch {
	content, hasContent := p["content"]
	return contentops.SectionPatch{
		Title:      optionalField(p, "title"),
		HasContent: hasContent,
		Content:    content,
		SortOrder:  intField(p, "sortOrder"),
	}
}
