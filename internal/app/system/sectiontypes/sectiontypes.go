// Package sectiontypes is the registry of page section types: the tags an
// admin may pick, grouped by category, and the content skeleton a new
// section of each type starts with.
package sectiontypes

// Type describes a selectable section type for the admin UI.
type Type struct {
	Value    string `json:"value"`
	Label    string `json:"label"`
	Category string `json:"category"`
}

// Animation describes a selectable entrance animation.
type Animation struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Section type tags referenced outside the registry.
const (
	Hero         = "hero"
	Text         = "text"
	ContactInfo  = "contact-info"
	ContactInfos = "contact-infos"
	GoogleMap    = "google-map"
)

var types = []Type{
	{Value: "hero-home", Label: "Hero accueil", Category: "hero"},
	{Value: "hero", Label: "Hero (grand)", Category: "hero"},
	{Value: "hero-compact", Label: "Hero (compact)", Category: "hero"},
	{Value: "text", Label: "Texte", Category: "content"},
	{Value: "image", Label: "Image", Category: "content"},
	{Value: "quote", Label: "Citation", Category: "content"},
	{Value: "gallery", Label: "Galerie", Category: "content"},
	{Value: "contact-form", Label: "Formulaire de contact", Category: "contact"},
	{Value: "contact-info", Label: "Infos de contact", Category: "contact"},
	{Value: "contact-infos", Label: "Infos de contact (legacy)", Category: "contact"},
	{Value: "contact-cta", Label: "Call to action", Category: "contact"},
	{Value: "google-map", Label: "Carte Google Maps", Category: "contact"},
	{Value: "service-selector", Label: "Sélecteur de soins", Category: "services"},
	{Value: "services-preview", Label: "Aperçu des services", Category: "services"},
	{Value: "benefits-grid", Label: "Grille avantages (2 colonnes)", Category: "layout"},
	{Value: "parcours", Label: "Parcours", Category: "about"},
	{Value: "formations", Label: "Formations", Category: "about"},
}

var animations = []Animation{
	{Value: "none", Label: "Aucune"},
	{Value: "fade-up", Label: "Fondu + montée"},
	{Value: "fade-down", Label: "Fondu + descente"},
	{Value: "slide-left", Label: "Glissement gauche"},
	{Value: "slide-right", Label: "Glissement droite"},
	{Value: "zoom-in", Label: "Zoom entrant"},
	{Value: "zoom-out", Label: "Zoom sortant"},
	{Value: "bounce", Label: "Rebond"},
}

func contactBlock() map[string]any {
	return map[string]any{
		"address": map[string]any{"street": "", "city": ""},
		"phone":   "",
		"email":   "",
		"hours":   []any{},
	}
}

// defaults builds the skeleton for each known type. Values are constructed
// on every call so callers own the returned maps and slices.
var defaults = map[string]func() map[string]any{
	"text":  func() map[string]any { return map[string]any{"title": "", "paragraphs": []any{}, "image": nil} },
	"image": func() map[string]any { return map[string]any{"image": nil, "alt": "", "caption": ""} },
	"quote": func() map[string]any { return map[string]any{"text": "", "author": ""} },
	"hero": func() map[string]any {
		return map[string]any{"title": "", "subtitle": "", "image": nil, "compact": false}
	},
	"hero-compact": func() map[string]any {
		return map[string]any{"title": "", "subtitle": "", "image": nil, "compact": true}
	},
	"contact-form":   func() map[string]any { return map[string]any{} },
	"contact-info":   contactBlock,
	"contact-infos":  contactBlock,
	"contact-layout": contactBlock,
	"contact-cta": func() map[string]any {
		return map[string]any{"title": "", "subtitle": "", "buttonText": ""}
	},
	"google-map": func() map[string]any { return map[string]any{"embedUrl": ""} },
	"service-selector": func() map[string]any {
		return map[string]any{"title": "Carte & tarifs", "subtitle": "", "offers": []any{}}
	},
	"services-preview": func() map[string]any {
		return map[string]any{
			"subtitle":   "Mes soins",
			"title":      "Une gamme de soins pour votre bien-être",
			"buttonText": "Voir tous les soins",
			"buttonLink": "/soins",
			"items":      []any{},
		}
	},
	"benefits-grid": func() map[string]any {
		return map[string]any{
			"leftTitle":     "Pour vos équipes",
			"leftSubtitle":  "Avantages",
			"leftItems":     []any{},
			"rightTitle":    "Pour votre entreprise",
			"rightSubtitle": "Bénéfices",
			"rightItems":    []any{},
			"tags":          []any{},
			"quote":         "",
		}
	},
	"parcours":   func() map[string]any { return map[string]any{"title": "", "paragraphs": []any{}, "image": nil} },
	"formations": func() map[string]any { return map[string]any{"items": []any{}, "images": []any{}} },
	"gallery":    func() map[string]any { return map[string]any{"title": "", "images": []any{}} },
}

// DefaultContent returns the content skeleton for a section type.
// Unknown types yield an empty object.
func DefaultContent(sectionType string) map[string]any {
	if f, ok := defaults[sectionType]; ok {
		return f()
	}
	return map[string]any{}
}

// HasDefault reports whether the registry knows a skeleton for sectionType.
func HasDefault(sectionType string) bool {
	_, ok := defaults[sectionType]
	return ok
}

// Types returns the selectable section types in display order.
func Types() []Type {
	out := make([]Type, len(types))
	copy(out, types)
	return out
}

// Animations returns the selectable entrance animations.
func Animations() []Animation {
	out := make([]Animation, len(animations))
	copy(out, animations)
	return out
}

// IsContactInfo reports whether t is one of the contact details section types.
func IsContactInfo(t string) bool {
	return t == ContactInfo || t == ContactInfos
}
