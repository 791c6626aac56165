// internal/domain/models/page.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Page is a navigable content unit identified by its slug. Its body is the
// ordered list of Sections stored in the page_sections collection.
type Page struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Slug            string             `bson:"slug" json:"slug"` // unique, never renamed
	Title           string             `bson:"title" json:"title"`
	MetaTitle       *string            `bson:"meta_title,omitempty" json:"metaTitle"`
	MetaDescription *string            `bson:"meta_description,omitempty" json:"metaDescription"`

	// Navigation
	ShowInNav bool    `bson:"show_in_nav" json:"showInNav"`
	NavOrder  int     `bson:"nav_order" json:"navOrder"`
	NavTitle  *string `bson:"nav_title,omitempty" json:"navTitle"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Section is a typed content block owned by a Page. SectionKey is unique
// within the page; Content is a schema-less object whose shape is chosen by Type.
type Section struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	PageID     primitive.ObjectID `bson:"page_id" json:"-"`
	SectionKey string             `bson:"section_key" json:"key"`
	Type       string             `bson:"type" json:"type"`
	Title      *string            `bson:"title,omitempty" json:"title"`
	Content    map[string]any     `bson:"content" json:"content"`
	SortOrder  int                `bson:"sort_order" json:"sortOrder"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updatedAt"`
}

// Well-known page slugs.
const (
	PageSlugHome            = "home"
	PageSlugContact         = "contact"
	PageSlugMentionsLegales = "mentions-legales"
	PageSlugAbout           = "about"
)

// ProtectedPageSlugs returns the slugs of pages that can never be deleted.
func ProtectedPageSlugs() []string {
	return []string{
		PageSlugHome,
		PageSlugContact,
		PageSlugMentionsLegales,
	}
}

// IsProtectedPageSlug reports whether slug names an undeletable page.
func IsProtectedPageSlug(slug string) bool {
	for _, s := range ProtectedPageSlugs() {
		if s == slug {
			return true
		}
	}
	return false
}

// NavPath returns the public path a page is served under.
func NavPath(slug string) string {
	switch slug {
	case PageSlugHome:
		return "/"
	case PageSlugAbout:
		return "/a-propos"
	default:
		return "/" + slug
	}
}

// DefaultHeroImage is the image placed in the hero section of new pages.
const DefaultHeroImage = "/images/default/hero-1.jpg"
