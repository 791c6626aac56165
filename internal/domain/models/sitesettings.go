// internal/domain/models/sitesettings.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SiteSettings is the singleton site-wide configuration record.
// Each namespace is optional; readers go through the Or* accessors which
// synthesize defaults for a missing namespace.
type SiteSettings struct {
	ID primitive.ObjectID `bson:"_id,omitempty" json:"-"`

	General    *GeneralSettings    `bson:"general,omitempty" json:"general,omitempty"`
	Contact    *ContactSettings    `bson:"contact,omitempty" json:"contact,omitempty"`
	Hours      *HoursSettings      `bson:"hours,omitempty" json:"hours,omitempty"`
	Social     *SocialSettings     `bson:"social,omitempty" json:"social,omitempty"`
	Booking    *BookingSettings    `bson:"booking,omitempty" json:"booking,omitempty"`
	Appearance *AppearanceSettings `bson:"appearance,omitempty" json:"appearance,omitempty"`
	Footer     *FooterSettings     `bson:"footer,omitempty" json:"footer,omitempty"`
	Navigation *NavigationSettings `bson:"navigation,omitempty" json:"navigation,omitempty"`

	UpdatedAt     time.Time           `bson:"updated_at" json:"updatedAt"`
	UpdatedByID   *primitive.ObjectID `bson:"updated_by_id,omitempty" json:"-"`
	UpdatedByName string              `bson:"updated_by_name,omitempty" json:"-"`
}

type GeneralSettings struct {
	SiteName               string  `bson:"site_name" json:"siteName"`
	Tagline                string  `bson:"tagline,omitempty" json:"tagline"`
	Logo                   *string `bson:"logo,omitempty" json:"logo"`
	Favicon                *string `bson:"favicon,omitempty" json:"favicon"`
	DefaultMetaDescription *string `bson:"default_meta_description,omitempty" json:"defaultMetaDescription"`
}

type Address struct {
	Street     string `bson:"street" json:"street"`
	PostalCode string `bson:"postal_code" json:"postalCode"`
	City       string `bson:"city" json:"city"`
}

type ContactSettings struct {
	Address         Address `bson:"address" json:"address"`
	Phone           *string `bson:"phone,omitempty" json:"phone"`
	Email           string  `bson:"email" json:"email"`
	GoogleMapsURL   *string `bson:"google_maps_url,omitempty" json:"googleMapsUrl"`
	GoogleMapsEmbed string  `bson:"google_maps_embed,omitempty" json:"googleMapsEmbed"`
}

// HoursEntry is one line of the opening hours table, e.g. {"Samedi", "10h - 18h"}.
type HoursEntry struct {
	Days  string `bson:"days" json:"days"`
	Hours string `bson:"hours" json:"hours"`
}

type HoursSettings struct {
	Schedule      []HoursEntry `bson:"schedule" json:"schedule"`
	ClosedMessage string       `bson:"closed_message" json:"closedMessage"`
}

type SocialSettings struct {
	Instagram *string `bson:"instagram,omitempty" json:"instagram"`
	Facebook  *string `bson:"facebook,omitempty" json:"facebook"`
	LinkedIn  *string `bson:"linkedin,omitempty" json:"linkedin"`
}

type BookingSettings struct {
	NotificationEmail   string `bson:"notification_email" json:"notificationEmail"`
	MinDelayHours       int    `bson:"min_delay_hours" json:"minDelayHours"`
	ConfirmationMessage string `bson:"confirmation_message" json:"confirmationMessage"`
}

type AppearanceSettings struct {
	ThemePreset         string  `bson:"theme_preset" json:"themePreset"`
	UseCustomAccent     bool    `bson:"use_custom_accent" json:"useCustomAccent"`
	CustomAccentColor   *string `bson:"custom_accent_color,omitempty" json:"customAccentColor"`
	HeaderStyle         string  `bson:"header_style" json:"headerStyle"`
	ShowDarkModeToggle  bool    `bson:"show_dark_mode_toggle" json:"showDarkModeToggle"`
	BodyBackgroundImage *string `bson:"body_background_image,omitempty" json:"bodyBackgroundImage"`
}

type QuickLink struct {
	Label string `bson:"label" json:"label"`
	URL   string `bson:"url" json:"url"`
}

type FooterSettings struct {
	CopyrightText       string      `bson:"copyright_text" json:"copyrightText"`
	QuickLinks          []QuickLink `bson:"quick_links" json:"quickLinks"`
	ShowSocialLinks     bool        `bson:"show_social_links" json:"showSocialLinks"`
	ShowContactInfo     bool        `bson:"show_contact_info" json:"showContactInfo"`
	ShowHours           bool        `bson:"show_hours" json:"showHours"`
	CustomDescription   *string     `bson:"custom_description,omitempty" json:"customDescription"`
	MentionsLegalesText string      `bson:"mentions_legales_text" json:"mentionsLegalesText"`
	ShowMentionsLegales bool        `bson:"show_mentions_legales" json:"showMentionsLegales"`
}

// ExternalLink is a navigation entry pointing outside the site's pages.
type ExternalLink struct {
	ID           string `bson:"id" json:"id"`
	Label        string `bson:"label" json:"label"`
	URL          string `bson:"url" json:"url"`
	OpenInNewTab bool   `bson:"open_in_new_tab" json:"openInNewTab"`
	Order        *int   `bson:"order,omitempty" json:"order"` // nil sorts last in navigation
}

type NavigationSettings struct {
	ExternalLinks []ExternalLink `bson:"external_links" json:"externalLinks"`
}

// Appearance enums.
var (
	ThemePresets = []string{"ayurveda", "spa-luxe", "nature", "zen", "energique"}
	HeaderStyles = []string{"transparent", "solid", "sticky"}
)

// Defaults for a freshly created settings record.
const (
	DefaultSiteName            = "Helene Massage & Ayurveda"
	DefaultTagline             = "Massages ayurvediques, reflexologie et Kobido a Paris."
	DefaultContactEmail        = "contact@helene-massage.fr"
	DefaultContactPhone        = "06 12 34 56 78"
	DefaultMinDelayHours       = 24
	DefaultConfirmationMessage = "Merci pour votre demande. Je vous recontacte dans les 24h."
	DefaultClosedMessage       = "Ferme le dimanche"
	DefaultThemePreset         = "ayurveda"
	DefaultHeaderStyle         = "sticky"
	DefaultCopyrightText       = "© 2024 Helene Massage & Ayurveda"
	DefaultMentionsLegalesText = "Mentions legales"
)

// DefaultSiteSettings returns the record persisted when none exists yet.
func DefaultSiteSettings(now time.Time) SiteSettings {
	phone := DefaultContactPhone
	desc := DefaultTagline
	return SiteSettings{
		General:    &GeneralSettings{SiteName: DefaultSiteName, Tagline: DefaultTagline, DefaultMetaDescription: &desc},
		Contact:    &ContactSettings{Address: DefaultAddress(), Phone: &phone, Email: DefaultContactEmail},
		Hours:      DefaultHours(),
		Social:     &SocialSettings{},
		Booking:    DefaultBooking(),
		Appearance: DefaultAppearance(),
		Footer:     DefaultFooter(),
		Navigation: &NavigationSettings{ExternalLinks: []ExternalLink{}},
		UpdatedAt:  now,
	}
}

func DefaultAddress() Address {
	return Address{Street: "123 Rue du Bien-Etre", PostalCode: "75011", City: "Paris"}
}

func DefaultHours() *HoursSettings {
	return &HoursSettings{
		Schedule: []HoursEntry{
			{Days: "Lundi - Vendredi", Hours: "10h - 20h"},
			{Days: "Samedi", Hours: "10h - 18h"},
		},
		ClosedMessage: DefaultClosedMessage,
	}
}

func DefaultBooking() *BookingSettings {
	return &BookingSettings{
		NotificationEmail:   DefaultContactEmail,
		MinDelayHours:       DefaultMinDelayHours,
		ConfirmationMessage: DefaultConfirmationMessage,
	}
}

func DefaultAppearance() *AppearanceSettings {
	return &AppearanceSettings{
		ThemePreset:        DefaultThemePreset,
		HeaderStyle:        DefaultHeaderStyle,
		ShowDarkModeToggle: true,
	}
}

func DefaultFooter() *FooterSettings {
	return &FooterSettings{
		CopyrightText:       DefaultCopyrightText,
		QuickLinks:          []QuickLink{},
		ShowSocialLinks:     true,
		ShowContactInfo:     true,
		MentionsLegalesText: DefaultMentionsLegalesText,
		ShowMentionsLegales: true,
	}
}

// GeneralOrDefault returns the general namespace, synthesizing it when absent.
func (s *SiteSettings) GeneralOrDefault() GeneralSettings {
	if s.General != nil {
		return *s.General
	}
	return GeneralSettings{SiteName: DefaultSiteName, Tagline: DefaultTagline}
}

func (s *SiteSettings) ContactOrDefault() ContactSettings {
	if s.Contact != nil {
		return *s.Contact
	}
	phone := DefaultContactPhone
	return ContactSettings{Address: DefaultAddress(), Phone: &phone, Email: DefaultContactEmail}
}

func (s *SiteSettings) HoursOrDefault() HoursSettings {
	if s.Hours != nil {
		h := *s.Hours
		if h.Schedule == nil {
			h.Schedule = []HoursEntry{}
		}
		return h
	}
	return *DefaultHours()
}

func (s *SiteSettings) SocialOrDefault() SocialSettings {
	if s.Social != nil {
		return *s.Social
	}
	return SocialSettings{}
}

// BookingOrDefault falls back to the contact email when no notification
// address was configured.
func (s *SiteSettings) BookingOrDefault() BookingSettings {
	b := *DefaultBooking()
	if s.Booking != nil {
		b = *s.Booking
	}
	if b.NotificationEmail == "" {
		b.NotificationEmail = s.ContactOrDefault().Email
	}
	return b
}

func (s *SiteSettings) AppearanceOrDefault() AppearanceSettings {
	if s.Appearance == nil {
		return *DefaultAppearance()
	}
	a := *s.Appearance
	if !contains(ThemePresets, a.ThemePreset) {
		a.ThemePreset = DefaultThemePreset
	}
	if !contains(HeaderStyles, a.HeaderStyle) {
		a.HeaderStyle = DefaultHeaderStyle
	}
	return a
}

func (s *SiteSettings) FooterOrDefault() FooterSettings {
	if s.Footer == nil {
		return *DefaultFooter()
	}
	f := *s.Footer
	if f.QuickLinks == nil {
		f.QuickLinks = []QuickLink{}
	}
	return f
}

func (s *SiteSettings) NavigationOrDefault() NavigationSettings {
	if s.Navigation == nil || s.Navigation.ExternalLinks == nil {
		return NavigationSettings{ExternalLinks: []ExternalLink{}}
	}
	return *s.Navigation
}

// IsThemePreset reports whether v is a selectable theme preset.
func IsThemePreset(v string) bool { return contains(ThemePresets, v) }

// IsHeaderStyle reports whether v is a selectable header style.
func IsHeaderStyle(v string) bool { return contains(HeaderStyles, v) }

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
