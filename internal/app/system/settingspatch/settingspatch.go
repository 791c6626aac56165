// Package settingspatch merges admin-submitted partial updates into the
// SiteSettings singleton and renders the admin view of it.
package settingspatch

import (
	"strings"
	"time"

	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/spf13/cast"
)

// Error is a field-keyed validation failure, e.g. {"contact.email": "..."}.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string { return e.Field + ": " + e.Message }

// Fields returns the error in the shape written to 422 responses.
func (e *Error) Fields() map[string]string {
	return map[string]string{e.Field: e.Message}
}

const msgInvalidEmail = "Invalid email format."

// Apply merges payload into settings namespace by namespace. Only keys
// present in the payload are touched. On error settings is left unchanged.
// updated_at is bumped on success.
func Apply(settings *models.SiteSettings, payload map[string]any, now time.Time) error {
	next := *settings

	steps := []struct {
		key string
		fn  func(*models.SiteSettings, map[string]any) error
	}{
		{"general", applyGeneral},
		{"contact", applyContact},
		{"hours", applyHours},
		{"social", applySocial},
		{"booking", applyBooking},
		{"appearance", applyAppearance},
		{"footer", applyFooter},
		{"navigation", applyNavigation},
	}
	for _, st := range steps {
		ns, ok := payload[st.key].(map[string]any)
		if !ok {
			continue
		}
		if err := st.fn(&next, ns); err != nil {
			return err
		}
	}

	next.UpdatedAt = now
	*settings = next
	return nil
}

func applyGeneral(s *models.SiteSettings, in map[string]any) error {
	g := s.GeneralOrDefault()
	if v, ok := in["siteName"]; ok {
		name := trim(v)
		if name == "" {
			return &Error{Field: "general.siteName", Message: "Site name cannot be empty."}
		}
		g.SiteName = name
	}
	setNullable(in, "logo", &g.Logo)
	setNullable(in, "favicon", &g.Favicon)
	setNullable(in, "defaultMetaDescription", &g.DefaultMetaDescription)
	s.General = &g
	return nil
}

func applyContact(s *models.SiteSettings, in map[string]any) error {
	c := s.ContactOrDefault()
	if v, ok := in["email"]; ok {
		email := trim(v)
		if email == "" || !inputval.IsValidEmail(email) {
			return &Error{Field: "contact.email", Message: msgInvalidEmail}
		}
		c.Email = email
	}
	setNullable(in, "phone", &c.Phone)
	if v, ok := in["address"]; ok {
		addr, ok := v.(map[string]any)
		if !ok {
			return &Error{Field: "contact.address", Message: "Address must be an object."}
		}
		setIfSet(addr, "street", &c.Address.Street)
		setIfSet(addr, "postalCode", &c.Address.PostalCode)
		setIfSet(addr, "city", &c.Address.City)
	}
	setNullable(in, "googleMapsUrl", &c.GoogleMapsURL)
	if v, ok := in["googleMapsEmbed"]; ok {
		if v == nil {
			c.GoogleMapsEmbed = ""
		} else {
			c.GoogleMapsEmbed = contactsync.ExtractEmbedURL(trim(v))
		}
	}
	s.Contact = &c
	return nil
}

func applyHours(s *models.SiteSettings, in map[string]any) error {
	h := s.HoursOrDefault()
	if list, ok := in["schedule"].([]any); ok {
		h.Schedule = make([]models.HoursEntry, 0, len(list))
		for _, item := range list {
			m, _ := item.(map[string]any)
			h.Schedule = append(h.Schedule, models.HoursEntry{Days: trim(m["days"]), Hours: trim(m["hours"])})
		}
	}
	if v, ok := in["closedMessage"]; ok {
		h.ClosedMessage = trim(v)
	}
	s.Hours = &h
	return nil
}

func applySocial(s *models.SiteSettings, in map[string]any) error {
	soc := s.SocialOrDefault()
	setNullable(in, "instagram", &soc.Instagram)
	setNullable(in, "facebook", &soc.Facebook)
	setNullable(in, "linkedin", &soc.LinkedIn)
	s.Social = &soc
	return nil
}

func applyBooking(s *models.SiteSettings, in map[string]any) error {
	b := s.BookingOrDefault()
	if v, ok := in["notificationEmail"]; ok {
		email := trim(v)
		if email == "" || !inputval.IsValidEmail(email) {
			return &Error{Field: "booking.notificationEmail", Message: msgInvalidEmail}
		}
		b.NotificationEmail = email
	}
	if v, ok := in["minDelayHours"]; ok {
		b.MinDelayHours = max(0, cast.ToInt(v))
	}
	if v, ok := in["confirmationMessage"]; ok {
		b.ConfirmationMessage = trim(v)
	}
	s.Booking = &b
	return nil
}

// applyAppearance ignores out-of-range enum and color values rather than
// rejecting the request.
func applyAppearance(s *models.SiteSettings, in map[string]any) error {
	a := s.AppearanceOrDefault()
	if v, ok := in["themePreset"]; ok {
		if p := trim(v); models.IsThemePreset(p) {
			a.ThemePreset = p
		}
	}
	if v, ok := in["useCustomAccent"]; ok {
		a.UseCustomAccent = cast.ToBool(v)
	}
	if v, ok := in["customAccentColor"]; ok {
		switch color := trim(v); {
		case color == "":
			a.CustomAccentColor = nil
		case inputval.IsHexColor(color):
			a.CustomAccentColor = &color
		}
	}
	if v, ok := in["headerStyle"]; ok {
		if st := trim(v); models.IsHeaderStyle(st) {
			a.HeaderStyle = st
		}
	}
	if v, ok := in["showDarkModeToggle"]; ok {
		a.ShowDarkModeToggle = cast.ToBool(v)
	}
	if v, ok := in["bodyBackgroundImage"]; ok {
		a.BodyBackgroundImage = nonEmpty(v)
	}
	s.Appearance = &a
	return nil
}

func applyFooter(s *models.SiteSettings, in map[string]any) error {
	f := s.FooterOrDefault()
	if v, ok := in["copyrightText"]; ok {
		f.CopyrightText = trim(v)
	}
	if list, ok := in["quickLinks"].([]any); ok {
		f.QuickLinks = make([]models.QuickLink, 0, len(list))
		for _, item := range list {
			m, _ := item.(map[string]any)
			f.QuickLinks = append(f.QuickLinks, models.QuickLink{Label: trim(m["label"]), URL: trim(m["url"])})
		}
	}
	setBool(in, "showSocialLinks", &f.ShowSocialLinks)
	setBool(in, "showContactInfo", &f.ShowContactInfo)
	setBool(in, "showHours", &f.ShowHours)
	if v, ok := in["customDescription"]; ok {
		f.CustomDescription = nonEmpty(v)
	}
	if v, ok := in["mentionsLegalesText"]; ok {
		f.MentionsLegalesText = trim(v)
	}
	setBool(in, "showMentionsLegales", &f.ShowMentionsLegales)
	s.Footer = &f
	return nil
}

func applyNavigation(s *models.SiteSettings, in map[string]any) error {
	n := s.NavigationOrDefault()
	if list, ok := in["externalLinks"].([]any); ok {
		n.ExternalLinks = make([]models.ExternalLink, 0, len(list))
		for _, item := range list {
			m, _ := item.(map[string]any)
			link := models.ExternalLink{
				ID:           trim(m["id"]),
				Label:        trim(m["label"]),
				URL:          trim(m["url"]),
				OpenInNewTab: true,
			}
			order := cast.ToInt(m["order"])
			link.Order = &order
			if v, ok := m["openInNewTab"]; ok && v != nil {
				link.OpenInNewTab = cast.ToBool(v)
			}
			n.ExternalLinks = append(n.ExternalLinks, link)
		}
	}
	s.Navigation = &n
	return nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Coercion helpers                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func trim(v any) string { return strings.TrimSpace(cast.ToString(v)) }

// setNullable copies in[key] into *dst when present; null clears.
func setNullable(in map[string]any, key string, dst **string) {
	v, ok := in[key]
	if !ok {
		return
	}
	if v == nil {
		*dst = nil
		return
	}
	t := trim(v)
	*dst = &t
}

// setIfSet copies in[key] into *dst when present and non-null.
func setIfSet(in map[string]any, key string, dst *string) {
	if v, ok := in[key]; ok && v != nil {
		*dst = trim(v)
	}
}

func setBool(in map[string]any, key string, dst *bool) {
	if v, ok := in[key]; ok {
		*dst = cast.ToBool(v)
	}
}

// nonEmpty returns nil for null or blank values.
func nonEmpty(v any) *string {
	if v == nil {
		return nil
	}
	t := trim(v)
	if t == "" {
		return nil
	}
	return &t
}
