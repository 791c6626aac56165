package settingspatch

import (
	"testing"
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	created = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	now     = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
)

func defaults() *models.SiteSettings {
	s := models.DefaultSiteSettings(created)
	return &s
}

func TestApply_OnlyPresentKeysChange(t *testing.T) {
	s := defaults()
	before := *s

	err := Apply(s, map[string]any{
		"general": map[string]any{"siteName": "  Nouveau nom  "},
	}, now)
	require.NoError(t, err)

	assert.Equal(t, "Nouveau nom", s.General.SiteName)
	assert.Equal(t, before.General.Tagline, s.General.Tagline)
	assert.Equal(t, now, s.UpdatedAt)
	assert.Equal(t, before.Contact, s.Contact)
	assert.Equal(t, before.Appearance, s.Appearance)
}

func TestApply_EmptyPayloadBumpsTimestamp(t *testing.T) {
	s := defaults()
	require.NoError(t, Apply(s, map[string]any{}, now))
	assert.Equal(t, now, s.UpdatedAt)
}

func TestApply_NonObjectNamespaceIgnored(t *testing.T) {
	s := defaults()
	require.NoError(t, Apply(s, map[string]any{"general": "oops", "contact": []any{1}}, now))
	assert.Equal(t, models.DefaultSiteName, s.General.SiteName)
}

func TestApply_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		payload map[string]any
		field   string
		msg     string
	}{
		{"blank site name", map[string]any{"general": map[string]any{"siteName": "  "}}, "general.siteName", "Site name cannot be empty."},
		{"null site name", map[string]any{"general": map[string]any{"siteName": nil}}, "general.siteName", "Site name cannot be empty."},
		{"bad contact email", map[string]any{"contact": map[string]any{"email": "nope"}}, "contact.email", "Invalid email format."},
		{"empty contact email", map[string]any{"contact": map[string]any{"email": ""}}, "contact.email", "Invalid email format."},
		{"address not object", map[string]any{"contact": map[string]any{"address": "1 rue"}}, "contact.address", "Address must be an object."},
		{"bad booking email", map[string]any{"booking": map[string]any{"notificationEmail": "x@"}}, "booking.notificationEmail", "Invalid email format."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaults()
			before := *s
			err := Apply(s, tt.payload, now)
			var perr *Error
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, map[string]string{tt.field: tt.msg}, perr.Fields())
			assert.Equal(t, before, *s, "settings untouched on error")
		})
	}
}

func TestApply_ErrorLeavesEarlierNamespacesUntouched(t *testing.T) {
	s := defaults()
	err := Apply(s, map[string]any{
		"general": map[string]any{"siteName": "Changed"},
		"contact": map[string]any{"email": "bad"},
	}, now)
	require.Error(t, err)
	assert.Equal(t, models.DefaultSiteName, s.General.SiteName)
}

func TestApply_Contact(t *testing.T) {
	s := defaults()
	err := Apply(s, map[string]any{
		"contact": map[string]any{
			"email":   " hello@example.fr ",
			"phone":   nil,
			"address": map[string]any{"city": " Lyon ", "street": nil},
			"googleMapsEmbed": `<iframe src="https://www.google.com/maps/embed?pb=abc" width="600"></iframe>`,
		},
	}, now)
	require.NoError(t, err)

	c := s.Contact
	assert.Equal(t, "hello@example.fr", c.Email)
	assert.Nil(t, c.Phone)
	assert.Equal(t, models.Address{Street: "123 Rue du Bien-Etre", PostalCode: "75011", City: "Lyon"}, c.Address)
	assert.Equal(t, "https://www.google.com/maps/embed?pb=abc", c.GoogleMapsEmbed)
}

func TestApply_Appearance(t *testing.T) {
	tests := []struct {
		name  string
		in    map[string]any
		check func(t *testing.T, a *models.AppearanceSettings)
	}{
		{"valid preset", map[string]any{"themePreset": "zen"}, func(t *testing.T, a *models.AppearanceSettings) {
			assert.Equal(t, "zen", a.ThemePreset)
		}},
		{"unknown preset ignored", map[string]any{"themePreset": "neon"}, func(t *testing.T, a *models.AppearanceSettings) {
			assert.Equal(t, models.DefaultThemePreset, a.ThemePreset)
		}},
		{"unknown header style ignored", map[string]any{"headerStyle": "floating"}, func(t *testing.T, a *models.AppearanceSettings) {
			assert.Equal(t, models.DefaultHeaderStyle, a.HeaderStyle)
		}},
		{"valid color", map[string]any{"customAccentColor": "#A1b2C3"}, func(t *testing.T, a *models.AppearanceSettings) {
			require.NotNil(t, a.CustomAccentColor)
			assert.Equal(t, "#A1b2C3", *a.CustomAccentColor)
		}},
		{"bad color ignored", map[string]any{"customAccentColor": "red"}, func(t *testing.T, a *models.AppearanceSettings) {
			assert.Nil(t, a.CustomAccentColor)
		}},
		{"flags", map[string]any{"useCustomAccent": true, "showDarkModeToggle": false}, func(t *testing.T, a *models.AppearanceSettings) {
			assert.True(t, a.UseCustomAccent)
			assert.False(t, a.ShowDarkModeToggle)
		}},
		{"blank background clears", map[string]any{"bodyBackgroundImage": "  "}, func(t *testing.T, a *models.AppearanceSettings) {
			assert.Nil(t, a.BodyBackgroundImage)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := defaults()
			require.NoError(t, Apply(s, map[string]any{"appearance": tt.in}, now))
			tt.check(t, s.Appearance)
		})
	}
}

func TestApply_EmptyColorClearsExisting(t *testing.T) {
	s := defaults()
	require.NoError(t, Apply(s, map[string]any{"appearance": map[string]any{"customAccentColor": "#000000"}}, now))
	require.NotNil(t, s.Appearance.CustomAccentColor)
	require.NoError(t, Apply(s, map[string]any{"appearance": map[string]any{"customAccentColor": ""}}, now))
	assert.Nil(t, s.Appearance.CustomAccentColor)
}

func TestApply_Lists(t *testing.T) {
	s := defaults()
	err := Apply(s, map[string]any{
		"hours": map[string]any{
			"schedule":      []any{map[string]any{"days": " Lundi ", "hours": "9h"}, "junk"},
			"closedMessage": " Fermé ",
		},
		"footer": map[string]any{
			"quickLinks": []any{map[string]any{"label": "A", "url": "/a"}, 3},
			"showHours":  true,
		},
		"navigation": map[string]any{
			"externalLinks": []any{
				map[string]any{"id": "x", "label": "Blog", "url": "https://b.example", "order": float64(2)},
				map[string]any{"id": "y", "label": "Shop", "url": "https://s.example", "openInNewTab": false},
			},
		},
		"booking": map[string]any{"minDelayHours": float64(-5)},
	}, now)
	require.NoError(t, err)

	want := []models.HoursEntry{{Days: "Lundi", Hours: "9h"}, {}}
	if diff := cmp.Diff(want, s.Hours.Schedule); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "Fermé", s.Hours.ClosedMessage)
	assert.Equal(t, []models.QuickLink{{Label: "A", URL: "/a"}, {}}, s.Footer.QuickLinks)
	assert.True(t, s.Footer.ShowHours)

	links := s.Navigation.ExternalLinks
	require.Len(t, links, 2)
	assert.True(t, links[0].OpenInNewTab, "defaults to new tab")
	require.NotNil(t, links[0].Order)
	assert.Equal(t, 2, *links[0].Order)
	assert.False(t, links[1].OpenInNewTab)
	assert.Equal(t, 0, s.Booking.MinDelayHours, "clamped at zero")
}

func TestApply_FillsMissingNamespace(t *testing.T) {
	s := &models.SiteSettings{UpdatedAt: created}
	require.NoError(t, Apply(s, map[string]any{"social": map[string]any{"instagram": " @me "}}, now))
	require.NotNil(t, s.Social)
	require.NotNil(t, s.Social.Instagram)
	assert.Equal(t, "@me", *s.Social.Instagram)
	assert.Nil(t, s.Social.Facebook)
	assert.Nil(t, s.General)
}

func TestNormalize(t *testing.T) {
	s := &models.SiteSettings{UpdatedAt: now}
	v := Normalize(s)

	assert.Equal(t, models.DefaultSiteName, v.General.SiteName)
	assert.Equal(t, models.DefaultTagline, v.General.DefaultMetaDescription, "falls back to the tagline")
	assert.Equal(t, models.DefaultContactPhone, v.Contact.Phone)
	assert.Nil(t, v.Contact.GoogleMapsEmbed)
	assert.Equal(t, models.DefaultContactEmail, v.Booking.NotificationEmail)
	assert.Equal(t, models.DefaultThemePreset, v.Appearance.ThemePreset)
	assert.NotNil(t, v.Navigation.ExternalLinks)
	assert.Equal(t, "2024-06-01T12:00:00Z", v.UpdatedAt)

	s.Contact = &models.ContactSettings{Email: "a@b.fr", GoogleMapsEmbed: "https://www.google.com/maps/embed?pb=1"}
	v = Normalize(s)
	assert.Equal(t, "", v.Contact.Phone)
	require.NotNil(t, v.Contact.GoogleMapsEmbed)
	assert.Equal(t, "a@b.fr", v.Booking.NotificationEmail, "notification email follows contact email")
}
