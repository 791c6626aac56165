package settingspatch

import (
	"time"

	"github.com/dalemusser/stratasite/internal/domain/models"
)

// View is the admin representation of the settings record. Every namespace
// is present, filled from defaults where the record has none.
type View struct {
	General    GeneralView               `json:"general"`
	Contact    ContactView               `json:"contact"`
	Hours      models.HoursSettings      `json:"hours"`
	Social     models.SocialSettings     `json:"social"`
	Booking    models.BookingSettings    `json:"booking"`
	Appearance models.AppearanceSettings `json:"appearance"`
	Footer     models.FooterSettings     `json:"footer"`
	Navigation models.NavigationSettings `json:"navigation"`
	UpdatedAt  string                    `json:"updatedAt"`
}

type GeneralView struct {
	SiteName               string  `json:"siteName"`
	Logo                   *string `json:"logo"`
	Favicon                *string `json:"favicon"`
	DefaultMetaDescription string  `json:"defaultMetaDescription"`
}

type ContactView struct {
	Address         models.Address `json:"address"`
	Phone           string         `json:"phone"`
	Email           string         `json:"email"`
	GoogleMapsURL   *string        `json:"googleMapsUrl"`
	GoogleMapsEmbed *string        `json:"googleMapsEmbed"`
}

// Normalize renders settings for the admin API.
func Normalize(s *models.SiteSettings) View {
	g := s.GeneralOrDefault()
	desc := g.Tagline
	if g.DefaultMetaDescription != nil {
		desc = *g.DefaultMetaDescription
	}

	c := s.ContactOrDefault()
	phone := ""
	if c.Phone != nil {
		phone = *c.Phone
	}
	var embed *string
	if c.GoogleMapsEmbed != "" {
		e := c.GoogleMapsEmbed
		embed = &e
	}

	return View{
		General: GeneralView{
			SiteName:               g.SiteName,
			Logo:                   g.Logo,
			Favicon:                g.Favicon,
			DefaultMetaDescription: desc,
		},
		Contact: ContactView{
			Address:         c.Address,
			Phone:           phone,
			Email:           c.Email,
			GoogleMapsURL:   c.GoogleMapsURL,
			GoogleMapsEmbed: embed,
		},
		Hours:      s.HoursOrDefault(),
		Social:     s.SocialOrDefault(),
		Booking:    s.BookingOrDefault(),
		Appearance: s.AppearanceOrDefault(),
		Footer:     s.FooterOrDefault(),
		Navigation: s.NavigationOrDefault(),
		UpdatedAt:  s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
