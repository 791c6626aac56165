// Package contactsync keeps the site settings contact fields and the contact
// page's info and map sections roughly in step.
//
// Every sync is best-effort. Malformed input is skipped and leaves the target
// untouched; only storage failures are returned as errors, and callers log
// those without failing the request that triggered them.
package contactsync

import (
	"context"
	"errors"
	"strings"
	"time"

	pagestore "github.com/dalemusser/stratasite/internal/app/store/pages"
	sectionstore "github.com/dalemusser/stratasite/internal/app/store/sections"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/app/system/inputval"
	"github.com/dalemusser/stratasite/internal/app/system/sectiontypes"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/spf13/cast"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// MapSectionKey is the key of the contact page's map section.
const MapSectionKey = "map"

// ErrContactPageNotFound is returned by FromPage when there is no contact page.
var ErrContactPageNotFound = errors.New("contact page not found")

// Result describes what one sync step did.
type Result struct {
	Applied bool
	Reason  string
}

func skipped(reason string) Result { return Result{Reason: reason} }

var applied = Result{Applied: true}

// Report groups the info and map steps of a full sync.
type Report struct {
	Infos Result
	Map   Result
}

// Synchronizer reconciles settings and the contact page.
type Synchronizer struct {
	pages    *pagestore.Store
	sections *sectionstore.Store
	settings *settingsstore.Store
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Synchronizer over db.
func New(db *mongo.Database, logger *zap.Logger) *Synchronizer {
	return &Synchronizer{
		pages:    pagestore.New(db),
		sections: sectionstore.New(db),
		settings: settingsstore.New(db),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Settings -> page                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SyncFromSettingsToPage writes address, phone, email and opening hours into
// the contact page's contact-infos section. Other content keys are kept.
func (s *Synchronizer) SyncFromSettingsToPage(ctx context.Context, settings *models.SiteSettings) (Result, error) {
	page, sec, res, err := s.contactSection(ctx, nil, []string{sectiontypes.ContactInfos})
	if err != nil || !res.Applied {
		return res, err
	}

	content := copyContent(sec.Content)
	writeInfos(content, settings)

	return applied, s.saveSection(ctx, page, sec, content)
}

// SyncMapFromSettings writes the configured embed URL into the contact page's
// map section. Nothing happens when no embed URL is configured.
func (s *Synchronizer) SyncMapFromSettings(ctx context.Context, settings *models.SiteSettings) (Result, error) {
	embed := settings.ContactOrDefault().GoogleMapsEmbed
	if embed == "" {
		return skipped("no embed url configured"), nil
	}

	page, sec, res, err := s.contactSection(ctx, []string{MapSectionKey}, []string{sectiontypes.GoogleMap})
	if err != nil || !res.Applied {
		return res, err
	}

	content := copyContent(sec.Content)
	content["embedUrl"] = embed

	return applied, s.saveSection(ctx, page, sec, content)
}

// FromSettings runs both settings -> page steps.
func (s *Synchronizer) FromSettings(ctx context.Context, settings *models.SiteSettings) (Report, error) {
	var rep Report
	var err error
	if rep.Infos, err = s.SyncFromSettingsToPage(ctx, settings); err != nil {
		return rep, err
	}
	rep.Map, err = s.SyncMapFromSettings(ctx, settings)
	return rep, err
}

func (s *Synchronizer) contactSection(ctx context.Context, keys, types []string) (models.Page, models.Section, Result, error) {
	page, err := s.pages.GetBySlug(ctx, models.PageSlugContact)
	if errors.Is(err, pagestore.ErrNotFound) {
		return models.Page{}, models.Section{}, skipped("no contact page"), nil
	}
	if err != nil {
		return models.Page{}, models.Section{}, Result{}, err
	}

	sec, err := s.sections.FindFirst(ctx, page.ID, keys, types)
	if errors.Is(err, sectionstore.ErrNotFound) {
		return page, models.Section{}, skipped("no matching section on contact page"), nil
	}
	if err != nil {
		return page, models.Section{}, Result{}, err
	}
	return page, sec, applied, nil
}

func (s *Synchronizer) saveSection(ctx context.Context, page models.Page, sec models.Section, content map[string]any) error {
	now := s.now()
	if _, err := s.sections.Update(ctx, sec.ID, bson.M{"content": content, "updated_at": now}, nil); err != nil {
		return err
	}
	return s.pages.Touch(ctx, page.ID, now)
}

// writeInfos overwrites the contact fields of a contact-infos content tree.
func writeInfos(content map[string]any, settings *models.SiteSettings) {
	contact := settings.ContactOrDefault()
	hours := settings.HoursOrDefault()

	content["address"] = map[string]any{
		"street": contact.Address.Street,
		"city":   JoinCity(contact.Address.PostalCode, contact.Address.City),
	}
	phone := ""
	if contact.Phone != nil {
		phone = *contact.Phone
	}
	content["phone"] = phone
	content["email"] = contact.Email

	schedule := make([]any, 0, len(hours.Schedule))
	for _, h := range hours.Schedule {
		schedule = append(schedule, map[string]any{"days": h.Days, "hours": h.Hours})
	}
	content["hours"] = schedule
}

/*─────────────────────────────────────────────────────────────────────────────*
| Page -> settings                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

// SyncFromPageToSettings reads a contact-infos section back into settings.
func (s *Synchronizer) SyncFromPageToSettings(ctx context.Context, sec models.Section) (Result, error) {
	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return Result{}, err
	}
	if !ReadInfos(settings, sec.Content) {
		return skipped("section carries no contact fields"), nil
	}
	settings.UpdatedAt = s.now()
	if err := s.settings.Save(ctx, *settings); err != nil {
		return Result{}, err
	}
	return applied, nil
}

// SyncMapToSettings copies the map section's embed URL into settings when it
// is a maps embed URL.
func (s *Synchronizer) SyncMapToSettings(ctx context.Context, sec models.Section) (Result, error) {
	raw, ok := sec.Content["embedUrl"].(string)
	if !ok {
		return skipped("section has no embedUrl"), nil
	}
	url := ExtractEmbedURL(raw)
	if !IsMapsEmbed(url) {
		return skipped("embedUrl is not a maps embed url"), nil
	}

	settings, err := s.settings.GetOrCreate(ctx)
	if err != nil {
		return Result{}, err
	}
	contact := settings.ContactOrDefault()
	contact.GoogleMapsEmbed = url
	settings.Contact = &contact
	settings.UpdatedAt = s.now()
	if err := s.settings.Save(ctx, *settings); err != nil {
		return Result{}, err
	}
	return applied, nil
}

// SyncSection dispatches a contact page section to the matching page ->
// settings step. Sections of other types are skipped.
func (s *Synchronizer) SyncSection(ctx context.Context, sec models.Section) (Result, error) {
	switch {
	case sectiontypes.IsContactInfo(sec.Type):
		return s.SyncFromPageToSettings(ctx, sec)
	case sec.Type == sectiontypes.GoogleMap:
		return s.SyncMapToSettings(ctx, sec)
	default:
		return skipped("section type does not sync"), nil
	}
}

// FromPage pushes every info and map section of the contact page into
// settings, in render order.
func (s *Synchronizer) FromPage(ctx context.Context) (Report, error) {
	var rep Report
	page, err := s.pages.GetBySlug(ctx, models.PageSlugContact)
	if errors.Is(err, pagestore.ErrNotFound) {
		return rep, ErrContactPageNotFound
	}
	if err != nil {
		return rep, err
	}

	secs, err := s.sections.ListByPageAndType(ctx, page.ID, sectiontypes.ContactInfos, sectiontypes.ContactInfo, sectiontypes.GoogleMap)
	if err != nil {
		return rep, err
	}
	rep.Infos = skipped("no contact-infos section")
	rep.Map = skipped("no google-map section")
	for _, sec := range secs {
		res, err := s.SyncSection(ctx, sec)
		if err != nil {
			return rep, err
		}
		if sec.Type == sectiontypes.GoogleMap {
			rep.Map = res
		} else {
			rep.Infos = res
		}
	}
	return rep, nil
}

// ReadInfos applies a contact-infos content tree to settings and reports
// whether any contact field was present.
func ReadInfos(settings *models.SiteSettings, content map[string]any) bool {
	contact := settings.ContactOrDefault()
	touched := false

	if addr, ok := content["address"].(map[string]any); ok {
		touched = true
		if street, ok := addr["street"]; ok && street != nil {
			contact.Address.Street = asString(street)
		}
		if raw, ok := addr["city"]; ok && raw != nil {
			if postal, city, ok := SplitCity(asString(raw)); ok {
				contact.Address.PostalCode = postal
				contact.Address.City = city
			} else {
				contact.Address.City = city
			}
		}
	}

	if phone, ok := content["phone"]; ok && phone != nil {
		touched = true
		p := asString(phone)
		contact.Phone = &p
	}

	if raw, ok := content["email"]; ok && raw != nil {
		touched = true
		email := strings.TrimSpace(asString(raw))
		if email != "" && inputval.IsValidEmail(email) {
			contact.Email = email
		}
	}

	if list, ok := content["hours"].([]any); ok {
		touched = true
		hours := settings.HoursOrDefault()
		hours.Schedule = make([]models.HoursEntry, 0, len(list))
		for _, item := range list {
			entry := models.HoursEntry{}
			if m, ok := item.(map[string]any); ok {
				entry.Days = strings.TrimSpace(asString(m["days"]))
				entry.Hours = strings.TrimSpace(asString(m["hours"]))
			}
			hours.Schedule = append(hours.Schedule, entry)
		}
		settings.Hours = &hours
	}

	if touched {
		settings.Contact = &contact
	}
	return touched
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// asString renders scalar JSON values the way they were typed in the editor.
func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		if t {
			return "1"
		}
		return ""
	default:
		return strings.TrimSpace(cast.ToString(t))
	}
}

func copyContent(m map[string]any) map[string]any {
	out := make(map[string]any, len(m)+4)
	for k, v := range m {
		out[k] = v
	}
	return out
}
