package contactsync

import (
	"testing"
	"time"

	pagestore "github.com/dalemusser/stratasite/internal/app/store/pages"
	sectionstore "github.com/dalemusser/stratasite/internal/app/store/sections"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func strPtr(s string) *string { return &s }

type fixture struct {
	sync     *Synchronizer
	pages    *pagestore.Store
	sections *sectionstore.Store
	settings *settingsstore.Store
}

func newFixture(t *testing.T) (*fixture, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return &fixture{
		sync:     New(db, zap.NewNop()),
		pages:    pagestore.New(db),
		sections: sectionstore.New(db),
		settings: settingsstore.New(db),
	}, db
}

// seedContactPage creates the contact page with an infos and a map section.
func (f *fixture) seedContactPage(t *testing.T) (models.Page, models.Section, models.Section) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	page, err := f.pages.Create(ctx, models.Page{Slug: models.PageSlugContact, Title: "Contact", ShowInNav: true})
	require.NoError(t, err)

	infos, err := f.sections.Create(ctx, models.Section{
		PageID:     page.ID,
		SectionKey: "infos",
		Type:       "contact-infos",
		Content: map[string]any{
			"title":   "Me trouver",
			"address": map[string]any{"street": "", "city": ""},
		},
		SortOrder: 1,
	})
	require.NoError(t, err)

	mapSec, err := f.sections.Create(ctx, models.Section{
		PageID:     page.ID,
		SectionKey: "map",
		Type:       "google-map",
		Content:    map[string]any{"embedUrl": ""},
		SortOrder:  2,
	})
	require.NoError(t, err)
	return page, infos, mapSec
}

func TestSyncFromSettingsToPage(t *testing.T) {
	f, _ := newFixture(t)
	_, infos, _ := f.seedContactPage(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	settings := models.DefaultSiteSettings(time.Now())
	settings.Contact = &models.ContactSettings{
		Address: models.Address{Street: "1 Rue X", PostalCode: "75011", City: "Paris"},
		Phone:   strPtr("06 00 00 00 00"),
		Email:   "contact@example.fr",
	}
	settings.Hours = &models.HoursSettings{Schedule: []models.HoursEntry{{Days: "Lundi", Hours: "10h - 19h"}}}

	res, err := f.sync.SyncFromSettingsToPage(ctx, &settings)
	require.NoError(t, err)
	require.True(t, res.Applied, res.Reason)

	got, err := f.sections.Get(ctx, infos.PageID, "infos")
	require.NoError(t, err)

	want := map[string]any{
		"title":   "Me trouver",
		"address": map[string]any{"street": "1 Rue X", "city": "75011 Paris"},
		"phone":   "06 00 00 00 00",
		"email":   "contact@example.fr",
		"hours":   []any{map[string]any{"days": "Lundi", "hours": "10h - 19h"}},
	}
	if diff := cmp.Diff(want, got.Content); diff != "" {
		t.Errorf("infos content mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncFromSettingsToPage_NoContactPage(t *testing.T) {
	f, _ := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	settings := models.DefaultSiteSettings(time.Now())
	res, err := f.sync.SyncFromSettingsToPage(ctx, &settings)
	require.NoError(t, err)
	if res.Applied {
		t.Error("sync without a contact page should be skipped")
	}
}

func TestRoundTrip_SettingsPageSettings(t *testing.T) {
	f, _ := newFixture(t)
	page, _, _ := f.seedContactPage(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	start := models.DefaultSiteSettings(time.Now())
	start.Contact = &models.ContactSettings{
		Address: models.Address{Street: "1 Rue X", PostalCode: "75011", City: "Paris"},
		Email:   "contact@example.fr",
	}
	require.NoError(t, f.settings.Save(ctx, start))

	_, err := f.sync.SyncFromSettingsToPage(ctx, &start)
	require.NoError(t, err)

	infos, err := f.sections.Get(ctx, page.ID, "infos")
	require.NoError(t, err)
	addr := infos.Content["address"].(map[string]any)
	if addr["city"] != "75011 Paris" {
		t.Fatalf("page city = %v, want 75011 Paris", addr["city"])
	}

	// Scramble settings, then push the page back.
	scrambled := start
	scrambled.Contact = &models.ContactSettings{Address: models.Address{PostalCode: "00000", City: "X"}, Email: "contact@example.fr"}
	require.NoError(t, f.settings.Save(ctx, scrambled))

	res, err := f.sync.SyncFromPageToSettings(ctx, infos)
	require.NoError(t, err)
	require.True(t, res.Applied)

	got, err := f.settings.Find(ctx)
	require.NoError(t, err)
	want := models.Address{Street: "1 Rue X", PostalCode: "75011", City: "Paris"}
	if diff := cmp.Diff(want, got.Contact.Address); diff != "" {
		t.Errorf("address mismatch (-want +got):\n%s", diff)
	}
}

func TestRoundTrip_LossyWithoutPostalCode(t *testing.T) {
	f, _ := newFixture(t)
	page, _, _ := f.seedContactPage(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	start := models.DefaultSiteSettings(time.Now())
	start.Contact = &models.ContactSettings{
		Address: models.Address{Street: "1 Rue X", PostalCode: "", City: "Paris"},
		Email:   "contact@example.fr",
	}
	require.NoError(t, f.settings.Save(ctx, start))
	_, err := f.sync.SyncFromSettingsToPage(ctx, &start)
	require.NoError(t, err)

	// Another writer sets a postal code in settings; the page still shows "Paris".
	withPostal := start
	withPostal.Contact = &models.ContactSettings{
		Address: models.Address{Street: "1 Rue X", PostalCode: "75011", City: "Paris"},
		Email:   "contact@example.fr",
	}
	require.NoError(t, f.settings.Save(ctx, withPostal))

	infos, err := f.sections.Get(ctx, page.ID, "infos")
	require.NoError(t, err)
	_, err = f.sync.SyncFromPageToSettings(ctx, infos)
	require.NoError(t, err)

	got, err := f.settings.Find(ctx)
	require.NoError(t, err)
	// The city string carries no postal code, so the existing one is kept.
	if got.Contact.Address.PostalCode != "75011" || got.Contact.Address.City != "Paris" {
		t.Errorf("address = %+v, want postal code untouched", got.Contact.Address)
	}
}

func TestSyncFromPageToSettings_FieldRules(t *testing.T) {
	f, _ := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	before, err := f.settings.GetOrCreate(ctx)
	require.NoError(t, err)

	sec := models.Section{Type: "contact-infos", Content: map[string]any{
		"address": map[string]any{"street": "2 Rue Y", "city": "Lyon"},
		"phone":   "01 02 03 04 05",
		"email":   "not-an-email",
		"hours": []any{
			map[string]any{"days": " Mardi ", "hours": " 9h - 12h "},
			"garbage",
			map[string]any{"days": "Samedi"},
		},
	}}
	res, err := f.sync.SyncFromPageToSettings(ctx, sec)
	require.NoError(t, err)
	require.True(t, res.Applied)

	got, err := f.settings.Find(ctx)
	require.NoError(t, err)

	if got.Contact.Address.City != "Lyon" || got.Contact.Address.PostalCode != before.Contact.Address.PostalCode {
		t.Errorf("address = %+v, want city Lyon and postal code untouched", got.Contact.Address)
	}
	if got.Contact.Phone == nil || *got.Contact.Phone != "01 02 03 04 05" {
		t.Errorf("phone = %v", got.Contact.Phone)
	}
	if got.Contact.Email != before.Contact.Email {
		t.Errorf("invalid email should be dropped, got %q", got.Contact.Email)
	}
	wantHours := []models.HoursEntry{
		{Days: "Mardi", Hours: "9h - 12h"},
		{},
		{Days: "Samedi"},
	}
	if diff := cmp.Diff(wantHours, got.Hours.Schedule); diff != "" {
		t.Errorf("schedule mismatch (-want +got):\n%s", diff)
	}
}

func TestSyncMapToSettings(t *testing.T) {
	f, _ := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := f.settings.GetOrCreate(ctx)
	require.NoError(t, err)

	sec := models.Section{SectionKey: "map", Type: "google-map", Content: map[string]any{
		"embedUrl": `<iframe src="https://www.google.com/maps/embed?pb=abc" width="600"></iframe>`,
	}}
	res, err := f.sync.SyncMapToSettings(ctx, sec)
	require.NoError(t, err)
	require.True(t, res.Applied)

	got, err := f.settings.Find(ctx)
	require.NoError(t, err)
	if got.Contact.GoogleMapsEmbed != "https://www.google.com/maps/embed?pb=abc" {
		t.Errorf("googleMapsEmbed = %q", got.Contact.GoogleMapsEmbed)
	}

	// A non-embed URL leaves settings unchanged.
	sec.Content["embedUrl"] = "https://example.com/my-map"
	res, err = f.sync.SyncMapToSettings(ctx, sec)
	require.NoError(t, err)
	if res.Applied {
		t.Error("non embed url should be skipped")
	}
	again, err := f.settings.Find(ctx)
	require.NoError(t, err)
	if diff := cmp.Diff(got, again); diff != "" {
		t.Errorf("settings changed (-before +after):\n%s", diff)
	}
}

func TestSyncMapFromSettings(t *testing.T) {
	f, _ := newFixture(t)
	page, _, _ := f.seedContactPage(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	settings := models.DefaultSiteSettings(time.Now())
	res, err := f.sync.SyncMapFromSettings(ctx, &settings)
	require.NoError(t, err)
	if res.Applied {
		t.Error("empty embed url should be skipped")
	}

	settings.Contact.GoogleMapsEmbed = "https://www.google.com/maps/embed?pb=xyz"
	res, err = f.sync.SyncMapFromSettings(ctx, &settings)
	require.NoError(t, err)
	require.True(t, res.Applied)

	sec, err := f.sections.Get(ctx, page.ID, "map")
	require.NoError(t, err)
	if sec.Content["embedUrl"] != "https://www.google.com/maps/embed?pb=xyz" {
		t.Errorf("embedUrl = %v", sec.Content["embedUrl"])
	}
}

func TestFromPage(t *testing.T) {
	f, _ := newFixture(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := f.sync.FromPage(ctx); err != ErrContactPageNotFound {
		t.Fatalf("FromPage() without page error = %v, want ErrContactPageNotFound", err)
	}

	_, infos, mapSec := f.seedContactPage(t)
	_, err := f.sections.Update(ctx, infos.ID, map[string]any{"content": map[string]any{
		"address": map[string]any{"street": "3 Rue Z", "city": "69001 Lyon"},
		"email":   "lyon@example.fr",
	}}, nil)
	require.NoError(t, err)
	_, err = f.sections.Update(ctx, mapSec.ID, map[string]any{"content": map[string]any{
		"embedUrl": "https://www.google.com/maps/embed?pb=lyon",
	}}, nil)
	require.NoError(t, err)

	rep, err := f.sync.FromPage(ctx)
	require.NoError(t, err)
	require.True(t, rep.Infos.Applied)
	require.True(t, rep.Map.Applied)

	got, err := f.settings.Find(ctx)
	require.NoError(t, err)
	want := models.ContactSettings{
		Address:         models.Address{Street: "3 Rue Z", PostalCode: "69001", City: "Lyon"},
		Phone:           got.Contact.Phone,
		Email:           "lyon@example.fr",
		GoogleMapsEmbed: "https://www.google.com/maps/embed?pb=lyon",
	}
	if diff := cmp.Diff(want, *got.Contact); diff != "" {
		t.Errorf("contact mismatch (-want +got):\n%s", diff)
	}
}

func TestReadInfos_NoContactFields(t *testing.T) {
	s := models.DefaultSiteSettings(time.Now())
	before := *s.Contact
	if ReadInfos(&s, map[string]any{"title": "x"}) {
		t.Error("ReadInfos() should report no contact fields")
	}
	if diff := cmp.Diff(before, *s.Contact); diff != "" {
		t.Errorf("contact changed: %s", diff)
	}
}

func TestReadInfos_NumericValues(t *testing.T) {
	s := models.DefaultSiteSettings(time.Now())
	content := map[string]any{
		"phone":   float64(100000000),
		"address": map[string]any{"street": float64(12), "city": "75011 Paris"},
		"hours":   []any{map[string]any{"days": "Lundi", "hours": float64(9)}},
	}
	require.True(t, ReadInfos(&s, content))

	require.NotNil(t, s.Contact.Phone)
	if got := *s.Contact.Phone; got != "100000000" {
		t.Errorf("phone = %q, want %q", got, "100000000")
	}
	if got := s.Contact.Address.Street; got != "12" {
		t.Errorf("street = %q, want %q", got, "12")
	}
	if got := s.Hours.Schedule[0].Hours; got != "9" {
		t.Errorf("hours = %q, want %q", got, "9")
	}
}
