package seeding

import (
	"errors"
	"testing"

	pagestore "github.com/dalemusser/stratasite/internal/app/store/pages"
	sectionstore "github.com/dalemusser/stratasite/internal/app/store/sections"
	servicestore "github.com/dalemusser/stratasite/internal/app/store/services"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/authutil"
	"github.com/dalemusser/stratasite/internal/app/system/sectiontypes"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSeedAll_CreatesDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	rep, err := SeedAll(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, rep.SettingsCreated)
	assert.Equal(t, 6, rep.PagesCreated)
	assert.Equal(t, 2, rep.ServicesCreated)

	exists, err := settingsstore.New(db).Exists(ctx)
	require.NoError(t, err)
	assert.True(t, exists)

	pages := pagestore.New(db)
	for _, slug := range []string{"home", "soins", "entreprise", "about", "contact", "mentions-legales"} {
		ok, err := pages.Exists(ctx, slug)
		require.NoError(t, err)
		assert.True(t, ok, "page %s", slug)
	}

	contact, err := pages.GetBySlug(ctx, models.PageSlugContact)
	require.NoError(t, err)
	secs, err := sectionstore.New(db).ListByPage(ctx, contact.ID)
	require.NoError(t, err)
	keys := map[string]string{}
	for i, s := range secs {
		keys[s.SectionKey] = s.Type
		assert.Equal(t, i, s.SortOrder)
	}
	assert.Equal(t, sectiontypes.ContactInfos, keys["infos"])
	assert.Equal(t, sectiontypes.GoogleMap, keys["map"])

	list, err := servicestore.New(db).List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.True(t, list[0].Highlight)
}

func TestSeedAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := SeedAll(ctx, db, zap.NewNop())
	require.NoError(t, err)

	rep, err := SeedAll(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, Report{}, rep)

	n, err := servicestore.New(db).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestSeedAll_RestoresMissingSections(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	home, err := pagestore.New(db).Create(ctx, models.Page{Slug: models.PageSlugHome, Title: "Home"})
	require.NoError(t, err)
	_, err = sectionstore.New(db).Create(ctx, models.Section{
		PageID: home.ID, SectionKey: "hero", Type: "hero", SortOrder: 0,
	})
	require.NoError(t, err)

	rep, err := SeedAll(ctx, db, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 5, rep.PagesCreated)

	secs, err := sectionstore.New(db).ListByPage(ctx, home.ID)
	require.NoError(t, err)
	require.Len(t, secs, 3)
	assert.Equal(t, "hero", secs[0].SectionKey)
	assert.Equal(t, "hero", secs[0].Type, "existing section is left alone")
	assert.Equal(t, "presentation", secs[1].SectionKey)
	assert.Equal(t, 1, secs[1].SortOrder)

	page, err := pagestore.New(db).GetBySlug(ctx, models.PageSlugHome)
	require.NoError(t, err)
	assert.Equal(t, "Home", page.Title)
}

func TestEnsureAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := AdminInput{Email: "Admin@Example.com", Name: "Site Admin", Password: "correct-horse"}
	require.NoError(t, EnsureAdmin(ctx, db, in, zap.NewNop()))
	require.NoError(t, EnsureAdmin(ctx, db, in, zap.NewNop()))

	users := userstore.New(db)
	n, err := users.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	u, err := users.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, u.Role)
	assert.True(t, authutil.CheckPassword("correct-horse", u.PasswordHash))
}

func TestEnsureAdmin_EmptyEmailIsNoop(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	require.NoError(t, EnsureAdmin(ctx, db, AdminInput{}, zap.NewNop()))
	n, err := userstore.New(db).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestCreateAdmin_Errors(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := CreateAdmin(ctx, db, AdminInput{Email: "a@example.com", Password: "short"})
	assert.Error(t, err)

	_, err = CreateAdmin(ctx, db, AdminInput{Email: "a@example.com", Password: "long-enough-pw"})
	require.NoError(t, err)

	_, err = CreateAdmin(ctx, db, AdminInput{Email: "A@example.com", Password: "long-enough-pw"})
	assert.True(t, errors.Is(err, ErrAdminExists))
}
