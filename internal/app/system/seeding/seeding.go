// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"
	"errors"
	"fmt"
	"strings"

	pagestore "github.com/dalemusser/stratasite/internal/app/store/pages"
	sectionstore "github.com/dalemusser/stratasite/internal/app/store/sections"
	servicestore "github.com/dalemusser/stratasite/internal/app/store/services"
	settingsstore "github.com/dalemusser/stratasite/internal/app/store/settings"
	userstore "github.com/dalemusser/stratasite/internal/app/store/users"
	"github.com/dalemusser/stratasite/internal/app/system/authutil"
	"github.com/dalemusser/stratasite/internal/app/system/sectiontypes"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Report counts what a seeding run inserted. Existing records are never touched.
type Report struct {
	SettingsCreated bool
	PagesCreated    int
	SectionsCreated int
	ServicesCreated int
}

// SeedAll seeds default data if not already present.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) (Report, error) {
	var rep Report

	created, err := seedSettings(ctx, db)
	if err != nil {
		return rep, fmt.Errorf("seed settings: %w", err)
	}
	rep.SettingsCreated = created

	pages, sections, err := seedPages(ctx, db, logger)
	if err != nil {
		return rep, fmt.Errorf("seed pages: %w", err)
	}
	rep.PagesCreated, rep.SectionsCreated = pages, sections

	services, err := seedServices(ctx, db)
	if err != nil {
		return rep, fmt.Errorf("seed services: %w", err)
	}
	rep.ServicesCreated = services

	if rep.SettingsCreated || rep.PagesCreated > 0 || rep.SectionsCreated > 0 || rep.ServicesCreated > 0 {
		logger.Info("seeded default content",
			zap.Bool("settings", rep.SettingsCreated),
			zap.Int("pages", rep.PagesCreated),
			zap.Int("sections", rep.SectionsCreated),
			zap.Int("services", rep.ServicesCreated))
	}
	return rep, nil
}

func seedSettings(ctx context.Context, db *mongo.Database) (bool, error) {
	store := settingsstore.New(db)
	exists, err := store.Exists(ctx)
	if err != nil || exists {
		return false, err
	}
	if _, err := store.GetOrCreate(ctx); err != nil {
		return false, err
	}
	return true, nil
}

// seedPages creates each default page that is missing and, for pages that
// already exist, adds any default section whose key is absent.
func seedPages(ctx context.Context, db *mongo.Database, logger *zap.Logger) (int, int, error) {
	pages := pagestore.New(db)
	sections := sectionstore.New(db)

	var pageCount, sectionCount int
	for _, def := range defaultPages() {
		page, err := pages.GetBySlug(ctx, def.page.Slug)
		switch {
		case errors.Is(err, pagestore.ErrNotFound):
			page, err = pages.Create(ctx, def.page)
			if errors.Is(err, pagestore.ErrDuplicateSlug) {
				page, err = pages.GetBySlug(ctx, def.page.Slug)
			} else if err == nil {
				pageCount++
				logger.Debug("seeded page", zap.String("slug", page.Slug))
			}
			if err != nil {
				return pageCount, sectionCount, err
			}
		case err != nil:
			return pageCount, sectionCount, err
		}

		existing, err := sections.ListByPage(ctx, page.ID)
		if err != nil {
			return pageCount, sectionCount, err
		}
		have := make(map[string]bool, len(existing))
		next := 0
		for _, s := range existing {
			have[s.SectionKey] = true
			if s.SortOrder >= next {
				next = s.SortOrder + 1
			}
		}

		for _, sec := range def.sections {
			if have[sec.SectionKey] {
				continue
			}
			sec.PageID = page.ID
			sec.SortOrder = next
			if _, err := sections.Create(ctx, sec); err != nil {
				if errors.Is(err, sectionstore.ErrDuplicateKey) {
					continue
				}
				return pageCount, sectionCount, err
			}
			next++
			sectionCount++
		}
	}
	return pageCount, sectionCount, nil
}

func seedServices(ctx context.Context, db *mongo.Database) (int, error) {
	store := servicestore.New(db)
	n, err := store.Count(ctx)
	if err != nil || n > 0 {
		return 0, err
	}
	created := 0
	for i, in := range defaultServices() {
		in.SortOrder = i
		if _, err := store.Create(ctx, in); err != nil {
			return created, err
		}
		created++
	}
	return created, nil
}

// AdminInput describes an administrator account to create.
type AdminInput struct {
	Email    string
	Name     string
	Password string
}

// ErrAdminExists is returned by CreateAdmin when the email is already registered.
var ErrAdminExists = errors.New("an account with this email already exists")

// CreateAdmin validates the password, hashes it and inserts an admin account.
func CreateAdmin(ctx context.Context, db *mongo.Database, in AdminInput) (models.User, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" {
		return models.User{}, errors.New("email is required")
	}
	if err := authutil.ValidatePassword(in.Password); err != nil {
		return models.User{}, err
	}
	hash, err := authutil.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = "Admin"
	}
	u, err := userstore.New(db).Create(ctx, userstore.CreateInput{
		FullName:     name,
		Email:        email,
		Role:         models.RoleAdmin,
		PasswordHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		return models.User{}, ErrAdminExists
	}
	return u, err
}

// EnsureAdmin creates the configured admin account unless its email is
// already registered. An empty email disables it.
func EnsureAdmin(ctx context.Context, db *mongo.Database, in AdminInput, logger *zap.Logger) error {
	if strings.TrimSpace(in.Email) == "" {
		return nil
	}
	_, err := userstore.New(db).GetByEmail(ctx, in.Email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}
	u, err := CreateAdmin(ctx, db, in)
	if errors.Is(err, ErrAdminExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("seed admin %s: %w", in.Email, err)
	}
	logger.Info("seeded admin account", zap.String("email", u.Email))
	return nil
}

type pageDef struct {
	page     models.Page
	sections []models.Section
}

func strPtr(s string) *string { return &s }

func section(key, typ, title string, content map[string]any) models.Section {
	sec := models.Section{SectionKey: key, Type: typ, Content: content}
	if title != "" {
		sec.Title = strPtr(title)
	}
	return sec
}

func defaultPages() []pageDef {
	return []pageDef{
		{
			page: models.Page{
				Slug: models.PageSlugHome, Title: "Accueil", ShowInNav: true, NavOrder: 0,
				MetaTitle:       strPtr("Massage Ayurveda a Paris - Helene"),
				MetaDescription: strPtr("Massages ayurvediques, reflexologie, kobido et prenatal."),
			},
			sections: []models.Section{
				section("hero", "hero-home", "", map[string]any{
					"siteTitle": "Helene - Massages & Ayurveda",
					"slides": []any{map[string]any{
						"title":    "Une pause pour vous recentrer",
						"subtitle": "Massages ayurvediques - Kobido",
						"image":    models.DefaultHeroImage,
					}},
				}),
				section("presentation", "text", "Presentation", map[string]any{
					"title": "Presentation",
					"image": nil,
					"paragraphs": []any{
						"Bienvenue, je suis Helene.",
						"Chaque seance est personnalisee selon vos besoins.",
					},
				}),
				section("approche", "benefits-grid", "Approche", map[string]any{
					"images":       []any{"/images/default/approche.jpg"},
					"bulletsTitle": "Ce qui guide mes mains :",
					"bullets": []any{
						"Un entretien prealable.",
						"Une ecoute precise du corps.",
						"Une parenthese bienveillante.",
					},
				}),
			},
		},
		{
			page: models.Page{
				Slug: "soins", Title: "Soins", ShowInNav: true, NavOrder: 1,
				MetaTitle:       strPtr("Soins & Massages - Helene"),
				MetaDescription: strPtr("Decouvrez les soins ayurveda, reflexologie, kobido et prenatal."),
			},
			sections: []models.Section{
				section("hero", "hero", "Soins & Massages", map[string]any{
					"title": "Soins & Massages",
					"image": "/images/default/soins-hero.jpg",
				}),
				section("intro", "text", "Introduction", map[string]any{
					"title":      "",
					"paragraphs": []any{"Chaque soin est pense comme un moment unique."},
					"image":      nil,
				}),
				section("tarifs", "services-preview", "Tarifs", map[string]any{
					"title":    "Carte & tarifs",
					"subtitle": "",
				}),
			},
		},
		{
			page: models.Page{
				Slug: "entreprise", Title: "Entreprise", ShowInNav: true, NavOrder: 2,
				MetaTitle: strPtr("Massage Amma en entreprise - Helene"),
			},
			sections: []models.Section{
				section("entreprise", "benefits-grid", "Entreprise", map[string]any{
					"title":    "Massage Amma en entreprise",
					"subtitle": "Massage Amma assis : rapide, efficace, sans huile, sur chaise ergonomique.",
					"teamTitle": "Pour vos equipes",
					"teamBenefits": []any{
						"Moins de stress",
						"Plus d'energie et de concentration",
						"Moins de tensions musculaires",
						"Plus de motivation",
					},
					"companyTitle": "Pour votre entreprise",
					"companyBenefits": []any{
						"Qualite de Vie au Travail renforcee",
						"Collaborateurs plus performants et engages",
						"Image positive et responsable",
					},
					"characteristics": []any{"10-20 min", "Dans vos locaux", "Sans huile", "Chaise ergo"},
					"quote":           "Le massage Amma assis : un investissement simple et rentable pour le bien-etre collectif.",
				}),
			},
		},
		{
			page: models.Page{
				Slug: models.PageSlugAbout, Title: "A propos", ShowInNav: true, NavOrder: 3,
				NavTitle:        strPtr("A propos"),
				MetaTitle:       strPtr("A propos - Helene"),
				MetaDescription: strPtr("Parcours et philosophie d'Helene."),
			},
			sections: []models.Section{
				section("hero", "hero-compact", "A propos", map[string]any{
					"title": "A propos",
					"image": "/images/default/about-hero.jpg",
				}),
				section("parcours", "parcours", "Mon parcours", map[string]any{
					"title": "Mon parcours", "image": nil, "paragraphs": []any{},
				}),
				section("formations", "formations", "Formations", map[string]any{
					"title": "Formations", "paragraphs": []any{}, "image": nil,
				}),
				section("philosophie", "quote", "Philosophie", map[string]any{
					"text": "", "author": "",
				}),
			},
		},
		{
			page: models.Page{
				Slug: models.PageSlugContact, Title: "Contact", ShowInNav: true, NavOrder: 4,
				MetaTitle:       strPtr("Contact - Helene"),
				MetaDescription: strPtr("Contactez Helene pour reserver."),
			},
			sections: []models.Section{
				section("hero", "hero-compact", "Contact", map[string]any{
					"title": "Contact", "image": nil,
				}),
				section("infos", sectiontypes.ContactInfos, "Informations pratiques", contactInfos()),
				section("map", sectiontypes.GoogleMap, "Plan d'acces", map[string]any{
					"embedUrl": "",
				}),
			},
		},
		{
			page: models.Page{
				Slug: models.PageSlugMentionsLegales, Title: "Mentions legales", ShowInNav: false, NavOrder: 99,
				MetaTitle:       strPtr("Mentions legales - Helene"),
				MetaDescription: strPtr("Mentions legales et RGPD."),
			},
			sections: []models.Section{
				section("content", "text", "Mentions legales", map[string]any{
					"title":      "Mentions legales",
					"paragraphs": []any{"Editeur : Helene [Nom]"},
					"image":      nil,
				}),
			},
		},
	}
}

// contactInfos mirrors the default settings so the contact page and the
// settings record start out in sync.
func contactInfos() map[string]any {
	addr := models.DefaultAddress()
	hours := []any{}
	for _, h := range models.DefaultHours().Schedule {
		hours = append(hours, map[string]any{"days": h.Days, "hours": h.Hours})
	}
	return map[string]any{
		"address": map[string]any{
			"street": addr.Street,
			"city":   strings.TrimSpace(addr.PostalCode + " " + addr.City),
		},
		"phone": models.DefaultContactPhone,
		"email": models.DefaultContactEmail,
		"hours": hours,
	}
}

func defaultServices() []servicestore.CreateInput {
	return []servicestore.CreateInput{
		{
			Category:    "Ayurveda",
			Name:        "Massage ayurvedique a l'huile chaude",
			Description: "Apaisant et ancrant.",
			Prices: []any{
				map[string]any{"label": "1h", "price": 80},
				map[string]any{"label": "1h30", "price": 100},
			},
			Highlight: true,
		},
		{
			Category:    "Kobido",
			Name:        "Massage du visage Kobido",
			Description: "Tradition japonaise.",
			Prices:      []any{map[string]any{"label": "Seance", "price": 70}},
		},
	}
}
