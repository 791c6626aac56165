// Package contentops implements the admin operations on pages and their
// sections: creation with a seeded hero, partial updates, key normalization,
// protected pages and the contact page settings sync.
package contentops

import (
	"context"
	"errors"
	"strings"
	"time"

	pagestore "github.com/dalemusser/stratasite/internal/app/store/pages"
	sectionstore "github.com/dalemusser/stratasite/internal/app/store/sections"
	"github.com/dalemusser/stratasite/internal/app/system/contactsync"
	"github.com/dalemusser/stratasite/internal/app/system/normalize"
	"github.com/dalemusser/stratasite/internal/app/system/sectiontypes"
	"github.com/dalemusser/stratasite/internal/app/system/txn"
	"github.com/dalemusser/stratasite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Caller-facing messages.
const (
	msgSlugTitleRequired = "slug et title requis"
	msgSlugExists        = "Ce slug existe déjà"
	msgPageNotFound      = "Page not found."
	msgPageNotFoundFR    = "Page non trouvée"
	msgSectionNotFound   = "Section not found."
	msgProtectedPage     = "Cette page ne peut pas être supprimée"
	msgKeyRequired       = "key requis"
	msgKeyInvalid        = "key invalide"
	msgSectionExists     = "Cette section existe déjà"
	msgTypeInvalid       = "Type de section non valide"
	msgTitleEmpty        = "Title cannot be empty."
	msgContentNotObject  = "Content must be a JSON object."
)

// PageView is a page together with its sections in render order.
type PageView struct {
	Page     models.Page
	Sections []models.Section
}

// Optional is a nullable field of a partial update: Set reports whether the
// caller sent the field at all, Value is nil when they sent null.
type Optional struct {
	Set   bool
	Value *string
}

// CreatePageInput holds the fields accepted when creating a page.
type CreatePageInput struct {
	Slug            string
	Title           string
	MetaTitle       *string
	MetaDescription *string
}

// PagePatch lists the page fields a partial update may touch.
type PagePatch struct {
	Title           *string
	MetaTitle       Optional
	MetaDescription Optional
	ShowInNav       *bool
	NavOrder        *int
	NavTitle        Optional
}

// AddSectionInput holds the fields accepted when adding a section. Type
// defaults to "text", Content to the type's skeleton, SortOrder to the end
// of the page.
type AddSectionInput struct {
	Key       string
	Type      *string
	Title     *string
	Content   map[string]any
	SortOrder *int
}

// SectionPatch lists the section fields a partial update may touch.
// Content is checked to be a JSON object when HasContent is set.
type SectionPatch struct {
	Title      Optional
	HasContent bool
	Content    any
	SortOrder  *int
}

// Service runs page and section operations against the content store.
type Service struct {
	db       *mongo.Database
	pages    *pagestore.Store
	sections *sectionstore.Store
	sync     *contactsync.Synchronizer
	logger   *zap.Logger
	now      func() time.Time
}

// New creates a Service. sync may be nil, in which case contact page writes
// are not mirrored into settings.
func New(db *mongo.Database, sync *contactsync.Synchronizer, logger *zap.Logger) *Service {
	return &Service{
		db:       db,
		pages:    pagestore.New(db),
		sections: sectionstore.New(db),
		sync:     sync,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| Pages                                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// ListPages returns every page in creation order, without sections.
func (s *Service) ListPages(ctx context.Context) ([]models.Page, error) {
	return s.pages.GetAll(ctx)
}

// GetPage returns the page with its ordered sections.
func (s *Service) GetPage(ctx context.Context, slug string) (PageView, error) {
	page, err := s.page(ctx, slug, msgPageNotFound)
	if err != nil {
		return PageView{}, err
	}
	return s.view(ctx, page)
}

// CreatePage creates a page and seeds its hero section.
func (s *Service) CreatePage(ctx context.Context, in CreatePageInput) (PageView, error) {
	slug := normalize.Slug(in.Slug)
	title := strings.TrimSpace(in.Title)
	if slug == "" || title == "" {
		return PageView{}, invalid(msgSlugTitleRequired)
	}

	exists, err := s.pages.Exists(ctx, slug)
	if err != nil {
		return PageView{}, err
	}
	if exists {
		return PageView{}, conflict(msgSlugExists)
	}

	count, err := s.pages.Count(ctx)
	if err != nil {
		return PageView{}, err
	}

	now := s.now()
	metaTitle := title
	if in.MetaTitle != nil {
		metaTitle = strings.TrimSpace(*in.MetaTitle)
	}
	page := models.Page{
		Slug:            slug,
		Title:           title,
		MetaTitle:       &metaTitle,
		MetaDescription: trimmed(in.MetaDescription),
		ShowInNav:       true,
		NavOrder:        int(count),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	hero := models.Section{
		SectionKey: "hero",
		Type:       sectiontypes.Hero,
		Title:      &title,
		Content: map[string]any{
			"title": title,
			"image": models.DefaultHeroImage,
		},
		SortOrder: 0,
		UpdatedAt: now,
	}

	var view PageView
	err = txn.Run(ctx, s.db, s.logger, func(ctx context.Context) error {
		created, err := s.pages.Create(ctx, page)
		if err != nil {
			return err
		}
		hero.PageID = created.ID
		sec, err := s.sections.Create(ctx, hero)
		if err != nil {
			return err
		}
		view = PageView{Page: created, Sections: []models.Section{sec}}
		return nil
	})
	if errors.Is(err, pagestore.ErrDuplicateSlug) {
		return PageView{}, conflict(msgSlugExists)
	}
	if err != nil {
		return PageView{}, err
	}
	return view, nil
}

// UpdatePage applies a partial update. updated_at is always bumped.
func (s *Service) UpdatePage(ctx context.Context, slug string, patch PagePatch) (PageView, error) {
	if _, err := s.page(ctx, slug, msgPageNotFound); err != nil {
		return PageView{}, err
	}

	set := bson.M{}
	var unset []string

	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		if title == "" {
			return PageView{}, &ValidationError{Fields: map[string]string{"title": msgTitleEmpty}}
		}
		set["title"] = title
	}
	applyOptional(set, &unset, "meta_title", patch.MetaTitle)
	applyOptional(set, &unset, "meta_description", patch.MetaDescription)
	applyOptional(set, &unset, "nav_title", patch.NavTitle)
	if patch.ShowInNav != nil {
		set["show_in_nav"] = *patch.ShowInNav
	}
	if patch.NavOrder != nil {
		set["nav_order"] = *patch.NavOrder
	}

	page, err := s.pages.Update(ctx, slug, set, unset, s.now())
	if errors.Is(err, pagestore.ErrNotFound) {
		return PageView{}, notFound(msgPageNotFound)
	}
	if err != nil {
		return PageView{}, err
	}
	return s.view(ctx, page)
}

// DeletePage removes a page and its sections. Protected pages are refused
// before any lookup.
func (s *Service) DeletePage(ctx context.Context, slug string) error {
	if models.IsProtectedPageSlug(slug) {
		return forbidden(msgProtectedPage)
	}
	page, err := s.page(ctx, slug, msgPageNotFoundFR)
	if err != nil {
		return err
	}

	err = txn.Run(ctx, s.db, s.logger, func(ctx context.Context) error {
		if _, err := s.sections.DeleteByPage(ctx, page.ID); err != nil {
			return err
		}
		return s.pages.Delete(ctx, page.ID)
	})
	if errors.Is(err, pagestore.ErrNotFound) {
		return notFound(msgPageNotFoundFR)
	}
	return err
}

/*─────────────────────────────────────────────────────────────────────────────*
| Sections                                                                    |
*─────────────────────────────────────────────────────────────────────────────*/

// AddSection appends a section to a page. Nothing is written on failure.
func (s *Service) AddSection(ctx context.Context, slug string, in AddSectionInput) (models.Section, error) {
	page, err := s.page(ctx, slug, msgPageNotFound)
	if err != nil {
		return models.Section{}, err
	}

	raw := strings.TrimSpace(in.Key)
	if raw == "" {
		return models.Section{}, invalid(msgKeyRequired)
	}
	key := normalize.SectionKey(raw)
	if key == "" {
		return models.Section{}, invalid(msgKeyInvalid)
	}

	_, err = s.sections.Get(ctx, page.ID, key)
	if err == nil {
		return models.Section{}, conflict(msgSectionExists)
	}
	if !errors.Is(err, sectionstore.ErrNotFound) {
		return models.Section{}, err
	}

	typ := sectiontypes.Text
	if in.Type != nil {
		t, ok := normalize.SectionType(*in.Type)
		if !ok {
			return models.Section{}, invalid(msgTypeInvalid)
		}
		typ = t
	}

	content := in.Content
	if content == nil {
		content = sectiontypes.DefaultContent(typ)
	}

	var sortOrder int
	if in.SortOrder != nil {
		sortOrder = *in.SortOrder
	} else {
		max, err := s.sections.MaxSortOrder(ctx, page.ID)
		if err != nil {
			return models.Section{}, err
		}
		sortOrder = max + 1
	}

	now := s.now()
	sec, err := s.sections.Create(ctx, models.Section{
		PageID:     page.ID,
		SectionKey: key,
		Type:       typ,
		Title:      trimmed(in.Title),
		Content:    content,
		SortOrder:  sortOrder,
		UpdatedAt:  now,
	})
	if errors.Is(err, sectionstore.ErrDuplicateKey) {
		return models.Section{}, conflict(msgSectionExists)
	}
	if err != nil {
		return models.Section{}, err
	}

	if err := s.pages.Touch(ctx, page.ID, now); err != nil {
		return models.Section{}, err
	}
	s.syncContact(ctx, page, sec)
	return sec, nil
}

// UpdateSection applies a partial update to one section.
func (s *Service) UpdateSection(ctx context.Context, slug, key string, patch SectionPatch) (models.Section, error) {
	page, sec, err := s.section(ctx, slug, key)
	if err != nil {
		return models.Section{}, err
	}

	set := bson.M{}
	var unset []string

	applyOptional(set, &unset, "title", patch.Title)
	if patch.HasContent {
		content, ok := patch.Content.(map[string]any)
		if !ok {
			return models.Section{}, &ValidationError{Fields: map[string]string{"content": msgContentNotObject}}
		}
		set["content"] = content
	}
	if patch.SortOrder != nil {
		set["sort_order"] = *patch.SortOrder
	}

	now := s.now()
	set["updated_at"] = now
	updated, err := s.sections.Update(ctx, sec.ID, set, unset)
	if errors.Is(err, sectionstore.ErrNotFound) {
		return models.Section{}, notFound(msgSectionNotFound)
	}
	if err != nil {
		return models.Section{}, err
	}

	if err := s.pages.Touch(ctx, page.ID, now); err != nil {
		return models.Section{}, err
	}
	s.syncContact(ctx, page, updated)
	return updated, nil
}

// RemoveSection deletes one section.
func (s *Service) RemoveSection(ctx context.Context, slug, key string) error {
	page, sec, err := s.section(ctx, slug, key)
	if err != nil {
		return err
	}
	if err := s.sections.Delete(ctx, sec.ID); err != nil {
		if errors.Is(err, sectionstore.ErrNotFound) {
			return notFound(msgSectionNotFound)
		}
		return err
	}
	return s.pages.Touch(ctx, page.ID, s.now())
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

func (s *Service) page(ctx context.Context, slug, msg string) (models.Page, error) {
	page, err := s.pages.GetBySlug(ctx, slug)
	if errors.Is(err, pagestore.ErrNotFound) {
		return models.Page{}, notFound(msg)
	}
	return page, err
}

func (s *Service) section(ctx context.Context, slug, key string) (models.Page, models.Section, error) {
	page, err := s.page(ctx, slug, msgPageNotFound)
	if err != nil {
		return models.Page{}, models.Section{}, err
	}
	sec, err := s.sections.Get(ctx, page.ID, key)
	if errors.Is(err, sectionstore.ErrNotFound) {
		return page, models.Section{}, notFound(msgSectionNotFound)
	}
	return page, sec, err
}

func (s *Service) view(ctx context.Context, page models.Page) (PageView, error) {
	secs, err := s.sections.ListByPage(ctx, page.ID)
	if err != nil {
		return PageView{}, err
	}
	return PageView{Page: page, Sections: secs}, nil
}

// syncContact mirrors contact page info and map sections into settings.
// The outcome is logged only.
func (s *Service) syncContact(ctx context.Context, page models.Page, sec models.Section) {
	if s.sync == nil || page.Slug != models.PageSlugContact {
		return
	}
	res, err := s.sync.SyncSection(ctx, sec)
	if err != nil {
		s.logger.Warn("contact settings sync failed",
			zap.String("section", sec.SectionKey),
			zap.String("type", sec.Type),
			zap.Error(err))
		return
	}
	s.logger.Debug("contact settings sync",
		zap.String("section", sec.SectionKey),
		zap.Bool("applied", res.Applied),
		zap.String("reason", res.Reason))
}

func applyOptional(set bson.M, unset *[]string, field string, o Optional) {
	if !o.Set {
		return
	}
	if o.Value == nil {
		*unset = append(*unset, field)
		return
	}
	set[field] = strings.TrimSpace(*o.Value)
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
