package sectionstore

import (
	"errors"
	"testing"

	"github.com/dalemusser/stratasite/internal/domain/models"
	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_CreateAndList(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageID := primitive.NewObjectID()
	for i, key := range []string{"hero", "intro", "gallery"} {
		_, err := store.Create(ctx, models.Section{
			PageID:     pageID,
			SectionKey: key,
			Type:       "text",
			SortOrder:  2 - i,
			Content:    map[string]any{"title": key, "paragraphs": []any{"a", "b"}},
		})
		if err != nil {
			t.Fatalf("Create(%s) error = %v", key, err)
		}
	}
	// another page's section must not leak into the listing
	store.Create(ctx, models.Section{PageID: primitive.NewObjectID(), SectionKey: "hero", Type: "hero"})

	list, err := store.ListByPage(ctx, pageID)
	if err != nil {
		t.Fatalf("ListByPage() error = %v", err)
	}
	var keys []string
	for _, s := range list {
		keys = append(keys, s.SectionKey)
	}
	if diff := cmp.Diff([]string{"gallery", "intro", "hero"}, keys); diff != "" {
		t.Errorf("ListByPage() order mismatch (-want +got):\n%s", diff)
	}

	want := map[string]any{"title": "gallery", "paragraphs": []any{"a", "b"}}
	if diff := cmp.Diff(want, list[0].Content); diff != "" {
		t.Errorf("content round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestStore_Create_DuplicateKey(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageID := primitive.NewObjectID()
	if _, err := store.Create(ctx, models.Section{PageID: pageID, SectionKey: "hero", Type: "hero"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	_, err := store.Create(ctx, models.Section{PageID: pageID, SectionKey: "hero", Type: "text"})
	if !errors.Is(err, ErrDuplicateKey) {
		t.Errorf("Create() duplicate error = %v, want %v", err, ErrDuplicateKey)
	}

	// same key on another page is fine
	if _, err := store.Create(ctx, models.Section{PageID: primitive.NewObjectID(), SectionKey: "hero", Type: "hero"}); err != nil {
		t.Errorf("Create() on other page error = %v", err)
	}
}

func TestStore_MaxSortOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageID := primitive.NewObjectID()
	max, err := store.MaxSortOrder(ctx, pageID)
	if err != nil || max != -1 {
		t.Fatalf("MaxSortOrder() empty = %d, %v; want -1", max, err)
	}

	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "a", SortOrder: 0})
	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "b", SortOrder: 7})
	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "c", SortOrder: 3})

	max, err = store.MaxSortOrder(ctx, pageID)
	if err != nil || max != 7 {
		t.Errorf("MaxSortOrder() = %d, %v; want 7", max, err)
	}
}

func TestStore_FindFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageID := primitive.NewObjectID()
	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "infos", Type: "contact-infos", SortOrder: 0})
	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "carte", Type: "google-map", SortOrder: 1})

	got, err := store.FindFirst(ctx, pageID, []string{"map"}, []string{"google-map"})
	if err != nil {
		t.Fatalf("FindFirst() error = %v", err)
	}
	if got.SectionKey != "carte" {
		t.Errorf("FindFirst() key = %q, want carte", got.SectionKey)
	}

	if _, err := store.FindFirst(ctx, pageID, []string{"nope"}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("FindFirst() error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_UpdateAndDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageID := primitive.NewObjectID()
	title := "Old"
	sec, _ := store.Create(ctx, models.Section{PageID: pageID, SectionKey: "intro", Type: "text", Title: &title})

	updated, err := store.Update(ctx, sec.ID, bson.M{
		"content":    map[string]any{"nested": map[string]any{"list": []any{"x"}}},
		"sort_order": 5,
	}, []string{"title"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.Title != nil {
		t.Errorf("Title = %q, want nil", *updated.Title)
	}
	if updated.SortOrder != 5 {
		t.Errorf("SortOrder = %d, want 5", updated.SortOrder)
	}
	want := map[string]any{"nested": map[string]any{"list": []any{"x"}}}
	if diff := cmp.Diff(want, updated.Content); diff != "" {
		t.Errorf("content mismatch (-want +got):\n%s", diff)
	}

	if err := store.Delete(ctx, sec.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := store.Get(ctx, pageID, "intro"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want %v", err, ErrNotFound)
	}
}

func TestStore_DeleteByPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	pageID := primitive.NewObjectID()
	other := primitive.NewObjectID()
	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "a"})
	store.Create(ctx, models.Section{PageID: pageID, SectionKey: "b"})
	store.Create(ctx, models.Section{PageID: other, SectionKey: "a"})

	n, err := store.DeleteByPage(ctx, pageID)
	if err != nil || n != 2 {
		t.Fatalf("DeleteByPage() = %d, %v; want 2", n, err)
	}
	left, _ := store.ListByPage(ctx, other)
	if len(left) != 1 {
		t.Errorf("other page sections = %d, want 1", len(left))
	}
}

func TestPlainContent(t *testing.T) {
	in := map[string]any{
		"a": primitive.A{"x", primitive.M{"k": "v"}},
		"d": primitive.D{{Key: "z", Value: primitive.A{}}},
		"n": nil,
	}
	want := map[string]any{
		"a": []any{"x", map[string]any{"k": "v"}},
		"d": map[string]any{"z": []any{}},
		"n": nil,
	}
	if diff := cmp.Diff(want, PlainContent(in)); diff != "" {
		t.Errorf("PlainContent() mismatch (-want +got):\n%s", diff)
	}
	if got := PlainContent(nil); got == nil || len(got) != 0 {
		t.Errorf("PlainContent(nil) = %v, want empty map", got)
	}
}
