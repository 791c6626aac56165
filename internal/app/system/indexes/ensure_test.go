package indexes_test

import (
	"testing"

	"github.com/dalemusser/stratasite/internal/app/system/indexes"
	"github.com/dalemusser/stratasite/internal/testutil"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetupTestDB already ran EnsureAll once; this checks a second pass and the
// per-page section key constraint.
func TestEnsureAll_SectionKeyUniquePerPage(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	require.NoError(t, indexes.EnsureAll(ctx, db))

	sections := db.Collection("page_sections")
	page := primitive.NewObjectID()
	_, err := sections.InsertOne(ctx, bson.M{"page_id": page, "section_key": "hero"})
	require.NoError(t, err)
	_, err = sections.InsertOne(ctx, bson.M{"page_id": primitive.NewObjectID(), "section_key": "hero"})
	assert.NoError(t, err, "same key on another page")
	_, err = sections.InsertOne(ctx, bson.M{"page_id": page, "section_key": "hero"})
	assert.True(t, wafflemongo.IsDup(err))
}

func TestEnsureAll_RebuildsDriftedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	media := db.Collection("media")
	_, err := media.Indexes().DropOne(ctx, "uniq_media_filename")
	require.NoError(t, err)
	_, err = media.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "filename", Value: 1}},
		Options: options.Index().SetName("legacy_filename"),
	})
	require.NoError(t, err)

	require.NoError(t, indexes.EnsureAll(ctx, db))

	cur, err := media.Indexes().List(ctx)
	require.NoError(t, err)
	var have []struct {
		Name   string `bson:"name"`
		Key    bson.D `bson:"key"`
		Unique bool   `bson:"unique"`
	}
	require.NoError(t, cur.All(ctx, &have))

	var names []string
	for _, ix := range have {
		names = append(names, ix.Name)
		if len(ix.Key) == 1 && ix.Key[0].Key == "filename" {
			assert.Equal(t, "uniq_media_filename", ix.Name)
			assert.True(t, ix.Unique)
		}
	}
	assert.Contains(t, names, "uniq_media_filename")
	assert.NotContains(t, names, "legacy_filename")
}
