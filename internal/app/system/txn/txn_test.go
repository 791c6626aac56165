package txn

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/dalemusser/stratasite/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func TestIsNotSupported(t *testing.T) {
	assert.False(t, IsNotSupported(nil))
	assert.True(t, IsNotSupported(mongo.CommandError{Code: 20, Message: "Transaction numbers are only allowed on a replica set member or mongos"}))
	assert.True(t, IsNotSupported(fmt.Errorf("create page: %w", mongo.CommandError{Code: 263})))
	assert.True(t, IsNotSupported(errors.New("Transaction is not supported by this deployment")))
	assert.False(t, IsNotSupported(errors.New("E11000 duplicate key error collection: pages")))
	assert.False(t, IsNotSupported(errors.New("session expired")))
}

func TestRun_WritesCommit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	err := Run(ctx, db, zap.NewNop(), func(ctx context.Context) error {
		if _, err := db.Collection("pages").InsertOne(ctx, bson.M{"slug": "soins"}); err != nil {
			return err
		}
		_, err := db.Collection("page_sections").InsertOne(ctx, bson.M{"key": "hero"})
		return err
	})
	require.NoError(t, err)

	n, err := db.Collection("page_sections").CountDocuments(ctx, bson.M{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRun_ReturnsFnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	boom := errors.New("boom")
	err := Run(ctx, db, nil, func(ctx context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}
