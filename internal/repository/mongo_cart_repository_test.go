package repository

import (
	"context"
	"testing"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
)

func setupTestMongo(t *testing.T) (CartRepository, func()) {
	if testing.Short() {
		t.Skip("skipping mongo container test in short mode")
	}
	ctx := context.Background()

	mongoContainer, err := mongodb.Run(ctx, "mongo:7")
	require.NoError(t, err)

	uri, err := mongoContainer.ConnectionString(ctx)
	require.NoError(t, err)

	db, err := ConnectMongoDB(ctx, uri, "testdb")
	require.NoError(t, err)

	repo := NewMongoCartRepository(db)

	mongoRepo := repo.(*mongoCartRepository)
	err = mongoRepo.CreateIndexes(ctx)
	require.NoError(t, err)

	cleanup := func() {
		if err := mongoContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %s", err)
		}
	}

	return repo, cleanup
}

func TestMongoCart_GetCart_NotFound(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()

	cart, err := repo.GetCart(context.Background(), "nonexistent")

	assert.ErrorIs(t, err, ErrCartNotFound)
	assert.Nil(t, cart)
}

func TestMongoCart_UpsertAndGet(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()
	ctx := context.Background()

	snapshot := &domain.CartSnapshot{
		SessionID: "register-1",
		Lines: []domain.CartLine{
			{ProductID: "pen", Name: "Pen", Price: decimal.RequireFromString("100.50"), Quantity: 2},
			{ProductID: "ink", Name: "Ink", Price: decimal.NewFromInt(3), Quantity: 1, Image: "ink.png"},
		},
	}
	require.NoError(t, repo.UpsertCart(ctx, snapshot))

	got, err := repo.GetCart(ctx, "register-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "pen", got.Lines[0].ProductID)
	assert.True(t, decimal.RequireFromString("100.50").Equal(got.Lines[0].Price))
	assert.Equal(t, "ink.png", got.Lines[1].Image)

	snapshot.Lines = snapshot.Lines[:1]
	require.NoError(t, repo.UpsertCart(ctx, snapshot))

	got, err = repo.GetCart(ctx, "register-1")
	require.NoError(t, err)
	assert.Len(t, got.Lines, 1)
}

func TestMongoCart_DeleteCart(t *testing.T) {
	repo, cleanup := setupTestMongo(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, repo.UpsertCart(ctx, &domain.CartSnapshot{SessionID: "r"}))
	require.NoError(t, repo.DeleteCart(ctx, "r"))

	assert.ErrorIs(t, repo.DeleteCart(ctx, "r"), ErrCartNotFound)
}
