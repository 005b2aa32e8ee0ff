package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riderschoice/riderschoice-backend/internal/catalog"
	"github.com/riderschoice/riderschoice-backend/pkg/auth"
	"github.com/riderschoice/riderschoice-backend/pkg/db"
	"github.com/riderschoice/riderschoice-backend/pkg/db/models"
	"github.com/riderschoice/riderschoice-backend/pkg/enums"
	pkgerrors "github.com/riderschoice/riderschoice-backend/pkg/errors"
)

func setupWishlistTest(t *testing.T) (*gorm.DB, Service) {
	t.Helper()
	conn, err := gorm.Open(sqlite.Open("file:wishlist_"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&models.CatalogItem{}, &models.Wishlist{}, &models.WishlistItem{}))

	svc, err := NewService(ServiceParams{
		WishlistRepo: NewRepository(conn),
		CatalogRepo:  catalog.NewRepository(conn),
		Tx:           db.NewFromConn(conn),
	})
	require.NoError(t, err)
	return conn, svc
}

func seedPackage(t *testing.T, conn *gorm.DB, name string) models.CatalogItem {
	t.Helper()
	item := models.CatalogItem{
		Name:        name,
		Brand:       "Rider's Choice Tours",
		Category:    enums.ItemCategoryPackage,
		Price:       decimal.NewFromInt(1200),
		Stock:       8,
		ImageURL:    "img",
		Description: "desc",
	}
	require.NoError(t, conn.Create(&item).Error)
	return item
}

func rider() auth.AuthenticatedContext {
	return auth.AuthenticatedContext{AccountID: uuid.New(), Role: enums.AccountRoleUser}
}

func TestAddDuplicateAndRemoveTwice(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	ctx := context.Background()
	actor := rider()
	p := seedPackage(t, conn, "Leh Ladakh")

	added, err := svc.Add(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, added.Count)
	require.Len(t, added.Items, 1)
	assert.Equal(t, "Leh Ladakh", added.Items[0].Name)

	_, err = svc.Add(ctx, actor, p.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	count, err := svc.Count(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	removed, err := svc.Remove(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, removed.Count)
	assert.Empty(t, removed.Items)

	_, err = svc.Remove(ctx, actor, p.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestCreateReturnsWishlistCreatedConcurrently(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	ctx := context.Background()
	actor := rider()
	p := seedPackage(t, conn, "Spiti Valley")

	repo := NewRepository(conn)
	first, err := repo.Create(ctx, actor.AccountID)
	require.NoError(t, err)

	second, err := repo.Create(ctx, actor.AccountID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	var rows int64
	require.NoError(t, conn.Model(&models.Wishlist{}).Where("user_id = ?", actor.AccountID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	added, err := svc.Add(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, added.ID)
	assert.Equal(t, 1, added.Count)
}

func TestAddUnknownItemIsNotFound(t *testing.T) {
	_, svc := setupWishlistTest(t)

	_, err := svc.Add(context.Background(), rider(), uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Add(context.Background(), auth.AuthenticatedContext{}, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestCountAndGetWithoutWishlist(t *testing.T) {
	_, svc := setupWishlistTest(t)
	actor := rider()

	count, err := svc.Count(context.Background(), actor)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = svc.Get(context.Background(), actor)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Remove(context.Background(), actor, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	_, err = svc.Delete(context.Background(), actor, uuid.New())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestWishlistsAreScopedToCaller(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	ctx := context.Background()
	alice, bob := rider(), rider()
	p := seedPackage(t, conn, "Goa Coastal")
	q := seedPackage(t, conn, "Rajasthan Forts")

	_, err := svc.Add(ctx, alice, p.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, alice, q.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, bob, p.ID)
	require.NoError(t, err)

	aliceList, err := svc.Get(ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, 2, aliceList.Count)
	assert.Equal(t, alice.AccountID, aliceList.UserID)

	bobCount, err := svc.Count(ctx, bob)
	require.NoError(t, err)
	assert.Equal(t, 1, bobCount)
}

func TestDeleteMissingEntryIsNotFound(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	ctx := context.Background()
	actor := rider()
	p := seedPackage(t, conn, "Kerala Backwaters")
	q := seedPackage(t, conn, "Himalayan Odyssey")

	_, err := svc.Add(ctx, actor, p.ID)
	require.NoError(t, err)

	_, err = svc.Delete(ctx, actor, q.ID)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	remaining, err := svc.Delete(ctx, actor, p.ID)
	require.NoError(t, err)
	assert.Zero(t, remaining.Count)
}

func TestGetSkipsDeletedCatalogItems(t *testing.T) {
	conn, svc := setupWishlistTest(t)
	ctx := context.Background()
	actor := rider()
	p := seedPackage(t, conn, "Spiti Winter")
	q := seedPackage(t, conn, "Coorg Trails")

	_, err := svc.Add(ctx, actor, p.ID)
	require.NoError(t, err)
	_, err = svc.Add(ctx, actor, q.ID)
	require.NoError(t, err)
	require.NoError(t, conn.Delete(&models.CatalogItem{}, "id = ?", p.ID).Error)

	list, err := svc.Get(ctx, actor)
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
	require.Len(t, list.Items, 1)
	assert.Equal(t, q.ID, list.Items[0].ID)
}
