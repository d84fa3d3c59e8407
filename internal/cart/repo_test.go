package cart

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/granduer/granduer-backend/pkg/db/models"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  category_id TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS cart_line_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  selected_size TEXT,
  selected_color TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, product_id)
);`,
	}
	for _, stmt := range ddl {
		require.NoError(t, gdb.Exec(stmt).Error)
	}
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, price string) *models.Product {
	t.Helper()
	product := &models.Product{
		ID:    uuid.New(),
		Name:  "Linen Shirt",
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, gdb.Create(product).Error)
	return product
}

func TestGetOrCreateForUserIsIdempotent(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	userID := uuid.New()

	first, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)

	second, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, gdb.Model(&models.Cart{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestInsertLineItemRejectsDuplicateProduct(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	product := seedProduct(t, gdb, "10.00")
	userCart, err := repo.GetOrCreateForUser(ctx, uuid.New())
	require.NoError(t, err)

	first := &models.CartLineItem{CartID: userCart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.InsertLineItem(ctx, first))

	dup := &models.CartLineItem{CartID: userCart.ID, ProductID: product.ID, Quantity: 3}
	err = repo.InsertLineItem(ctx, dup)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}

func TestDecrementLineItemStopsAtOne(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	product := seedProduct(t, gdb, "5.50")
	userCart, err := repo.GetOrCreateForUser(ctx, uuid.New())
	require.NoError(t, err)

	item := &models.CartLineItem{CartID: userCart.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.InsertLineItem(ctx, item))

	rows, err := repo.DecrementLineItem(ctx, userCart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	// quantity now 1; decrement must not touch the row
	rows, err = repo.DecrementLineItem(ctx, userCart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)

	var got models.CartLineItem
	require.NoError(t, gdb.Where("cart_id = ? AND product_id = ?", userCart.ID, product.ID).First(&got).Error)
	assert.Equal(t, 1, got.Quantity)
}

func TestDeleteLineItem(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	product := seedProduct(t, gdb, "5.50")
	userCart, err := repo.GetOrCreateForUser(ctx, uuid.New())
	require.NoError(t, err)

	item := &models.CartLineItem{CartID: userCart.ID, ProductID: product.ID, Quantity: 1}
	require.NoError(t, repo.InsertLineItem(ctx, item))

	rows, err := repo.DeleteLineItem(ctx, userCart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteLineItem(ctx, userCart.ID, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestUpdateLineItemReportsMissingRow(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	userCart, err := repo.GetOrCreateForUser(ctx, uuid.New())
	require.NoError(t, err)

	rows, err := repo.UpdateLineItem(ctx, userCart.ID, uuid.New(), map[string]any{"quantity": 4})
	require.NoError(t, err)
	assert.Equal(t, int64(0), rows)
}

func TestFindByUserIDPreloadsProducts(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()
	userID := uuid.New()

	product := seedProduct(t, gdb, "10.00")
	userCart, err := repo.GetOrCreateForUser(ctx, userID)
	require.NoError(t, err)

	item := &models.CartLineItem{CartID: userCart.ID, ProductID: product.ID, Quantity: 2}
	require.NoError(t, repo.InsertLineItem(ctx, item))

	got, err := repo.FindByUserID(ctx, userID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, product.ID, got.Items[0].Product.ID)
	assert.Equal(t, "Linen Shirt", got.Items[0].Product.Name)
}

func TestFindByUserIDMissingCart(t *testing.T) {
	gdb := setupCartTestDB(t)
	repo := NewRepository(gdb)

	_, err := repo.FindByUserID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
