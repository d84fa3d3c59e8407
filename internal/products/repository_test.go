package products

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

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE IF NOT EXISTS categories (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
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
	}
	for _, stmt := range ddl {
		require.NoError(t, gdb.Exec(stmt).Error)
	}
	return gdb
}

func TestProductCRUD(t *testing.T) {
	gdb := setupCatalogTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	product := &models.Product{
		Name:  "Linen Shirt",
		Price: decimal.RequireFromString("10.00"),
	}
	require.NoError(t, repo.CreateProduct(ctx, product))
	require.NotEqual(t, uuid.Nil, product.ID)

	got, err := repo.FindProductByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "Linen Shirt", got.Name)

	rows, err := repo.UpdateProduct(ctx, product.ID, map[string]any{"name": "Silk Shirt"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	rows, err = repo.DeleteProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), rows)

	_, err = repo.FindProductByID(ctx, product.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListProductsByCategory(t *testing.T) {
	gdb := setupCatalogTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	category := &models.Category{Name: "Shirts"}
	require.NoError(t, repo.CreateCategory(ctx, category))

	inCategory := &models.Product{Name: "A", Price: decimal.NewFromInt(1), CategoryID: &category.ID}
	require.NoError(t, repo.CreateProduct(ctx, inCategory))
	require.NoError(t, repo.CreateProduct(ctx, &models.Product{Name: "B", Price: decimal.NewFromInt(2)}))

	all, err := repo.ListProducts(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	filtered, err := repo.ListProducts(ctx, &category.ID)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, inCategory.ID, filtered[0].ID)
}

func TestCreateCategoryDuplicateName(t *testing.T) {
	gdb := setupCatalogTestDB(t)
	repo := NewRepository(gdb)
	ctx := context.Background()

	require.NoError(t, repo.CreateCategory(ctx, &models.Category{Name: "Shoes"}))

	err := repo.CreateCategory(ctx, &models.Category{Name: "Shoes"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "UNIQUE constraint failed")
}
