package products

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/pagination"
)

func setupProductsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:products_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	productsTable := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price NUMERIC NOT NULL,
  stock_quantity INTEGER NOT NULL DEFAULT 0 CHECK (stock_quantity >= 0),
  image_url TEXT,
  origin TEXT NOT NULL,
  rice_type TEXT NOT NULL,
  weight_kg NUMERIC NOT NULL DEFAULT 0,
  is_active INTEGER NOT NULL DEFAULT 1,
  created_by TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(productsTable).Error)
	return db
}

func newProductsService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func seedProduct(t *testing.T, db *gorm.DB, name, origin, riceType string, price string, stock int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Origin:        origin,
		RiceType:      riceType,
		WeightKg:      decimal.NewFromInt(1),
		IsActive:      active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func requireProductCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected app error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestListFiltersCombine(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	ctx := context.Background()

	seedProduct(t, db, "Royal Basmati", "India", "Basmati", "12.50", 10, true)
	seedProduct(t, db, "Everyday Basmati", "India", "Basmati", "6.00", 10, true)
	seedProduct(t, db, "Thai Jasmine", "Thailand", "Jasmine", "8.00", 10, true)
	seedProduct(t, db, "Retired Basmati", "India", "Basmati", "5.00", 0, false)

	params := pagination.Params{Size: 10, SortBy: "name"}

	page, err := svc.List(ctx, ListFilters{Keyword: "basmati"}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, page.TotalCount, "inactive rows stay hidden")

	origin := "India"
	min := decimal.RequireFromString("7.00")
	page, err = svc.List(ctx, ListFilters{Origin: &origin, MinPrice: &min}, params)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Royal Basmati", page.Items[0].Name)

	riceType := "Jasmine"
	max := decimal.RequireFromString("9.00")
	page, err = svc.List(ctx, ListFilters{RiceType: &riceType, MaxPrice: &max}, params)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Thai Jasmine", page.Items[0].Name)

	page, err = svc.List(ctx, ListFilters{IncludeInactive: true}, params)
	require.NoError(t, err)
	assert.EqualValues(t, 4, page.TotalCount)
}

func TestListRejectsUnknownSortColumn(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)

	_, err := svc.List(context.Background(), ListFilters{}, pagination.Params{SortBy: "stock_quantity"})
	requireProductCode(t, err, pkgerrors.CodeValidation)
}

func TestCreateValidatesInput(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	ctx := context.Background()
	admin := uuid.New()

	created, err := svc.Create(ctx, admin, CreateProductInput{
		Name:          "  Sticky Rice  ",
		Price:         decimal.RequireFromString("4.25"),
		StockQuantity: 30,
		Origin:        "Laos",
		RiceType:      "Glutinous",
		WeightKg:      decimal.NewFromInt(1),
	})
	require.NoError(t, err)
	assert.Equal(t, "Sticky Rice", created.Name)
	assert.True(t, created.IsActive)

	_, err = svc.Create(ctx, admin, CreateProductInput{
		Name:     "Bad Price",
		Price:    decimal.RequireFromString("-1"),
		Origin:   "Laos",
		RiceType: "Glutinous",
	})
	requireProductCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Create(ctx, admin, CreateProductInput{
		Name:          "Bad Stock",
		Price:         decimal.NewFromInt(1),
		StockQuantity: -5,
		Origin:        "Laos",
		RiceType:      "Glutinous",
	})
	requireProductCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdatePartial(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, "Thai Jasmine", "Thailand", "Jasmine", "8.00", 10, true)

	price := decimal.RequireFromString("9.50")
	stock := 25
	updated, err := svc.Update(ctx, product.ID, UpdateProductInput{Price: &price, StockQuantity: &stock})
	require.NoError(t, err)
	assert.True(t, updated.Price.Equal(price))
	assert.Equal(t, 25, updated.StockQuantity)
	assert.Equal(t, "Thai Jasmine", updated.Name, "untouched fields survive")

	bad := decimal.RequireFromString("-2")
	_, err = svc.Update(ctx, product.ID, UpdateProductInput{Price: &bad})
	requireProductCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.Update(ctx, uuid.New(), UpdateProductInput{Price: &price})
	requireProductCode(t, err, pkgerrors.CodeNotFound)
}

func TestSoftDeleteKeepsRowResolvable(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	svc := newProductsService(t, db)
	ctx := context.Background()

	product := seedProduct(t, db, "Thai Jasmine", "Thailand", "Jasmine", "8.00", 10, true)

	deactivated, err := svc.SetActive(ctx, product.ID, false)
	require.NoError(t, err)
	assert.False(t, deactivated.IsActive)

	// hidden from browse, still loadable by id
	page, err := svc.List(ctx, ListFilters{}, pagination.Params{Size: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 0, page.TotalCount)

	got, err := svc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, product.ID, got.ID)
}

func TestDecrementStockGuard(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Thai Jasmine", "Thailand", "Jasmine", "8.00", 5, true)

	ok, err := repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.True(t, ok)

	// only 2 left, taking 3 must not match
	ok, err = repo.DecrementStock(ctx, product.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	var stored models.Product
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 2, stored.StockQuantity)

	require.NoError(t, repo.RestoreStock(ctx, product.ID, 3))
	require.NoError(t, db.First(&stored, "id = ?", product.ID).Error)
	assert.Equal(t, 5, stored.StockQuantity)
}

func TestDecrementStockInactiveProduct(t *testing.T) {
	t.Parallel()

	db := setupProductsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	product := seedProduct(t, db, "Retired", "India", "Basmati", "5.00", 10, false)

	ok, err := repo.DecrementStock(ctx, product.ID, 1)
	require.NoError(t, err)
	assert.False(t, ok, "inactive products are not purchasable")
}
