package cart

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/internal/products"
	"github.com/riceshop/ricestore-backend/pkg/db/models"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:cart_" + uuid.NewString() + "?mode=memory&cache=shared"
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
	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{productsTable, carts, cartItems} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		TxRunner:    gormTxRunner{db: db},
		CartRepo:    NewRepository(db),
		ProductRepo: products.NewRepository(db),
	})
	require.NoError(t, err)
	return svc
}

func seedCartProduct(t *testing.T, db *gorm.DB, name, price string, stock int, active bool) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Origin:        "Thailand",
		RiceType:      "Jasmine",
		WeightKg:      decimal.NewFromInt(1),
		IsActive:      active,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

func cartCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected app error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestGetCreatesEmptyCart(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()

	cart, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, userID, cart.UserID)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())

	again, err := svc.Get(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, cart.ID, again.ID, "repeat access reuses the cart row")
}

func TestAddItemMergesAndKeepsSnapshot(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedCartProduct(t, db, "Thai Jasmine", "8.00", 10, true)

	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("16.00")))

	// price change after the line exists must not alter the snapshot
	require.NoError(t, db.Model(&models.Product{}).
		Where("id = ?", product.ID).
		UpdateColumn("price", decimal.RequireFromString("9.99")).Error)

	cart, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	require.Len(t, cart.Items, 1, "same product merges into one line")
	assert.Equal(t, 5, cart.Items[0].Quantity)
	assert.True(t, cart.Items[0].UnitPrice.Equal(decimal.RequireFromString("8.00")))
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("40.00")))
}

func TestAddItemStockAndProductChecks(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedCartProduct(t, db, "Thai Jasmine", "8.00", 4, true)
	retired := seedCartProduct(t, db, "Retired", "5.00", 10, false)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 5})
	cartCode(t, err, pkgerrors.CodeStateConflict)

	// merged quantity counts against stock too
	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 3})
	require.NoError(t, err)
	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 2})
	cartCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: retired.ID, Quantity: 1})
	cartCode(t, err, pkgerrors.CodeNotFound)

	_, err = svc.AddItem(ctx, userID, AddItemInput{ProductID: uuid.New(), Quantity: 1})
	cartCode(t, err, pkgerrors.CodeNotFound)
}

func TestUpdateItemSetsAbsoluteQuantity(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	product := seedCartProduct(t, db, "Thai Jasmine", "8.00", 10, true)

	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: product.ID, Quantity: 5})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	cart, err = svc.UpdateItem(ctx, userID, itemID, UpdateItemInput{Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("16.00")))

	_, err = svc.UpdateItem(ctx, userID, itemID, UpdateItemInput{Quantity: 11})
	cartCode(t, err, pkgerrors.CodeStateConflict)

	_, err = svc.UpdateItem(ctx, userID, itemID, UpdateItemInput{Quantity: 0})
	cartCode(t, err, pkgerrors.CodeValidation)
}

func TestItemOwnershipIsScoped(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()

	owner := uuid.New()
	intruder := uuid.New()
	product := seedCartProduct(t, db, "Thai Jasmine", "8.00", 10, true)

	cart, err := svc.AddItem(ctx, owner, AddItemInput{ProductID: product.ID, Quantity: 1})
	require.NoError(t, err)
	itemID := cart.Items[0].ID

	// the intruder has no cart yet
	_, err = svc.UpdateItem(ctx, intruder, itemID, UpdateItemInput{Quantity: 2})
	cartCode(t, err, pkgerrors.CodeNotFound)

	// and with a cart of their own, the line still is not theirs
	_, err = svc.Get(ctx, intruder)
	require.NoError(t, err)
	_, err = svc.RemoveItem(ctx, intruder, itemID)
	cartCode(t, err, pkgerrors.CodeNotFound)

	ownerCart, err := svc.Get(ctx, owner)
	require.NoError(t, err)
	require.Len(t, ownerCart.Items, 1, "owner's line is untouched")
}

func TestRemoveItemAndClear(t *testing.T) {
	t.Parallel()

	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	ctx := context.Background()
	userID := uuid.New()

	jasmine := seedCartProduct(t, db, "Thai Jasmine", "8.00", 10, true)
	basmati := seedCartProduct(t, db, "Royal Basmati", "12.50", 10, true)

	_, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: jasmine.ID, Quantity: 1})
	require.NoError(t, err)
	cart, err := svc.AddItem(ctx, userID, AddItemInput{ProductID: basmati.ID, Quantity: 2})
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("33.00")))

	var basmatiLine CartItemDTO
	for _, item := range cart.Items {
		if item.ProductID == basmati.ID {
			basmatiLine = item
		}
	}
	require.NotEqual(t, uuid.Nil, basmatiLine.ID)

	cart, err = svc.RemoveItem(ctx, userID, basmatiLine.ID)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.TotalAmount.Equal(decimal.RequireFromString("8.00")))

	cart, err = svc.Clear(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.TotalAmount.IsZero())
}
