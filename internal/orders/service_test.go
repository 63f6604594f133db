package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/internal/cart"
	"github.com/riceshop/ricestore-backend/internal/products"
	"github.com/riceshop/ricestore-backend/pkg/db/models"
	"github.com/riceshop/ricestore-backend/pkg/enums"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/pagination"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (g gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return g.db.WithContext(ctx).Transaction(fn)
}

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:orders_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	ddl := []string{`
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
);`, `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  total_amount NUMERIC NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL CHECK (quantity >= 1),
  unit_price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'PENDING',
  total_amount NUMERIC NOT NULL,
  shipping_address TEXT NOT NULL,
  billing_address TEXT,
  phone_number TEXT NOT NULL,
  payment_method TEXT NOT NULL,
  payment_status INTEGER NOT NULL DEFAULT 0,
  tracking_number TEXT,
  notes TEXT,
  order_date DATETIME NOT NULL,
  delivery_date DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  product_name TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  subtotal NUMERIC NOT NULL,
  created_at DATETIME
);`}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

type orderFixture struct {
	db       *gorm.DB
	svc      Service
	cartSvc  cart.Service
	products *products.Repository
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	db := setupOrdersTestDB(t)
	runner := gormTxRunner{db: db}
	productRepo := products.NewRepository(db)
	cartRepo := cart.NewRepository(db)

	svc, err := NewService(ServiceParams{
		TxRunner:    runner,
		OrderRepo:   NewRepository(db),
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
	})
	require.NoError(t, err)

	cartSvc, err := cart.NewService(cart.ServiceParams{
		TxRunner:    runner,
		CartRepo:    cartRepo,
		ProductRepo: productRepo,
	})
	require.NoError(t, err)

	return &orderFixture{db: db, svc: svc, cartSvc: cartSvc, products: productRepo}
}

func (f *orderFixture) seedProduct(t *testing.T, name, price string, stock int) *models.Product {
	t.Helper()

	product := &models.Product{
		ID:            uuid.New(),
		Name:          name,
		Price:         decimal.RequireFromString(price),
		StockQuantity: stock,
		Origin:        "Thailand",
		RiceType:      "Jasmine",
		WeightKg:      decimal.NewFromInt(1),
		IsActive:      true,
	}
	require.NoError(t, f.db.Create(product).Error)
	return product
}

func (f *orderFixture) fillCart(t *testing.T, userID uuid.UUID, productID uuid.UUID, qty int) {
	t.Helper()

	_, err := f.cartSvc.AddItem(context.Background(), userID, cart.AddItemInput{ProductID: productID, Quantity: qty})
	require.NoError(t, err)
}

func (f *orderFixture) stockOf(t *testing.T, productID uuid.UUID) int {
	t.Helper()

	var product models.Product
	require.NoError(t, f.db.First(&product, "id = ?", productID).Error)
	return product.StockQuantity
}

func checkoutInput() CreateOrderInput {
	return CreateOrderInput{
		ShippingAddress: "42 Paddy Lane, Bangkok",
		PhoneNumber:     "+66-2000-0000",
		PaymentMethod:   "CARD",
	}
}

func orderCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected app error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestCreateOrderFromCart(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	jasmine := f.seedProduct(t, "Thai Jasmine", "8.00", 10)
	basmati := f.seedProduct(t, "Royal Basmati", "12.50", 5)
	f.fillCart(t, userID, jasmine.ID, 2)
	f.fillCart(t, userID, basmati.ID, 1)

	order, err := f.svc.Create(ctx, userID, checkoutInput())
	require.NoError(t, err)

	assert.Equal(t, enums.OrderStatusPending, order.Status)
	assert.False(t, order.PaymentStatus)
	assert.True(t, order.TotalAmount.Equal(decimal.RequireFromString("28.50")))
	require.Len(t, order.Items, 2)
	assert.WithinDuration(t, time.Now().UTC(), order.OrderDate, 5*time.Second)

	// stock reserved, cart emptied
	assert.Equal(t, 8, f.stockOf(t, jasmine.ID))
	assert.Equal(t, 4, f.stockOf(t, basmati.ID))
	emptied, err := f.cartSvc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, emptied.Items)
	assert.True(t, emptied.TotalAmount.IsZero())

	// later product edits do not leak into the snapshot
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", jasmine.ID).
		UpdateColumn("name", "Renamed").Error)
	reloaded, err := f.svc.GetByID(ctx, userID, enums.UserRoleUser, order.ID)
	require.NoError(t, err)
	names := []string{reloaded.Items[0].ProductName, reloaded.Items[1].ProductName}
	assert.Contains(t, names, "Thai Jasmine")
}

func TestCreateOrderEmptyCart(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	_, err := f.svc.Create(ctx, userID, checkoutInput())
	orderCode(t, err, pkgerrors.CodeStateConflict)

	// an existing but empty cart behaves the same
	_, err = f.cartSvc.Get(ctx, userID)
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, userID, checkoutInput())
	orderCode(t, err, pkgerrors.CodeStateConflict)
}

func TestCreateOrderInsufficientStockAbortsWhole(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	jasmine := f.seedProduct(t, "Thai Jasmine", "8.00", 10)
	basmati := f.seedProduct(t, "Royal Basmati", "12.50", 3)
	f.fillCart(t, userID, jasmine.ID, 2)
	f.fillCart(t, userID, basmati.ID, 3)

	// someone else takes the basmati first
	require.NoError(t, f.db.Model(&models.Product{}).
		Where("id = ?", basmati.ID).
		UpdateColumn("stock_quantity", 1).Error)

	_, err := f.svc.Create(ctx, userID, checkoutInput())
	orderCode(t, err, pkgerrors.CodeStateConflict)

	// the aborted transaction must not leak the jasmine decrement
	assert.Equal(t, 10, f.stockOf(t, jasmine.ID))
	assert.Equal(t, 1, f.stockOf(t, basmati.ID))

	kept, err := f.cartSvc.Get(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, kept.Items, 2, "cart survives a failed checkout")
}

// Two buyers race for the last unit. The guarded UPDATE decides the winner
// at the row, so the two checkouts run back to back here; sqlite allows a
// single writer at a time and would serialize concurrent goroutines anyway.
func TestCreateOrderLastUnitContention(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()

	product := f.seedProduct(t, "Limited Harvest", "20.00", 1)

	first := uuid.New()
	second := uuid.New()
	f.fillCart(t, first, product.ID, 1)
	f.fillCart(t, second, product.ID, 1)

	_, err := f.svc.Create(ctx, first, checkoutInput())
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, second, checkoutInput())
	orderCode(t, err, pkgerrors.CodeStateConflict)
	assert.Equal(t, 0, f.stockOf(t, product.ID))
}

func TestUpdateStatusTransitions(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "Thai Jasmine", "8.00", 10)
	f.fillCart(t, userID, product.ID, 2)
	order, err := f.svc.Create(ctx, userID, checkoutInput())
	require.NoError(t, err)

	// PENDING cannot jump straight to SHIPPED
	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "SHIPPED"})
	orderCode(t, err, pkgerrors.CodeStateConflict)

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "PROCESSING"})
	require.NoError(t, err)

	tracking := "TH123456789"
	paid := true
	updated, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{
		Status:         "shipped",
		TrackingNumber: &tracking,
		PaymentStatus:  &paid,
	})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, updated.Status)
	require.NotNil(t, updated.TrackingNumber)
	assert.Equal(t, tracking, *updated.TrackingNumber)
	assert.True(t, updated.PaymentStatus)

	delivered, err := f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "DELIVERED"})
	require.NoError(t, err)
	require.NotNil(t, delivered.DeliveryDate)
	assert.WithinDuration(t, time.Now().UTC(), *delivered.DeliveryDate, 5*time.Second)

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "bogus"})
	orderCode(t, err, pkgerrors.CodeValidation)
}

func TestCancellationRestoresStockOnce(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "Thai Jasmine", "8.00", 10)
	f.fillCart(t, userID, product.ID, 4)
	order, err := f.svc.Create(ctx, userID, checkoutInput())
	require.NoError(t, err)
	require.Equal(t, 6, f.stockOf(t, product.ID))

	cancelled, err := f.svc.Cancel(ctx, userID, enums.UserRoleUser, order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCancelled, cancelled.Status)
	assert.Equal(t, 10, f.stockOf(t, product.ID))

	// a second cancellation is rejected and must not restore again
	_, err = f.svc.Cancel(ctx, userID, enums.UserRoleUser, order.ID)
	orderCode(t, err, pkgerrors.CodeStateConflict)
	assert.Equal(t, 10, f.stockOf(t, product.ID))
}

func TestCancelAuthorization(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	owner := uuid.New()
	stranger := uuid.New()
	admin := uuid.New()

	product := f.seedProduct(t, "Thai Jasmine", "8.00", 10)
	f.fillCart(t, owner, product.ID, 1)
	order, err := f.svc.Create(ctx, owner, checkoutInput())
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, stranger, enums.UserRoleUser, order.ID)
	orderCode(t, err, pkgerrors.CodeForbidden)

	_, err = f.svc.GetByID(ctx, stranger, enums.UserRoleUser, order.ID)
	orderCode(t, err, pkgerrors.CodeForbidden)

	got, err := f.svc.GetByID(ctx, admin, enums.UserRoleAdmin, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)

	_, err = f.svc.Cancel(ctx, admin, enums.UserRoleAdmin, order.ID)
	require.NoError(t, err)
}

func TestCancelAfterShipmentRejected(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "Thai Jasmine", "8.00", 10)
	f.fillCart(t, userID, product.ID, 1)
	order, err := f.svc.Create(ctx, userID, checkoutInput())
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "PROCESSING"})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, order.ID, UpdateStatusInput{Status: "SHIPPED"})
	require.NoError(t, err)

	_, err = f.svc.Cancel(ctx, userID, enums.UserRoleUser, order.ID)
	orderCode(t, err, pkgerrors.CodeStateConflict)
}

func TestListMineAndAdminList(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	alice := uuid.New()
	bob := uuid.New()

	product := f.seedProduct(t, "Thai Jasmine", "8.00", 100)
	for _, user := range []uuid.UUID{alice, alice, bob} {
		f.fillCart(t, user, product.ID, 1)
		_, err := f.svc.Create(ctx, user, checkoutInput())
		require.NoError(t, err)
	}

	params := pagination.Params{Size: 10}
	mine, err := f.svc.ListMine(ctx, alice, params)
	require.NoError(t, err)
	assert.EqualValues(t, 2, mine.TotalCount)

	all, err := f.svc.List(ctx, nil, params)
	require.NoError(t, err)
	assert.EqualValues(t, 3, all.TotalCount)

	pending := enums.OrderStatusPending
	filtered, err := f.svc.List(ctx, &pending, params)
	require.NoError(t, err)
	assert.EqualValues(t, 3, filtered.TotalCount)

	shipped := enums.OrderStatusShipped
	filtered, err = f.svc.List(ctx, &shipped, params)
	require.NoError(t, err)
	assert.EqualValues(t, 0, filtered.TotalCount)

	_, err = f.svc.ListMine(ctx, alice, pagination.Params{SortBy: "shipping_address"})
	orderCode(t, err, pkgerrors.CodeValidation)

	_, err = f.svc.List(ctx, nil, pagination.Params{SortBy: "shipping_address"})
	orderCode(t, err, pkgerrors.CodeValidation)
}

func TestDashboardAggregates(t *testing.T) {
	t.Parallel()

	f := newOrderFixture(t)
	ctx := context.Background()
	userID := uuid.New()

	product := f.seedProduct(t, "Thai Jasmine", "10.00", 100)

	f.fillCart(t, userID, product.ID, 2)
	_, err := f.svc.Create(ctx, userID, checkoutInput())
	require.NoError(t, err)

	f.fillCart(t, userID, product.ID, 3)
	cancelledOrder, err := f.svc.Create(ctx, userID, checkoutInput())
	require.NoError(t, err)
	_, err = f.svc.Cancel(ctx, userID, enums.UserRoleUser, cancelledOrder.ID)
	require.NoError(t, err)

	dash, err := f.svc.Dashboard(ctx, nil, nil)
	require.NoError(t, err)

	assert.True(t, dash.Revenue.Equal(decimal.RequireFromString("20.00")),
		"cancelled orders do not count as revenue, got %s", dash.Revenue)
	assert.EqualValues(t, 2, dash.TotalOrders)
	assert.EqualValues(t, 1, dash.CountByStatus[enums.OrderStatusPending.String()])
	assert.EqualValues(t, 1, dash.CountByStatus[enums.OrderStatusCancelled.String()])

	// an inverted range is rejected
	from := time.Now().UTC()
	to := from.Add(-time.Hour)
	_, err = f.svc.Dashboard(ctx, &from, &to)
	orderCode(t, err, pkgerrors.CodeValidation)
}
