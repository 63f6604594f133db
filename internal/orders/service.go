package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/internal/cart"
	"github.com/riceshop/ricestore-backend/internal/products"
	"github.com/riceshop/ricestore-backend/pkg/db/models"
	"github.com/riceshop/ricestore-backend/pkg/enums"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/pagination"
)

const dashboardDefaultWindow = 30 * 24 * time.Hour

// Service owns the order lifecycle: checkout, status transitions, the
// owner-or-admin read paths, and the admin dashboard aggregates.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	GetByID(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[OrderDTO], error)
	List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*pagination.Page[OrderDTO], error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error)
	Cancel(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error)
	Dashboard(ctx context.Context, from, to *time.Time) (*DashboardDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx       txRunner
	orders   *Repository
	carts    *cart.Repository
	products *products.Repository
}

// ServiceParams bundles the dependencies required to build an order service.
type ServiceParams struct {
	TxRunner    txRunner
	OrderRepo   *Repository
	CartRepo    *cart.Repository
	ProductRepo *products.Repository
}

// NewService constructs an order service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.OrderRepo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{
		tx:       params.TxRunner,
		orders:   params.OrderRepo,
		carts:    params.CartRepo,
		products: params.ProductRepo,
	}, nil
}

// Create turns the caller's cart into a PENDING order. Stock is taken via
// guarded conditional updates inside the transaction, so two checkouts
// racing over the last bag cannot both succeed; the loser aborts whole.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if strings.TrimSpace(input.ShippingAddress) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "shipping address is required")
	}
	if strings.TrimSpace(input.PhoneNumber) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "phone number is required")
	}
	if strings.TrimSpace(input.PaymentMethod) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}

	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		cartRepo := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		userCart, err := cartRepo.FindByUserID(ctx, userID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "cart is empty")
		}

		items := make([]models.OrderItem, 0, len(userCart.Items))
		for _, line := range userCart.Items {
			product, err := productRepo.FindByID(ctx, line.ProductID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeStateConflict,
						fmt.Sprintf("product %s is no longer available", line.ProductID))
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
			}

			taken, err := productRepo.DecrementStock(ctx, line.ProductID, line.Quantity)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: reserve stock")
			}
			if !taken {
				return pkgerrors.New(pkgerrors.CodeStateConflict,
					fmt.Sprintf("insufficient stock for %q", product.Name))
			}

			items = append(items, models.OrderItem{
				ProductID:   line.ProductID,
				ProductName: product.Name,
				Quantity:    line.Quantity,
				UnitPrice:   line.UnitPrice,
				Subtotal:    line.Subtotal,
			})
		}

		order := &models.Order{
			UserID:          userID,
			Status:          enums.OrderStatusPending,
			TotalAmount:     userCart.TotalAmount,
			ShippingAddress: strings.TrimSpace(input.ShippingAddress),
			BillingAddress:  input.BillingAddress,
			PhoneNumber:     strings.TrimSpace(input.PhoneNumber),
			PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
			PaymentStatus:   false,
			Notes:           input.Notes,
			OrderDate:       time.Now().UTC(),
			Items:           items,
		}
		if err := orderRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create order")
		}
		orderID = order.ID

		if err := cartRepo.DeleteItems(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
		}
		if _, err := cartRepo.RecomputeTotal(ctx, userCart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recompute cart total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return fromModel(order), nil
}

// GetByID returns the order. Non-admin callers may only read their own.
func (s *service) GetByID(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	if err := ensureOwnerOrAdmin(callerID, callerRole, order.UserID); err != nil {
		return nil, err
	}
	return fromModel(order), nil
}

// ListMine returns one page of the caller's own orders.
func (s *service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	rows, total, err := s.orders.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, listError(err)
	}
	return buildPage(rows, total, params), nil
}

// List returns one page over all orders for the admin view.
func (s *service) List(ctx context.Context, status *enums.OrderStatus, params pagination.Params) (*pagination.Page[OrderDTO], error) {
	rows, total, err := s.orders.List(ctx, status, params)
	if err != nil {
		return nil, listError(err)
	}
	return buildPage(rows, total, params), nil
}

// UpdateStatus advances the order along the status machine. Entering
// CANCELLED restores the reserved stock; DELIVERED stamps the delivery
// date. Route-level guards restrict this to admins.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, input UpdateStatusInput) (*OrderDTO, error) {
	next, err := enums.ParseOrderStatus(strings.ToUpper(strings.TrimSpace(input.Status)))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		orderRepo := s.orders.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		order, err := orderRepo.FindByID(ctx, orderID)
		if err != nil {
			return orderLookupError(err)
		}
		if !order.Status.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot move order from %s to %s", order.Status, next))
		}

		if next == enums.OrderStatusCancelled {
			if err := restoreStock(ctx, productRepo, order.Items); err != nil {
				return err
			}
		}
		if next == enums.OrderStatusDelivered {
			now := time.Now().UTC()
			order.DeliveryDate = &now
		}
		if input.TrackingNumber != nil {
			order.TrackingNumber = input.TrackingNumber
		}
		if input.PaymentStatus != nil {
			order.PaymentStatus = *input.PaymentStatus
		}
		order.Status = next

		if err := orderRepo.Save(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	return fromModel(order), nil
}

// Cancel lets the owner (or an admin) call off an order that has not
// shipped yet. It rides the same transition path as the admin update, so
// the stock restore cannot run twice.
func (s *service) Cancel(ctx context.Context, callerID uuid.UUID, callerRole enums.UserRole, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, orderLookupError(err)
	}
	if err := ensureOwnerOrAdmin(callerID, callerRole, order.UserID); err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, orderID, UpdateStatusInput{Status: enums.OrderStatusCancelled.String()})
}

// Dashboard aggregates revenue and per-status counts. Without an explicit
// range it covers the last 30 days.
func (s *service) Dashboard(ctx context.Context, from, to *time.Time) (*DashboardDTO, error) {
	end := time.Now().UTC()
	if to != nil {
		end = to.UTC()
	}
	start := end.Add(-dashboardDefaultWindow)
	if from != nil {
		start = from.UTC()
	}
	if !start.Before(end) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must precede to")
	}

	revenue, err := s.orders.RevenueBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: sum revenue")
	}
	counts, err := s.orders.CountByStatusBetween(ctx, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: count orders")
	}

	var total int64
	for _, count := range counts {
		total += count
	}
	return &DashboardDTO{
		From:          start,
		To:            end,
		Revenue:       revenue,
		TotalOrders:   total,
		CountByStatus: counts,
	}, nil
}

func restoreStock(ctx context.Context, repo *products.Repository, items []models.OrderItem) error {
	for _, item := range items {
		if err := repo.RestoreStock(ctx, item.ProductID, item.Quantity); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: restore stock")
		}
	}
	return nil
}

func buildPage(rows []models.Order, total int64, params pagination.Params) *pagination.Page[OrderDTO] {
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *fromModel(&rows[i]))
	}
	page := pagination.NewPage(items, total, params)
	return &page
}

func ensureOwnerOrAdmin(callerID uuid.UUID, callerRole enums.UserRole, ownerID uuid.UUID) error {
	if callerID == ownerID || callerRole == enums.UserRoleAdmin {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeForbidden, "not allowed to access this order")
}

// listError keeps typed errors (a rejected sort column, for one) intact
// instead of masking them as dependency failures.
func listError(err error) error {
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list orders")
}

func orderLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	if typed := pkgerrors.As(err); typed != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load order")
}
