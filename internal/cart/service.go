package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/internal/products"
	"github.com/riceshop/ricestore-backend/pkg/db/models"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
)

// Service exposes the per-user shopping cart operations. Every method is
// scoped to the calling user, so a cart line can never be touched through
// another user's session.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error)
	RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	tx       txRunner
	carts    *Repository
	products *products.Repository
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	TxRunner    txRunner
	CartRepo    *Repository
	ProductRepo *products.Repository
}

// NewService constructs a cart service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.TxRunner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if params.ProductRepo == nil {
		return nil, fmt.Errorf("product repository is required")
	}
	return &service{
		tx:       params.TxRunner,
		carts:    params.CartRepo,
		products: params.ProductRepo,
	}, nil
}

// Get returns the user's cart, creating an empty one on first access.
func (s *service) Get(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	cart, err := s.loadOrCreate(ctx, s.carts, userID)
	if err != nil {
		return nil, err
	}
	return fromModel(cart), nil
}

// AddItem puts a product into the cart. Adding a product that is already
// in the cart merges into the existing line and keeps its price snapshot.
// The quantity is validated against current stock, as a courtesy check;
// the authoritative guard runs again at checkout.
func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		cart, err := s.loadOrCreate(ctx, carts, userID)
		if err != nil {
			return err
		}

		product, err := productRepo.FindActiveByID(ctx, input.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}

		existing, err := carts.FindItemByProduct(ctx, cart.ID, product.ID)
		switch {
		case err == nil:
			requested := existing.Quantity + input.Quantity
			if requested > product.StockQuantity {
				return insufficientStock(product.Name, product.StockQuantity)
			}
			existing.Quantity = requested
			existing.Subtotal = existing.UnitPrice.Mul(decimalFromInt(requested))
			if err := carts.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			if input.Quantity > product.StockQuantity {
				return insufficientStock(product.Name, product.StockQuantity)
			}
			item := &models.CartItem{
				CartID:    cart.ID,
				ProductID: product.ID,
				Quantity:  input.Quantity,
				UnitPrice: product.Price,
				Subtotal:  product.Price.Mul(decimalFromInt(input.Quantity)),
			}
			if err := carts.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
		}

		if _, err := carts.RecomputeTotal(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recompute cart total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// UpdateItem sets the absolute quantity of an existing line.
func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*CartDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		cart, err := s.loadCart(ctx, carts, userID)
		if err != nil {
			return err
		}

		item, err := carts.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			return itemLookupError(err)
		}

		product, err := productRepo.FindByID(ctx, item.ProductID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		if input.Quantity > product.StockQuantity {
			return insufficientStock(product.Name, product.StockQuantity)
		}

		item.Quantity = input.Quantity
		item.Subtotal = item.UnitPrice.Mul(decimalFromInt(input.Quantity))
		if err := carts.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update cart item")
		}

		if _, err := carts.RecomputeTotal(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recompute cart total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// RemoveItem drops one line from the cart.
func (s *service) RemoveItem(ctx context.Context, userID, itemID uuid.UUID) (*CartDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		cart, err := s.loadCart(ctx, carts, userID)
		if err != nil {
			return err
		}

		if err := carts.DeleteItem(ctx, cart.ID, itemID); err != nil {
			return itemLookupError(err)
		}
		if _, err := carts.RecomputeTotal(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recompute cart total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

// Clear empties the cart and zeroes its total.
func (s *service) Clear(ctx context.Context, userID uuid.UUID) (*CartDTO, error) {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)

		cart, err := s.loadOrCreate(ctx, carts, userID)
		if err != nil {
			return err
		}
		if err := carts.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: clear cart")
		}
		if _, err := carts.RecomputeTotal(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: recompute cart total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}

func (s *service) loadOrCreate(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUserID(ctx, userID)
	if err == nil {
		return cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	cart, err = repo.CreateForUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create cart")
	}
	return cart, nil
}

func (s *service) loadCart(ctx context.Context, repo *Repository, userID uuid.UUID) (*models.Cart, error) {
	cart, err := repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart")
	}
	return cart, nil
}

func itemLookupError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, "cart item not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load cart item")
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func insufficientStock(name string, available int) error {
	return pkgerrors.New(pkgerrors.CodeStateConflict,
		fmt.Sprintf("insufficient stock for %q: %d available", name, available))
}
