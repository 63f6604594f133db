package cart

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
)

// CartDTO is the transport shape of a cart with its lines.
type CartDTO struct {
	ID          uuid.UUID       `json:"id"`
	UserID      uuid.UUID       `json:"user_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Items       []CartItemDTO   `json:"items"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CartItemDTO is one product line of a cart.
type CartItemDTO struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// AddItemInput is the payload for putting a product into the cart.
type AddItemInput struct {
	ProductID uuid.UUID `json:"product_id" validate:"required"`
	Quantity  int       `json:"quantity" validate:"required,gte=1"`
}

// UpdateItemInput sets the absolute quantity of an existing cart line.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

func fromModel(c *models.Cart) *CartDTO {
	if c == nil {
		return nil
	}
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemDTO{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
			Subtotal:  item.Subtotal,
		})
	}
	return &CartDTO{
		ID:          c.ID,
		UserID:      c.UserID,
		TotalAmount: c.TotalAmount,
		Items:       items,
		UpdatedAt:   c.UpdatedAt,
	}
}
