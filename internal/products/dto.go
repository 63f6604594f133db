package products

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
)

// ProductDTO is the transport shape of a catalog listing.
type ProductDTO struct {
	ID            uuid.UUID       `json:"id"`
	Name          string          `json:"name"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price"`
	StockQuantity int             `json:"stock_quantity"`
	ImageURL      *string         `json:"image_url,omitempty"`
	Origin        string          `json:"origin"`
	RiceType      string          `json:"rice_type"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
	IsActive      bool            `json:"is_active"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CreateProductInput holds the fields accepted when listing a new product.
type CreateProductInput struct {
	Name          string          `json:"name" validate:"required,min=2,max=256"`
	Description   *string         `json:"description,omitempty"`
	Price         decimal.Decimal `json:"price" validate:"required"`
	StockQuantity int             `json:"stock_quantity" validate:"gte=0"`
	ImageURL      *string         `json:"image_url,omitempty" validate:"omitempty,url"`
	Origin        string          `json:"origin" validate:"required"`
	RiceType      string          `json:"rice_type" validate:"required"`
	WeightKg      decimal.Decimal `json:"weight_kg"`
}

// UpdateProductInput lists the optional fields of a partial product update.
type UpdateProductInput struct {
	Name          *string          `json:"name,omitempty" validate:"omitempty,min=2,max=256"`
	Description   *string          `json:"description,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	StockQuantity *int             `json:"stock_quantity,omitempty" validate:"omitempty,gte=0"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url"`
	Origin        *string          `json:"origin,omitempty"`
	RiceType      *string          `json:"rice_type,omitempty"`
	WeightKg      *decimal.Decimal `json:"weight_kg,omitempty"`
}

func FromModel(p *models.Product) *ProductDTO {
	if p == nil {
		return nil
	}
	return &ProductDTO{
		ID:            p.ID,
		Name:          p.Name,
		Description:   p.Description,
		Price:         p.Price,
		StockQuantity: p.StockQuantity,
		ImageURL:      p.ImageURL,
		Origin:        p.Origin,
		RiceType:      p.RiceType,
		WeightKg:      p.WeightKg,
		IsActive:      p.IsActive,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}
