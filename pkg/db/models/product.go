package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product represents a catalog listing. Rows are soft-deleted via IsActive
// and never removed, so historical orders keep a resolvable reference.
type Product struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string          `gorm:"column:name;not null"`
	Description   *string         `gorm:"column:description"`
	Price         decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null"`
	StockQuantity int             `gorm:"column:stock_quantity;not null;default:0;check:stock_quantity >= 0"`
	ImageURL      *string         `gorm:"column:image_url"`
	Origin        string          `gorm:"column:origin;not null"`
	RiceType      string          `gorm:"column:rice_type;not null"`
	WeightKg      decimal.Decimal `gorm:"column:weight_kg;type:numeric(8,3);not null;default:0"`
	IsActive      bool            `gorm:"column:is_active;not null;default:true"`
	CreatedBy     *uuid.UUID      `gorm:"column:created_by;type:uuid"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
