package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceshop/ricestore-backend/pkg/enums"
)

// Order captures a completed checkout. TotalAmount and the item snapshots
// are frozen at creation; later product edits never flow back into an order.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID          uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalAmount     decimal.Decimal   `gorm:"column:total_amount;type:numeric(12,2);not null"`
	ShippingAddress string            `gorm:"column:shipping_address;not null"`
	BillingAddress  *string           `gorm:"column:billing_address"`
	PhoneNumber     string            `gorm:"column:phone_number;not null"`
	PaymentMethod   string            `gorm:"column:payment_method;not null"`
	PaymentStatus   bool              `gorm:"column:payment_status;not null;default:false"`
	TrackingNumber  *string           `gorm:"column:tracking_number"`
	Notes           *string           `gorm:"column:notes"`
	OrderDate       time.Time         `gorm:"column:order_date;not null"`
	DeliveryDate    *time.Time        `gorm:"column:delivery_date"`
	Items           []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
