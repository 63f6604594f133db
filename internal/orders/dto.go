package orders

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
	"github.com/riceshop/ricestore-backend/pkg/enums"
)

// OrderDTO is the transport shape of an order with its snapshot lines.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	UserID          uuid.UUID         `json:"user_id"`
	Status          enums.OrderStatus `json:"status"`
	TotalAmount     decimal.Decimal   `json:"total_amount"`
	ShippingAddress string            `json:"shipping_address"`
	BillingAddress  *string           `json:"billing_address,omitempty"`
	PhoneNumber     string            `json:"phone_number"`
	PaymentMethod   string            `json:"payment_method"`
	PaymentStatus   bool              `json:"payment_status"`
	TrackingNumber  *string           `json:"tracking_number,omitempty"`
	Notes           *string           `json:"notes,omitempty"`
	OrderDate       time.Time         `json:"order_date"`
	DeliveryDate    *time.Time        `json:"delivery_date,omitempty"`
	Items           []OrderItemDTO    `json:"items"`
}

// OrderItemDTO is one immutable snapshot line of an order.
type OrderItemDTO struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// CreateOrderInput carries the shipping details collected at checkout.
type CreateOrderInput struct {
	ShippingAddress string  `json:"shipping_address" validate:"required"`
	BillingAddress  *string `json:"billing_address,omitempty"`
	PhoneNumber     string  `json:"phone_number" validate:"required"`
	PaymentMethod   string  `json:"payment_method" validate:"required"`
	Notes           *string `json:"notes,omitempty"`
}

// UpdateStatusInput is the admin payload for advancing an order.
type UpdateStatusInput struct {
	Status         string  `json:"status" validate:"required"`
	TrackingNumber *string `json:"tracking_number,omitempty"`
	PaymentStatus  *bool   `json:"payment_status,omitempty"`
}

// DashboardDTO aggregates revenue and order counts over a date range.
type DashboardDTO struct {
	From          time.Time        `json:"from"`
	To            time.Time        `json:"to"`
	Revenue       decimal.Decimal  `json:"revenue"`
	TotalOrders   int64            `json:"total_orders"`
	CountByStatus map[string]int64 `json:"count_by_status"`
}

func fromModel(o *models.Order) *OrderDTO {
	if o == nil {
		return nil
	}
	items := make([]OrderItemDTO, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, OrderItemDTO{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Subtotal:    item.Subtotal,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		UserID:          o.UserID,
		Status:          o.Status,
		TotalAmount:     o.TotalAmount,
		ShippingAddress: o.ShippingAddress,
		BillingAddress:  o.BillingAddress,
		PhoneNumber:     o.PhoneNumber,
		PaymentMethod:   o.PaymentMethod,
		PaymentStatus:   o.PaymentStatus,
		TrackingNumber:  o.TrackingNumber,
		Notes:           o.Notes,
		OrderDate:       o.OrderDate,
		DeliveryDate:    o.DeliveryDate,
		Items:           items,
	}
}
