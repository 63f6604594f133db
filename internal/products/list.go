package products

import (
	"github.com/shopspring/decimal"
)

// ListFilters describes the supported filter knobs for the browse endpoint.
// All filters are optional and AND-combined; nil means "not constrained".
type ListFilters struct {
	Keyword  string           `json:"q,omitempty"`
	Origin   *string          `json:"origin,omitempty"`
	RiceType *string          `json:"rice_type,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
	// IncludeInactive widens the listing beyond active products. Reserved
	// for admin views; the public browse endpoint never sets it.
	IncludeInactive bool `json:"-"`
}
