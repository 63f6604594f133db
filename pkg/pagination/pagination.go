package pagination

import (
	"fmt"
	"strings"
)

const (
	// DefaultSize is the standard page size when one is not provided.
	DefaultSize = 20
	// MaxSize caps how many rows any listing can request.
	MaxSize = 100
)

// Params holds offset pagination inputs from controllers or services.
// Page is zero-based; Sort is one of the caller-declared sortable columns.
type Params struct {
	Page     int
	Size     int
	SortBy   string
	SortDesc bool
}

// Page wraps one page of results together with the overall row count.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"total_count"`
	Page       int   `json:"page"`
	Size       int   `json:"size"`
}

// Normalize clamps page/size into their allowed ranges.
func (p Params) Normalize() Params {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size <= 0 {
		p.Size = DefaultSize
	}
	if p.Size > MaxSize {
		p.Size = MaxSize
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	norm := p.Normalize()
	return norm.Page * norm.Size
}

// OrderClause renders a SQL ORDER BY fragment, restricted to the allowed
// column set so user input never reaches the query verbatim. The first
// allowed column is the fallback when no sort was requested.
func (p Params) OrderClause(allowed ...string) (string, error) {
	if len(allowed) == 0 {
		return "", fmt.Errorf("at least one sortable column is required")
	}

	column := strings.TrimSpace(p.SortBy)
	if column == "" {
		column = allowed[0]
	}

	found := false
	for _, candidate := range allowed {
		if candidate == column {
			found = true
			break
		}
	}
	if !found {
		return "", fmt.Errorf("unsortable column %q", column)
	}

	direction := "ASC"
	if p.SortDesc {
		direction = "DESC"
	}
	return fmt.Sprintf("%s %s", column, direction), nil
}

// ParseSort splits a "column,direction" query value into its components.
func ParseSort(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), ",", 2)
	column := strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return column, false
	}
	return column, strings.EqualFold(strings.TrimSpace(parts[1]), "desc")
}

// NewPage assembles a Page from the normalized params and query results.
func NewPage[T any](items []T, total int64, params Params) Page[T] {
	norm := params.Normalize()
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:      items,
		TotalCount: total,
		Page:       norm.Page,
		Size:       norm.Size,
	}
}
