package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/riceshop/ricestore-backend/api/responses"
	"github.com/riceshop/ricestore-backend/api/validators"
	productsvc "github.com/riceshop/ricestore-backend/internal/products"
	"github.com/riceshop/ricestore-backend/pkg/enums"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/logger"
)

// ListProducts is the public browse endpoint. Admins can request inactive
// rows with ?include_inactive=true.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		params, err := parsePageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := parseProductFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), filters, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

func parseProductFilters(r *http.Request) (productsvc.ListFilters, error) {
	q := r.URL.Query()

	filters := productsvc.ListFilters{
		Keyword: validators.SanitizeString(q.Get("keyword"), 128),
	}

	if origin := strings.TrimSpace(q.Get("origin")); origin != "" {
		filters.Origin = &origin
	}
	if riceType := strings.TrimSpace(q.Get("rice_type")); riceType != "" {
		filters.RiceType = &riceType
	}

	for key, dest := range map[string]**decimal.Decimal{
		"min_price": &filters.MinPrice,
		"max_price": &filters.MaxPrice,
	} {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		value, err := decimal.NewFromString(raw)
		if err != nil {
			return productsvc.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "query parameter must be a decimal").
				WithDetails(map[string]any{"field": key})
		}
		*dest = &value
	}

	if strings.EqualFold(strings.TrimSpace(q.Get("include_inactive")), "true") &&
		callerRole(r) == enums.UserRoleAdmin {
		filters.IncludeInactive = true
	}

	return filters, nil
}

// GetProduct returns one product, including retired ones so order history
// links stay resolvable.
func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// CreateProduct registers a new listing, admin-only.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		uid, err := callerID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productsvc.CreateProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), uid, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

// UpdateProduct applies a partial listing update, admin-only.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload productsvc.UpdateProductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct retires a listing without removing the row.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setProductActive(svc, logg, false)
}

// ActivateProduct puts a retired listing back on sale.
func ActivateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setProductActive(svc, logg, true)
}

func setProductActive(svc productsvc.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		id, err := pathUUID(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.SetActive(r.Context(), id, active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}
