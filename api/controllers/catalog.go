package controllers

import (
	"net/http"
	"strings"

	"github.com/riceshop/ricestore-backend/api/responses"
	"github.com/riceshop/ricestore-backend/api/validators"
	catalogsvc "github.com/riceshop/ricestore-backend/internal/catalog"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
	"github.com/riceshop/ricestore-backend/pkg/logger"
)

func activeOnlyFilter(r *http.Request) bool {
	return !strings.EqualFold(strings.TrimSpace(r.URL.Query().Get("include_inactive")), "true")
}

// ListOrigins returns the origin lookup table, active rows only by default.
func ListOrigins(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		origins, err := svc.ListOrigins(r.Context(), activeOnlyFilter(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, origins)
	}
}

// GetOrigin returns a single origin by id.
func GetOrigin(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "originID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		origin, err := svc.GetOrigin(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, origin)
	}
}

// CreateOrigin registers a new origin, admin-only.
func CreateOrigin(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload catalogsvc.CreateOriginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		origin, err := svc.CreateOrigin(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, origin)
	}
}

// UpdateOrigin applies a partial origin update, admin-only.
func UpdateOrigin(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "originID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.UpdateOriginInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		origin, err := svc.UpdateOrigin(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, origin)
	}
}

// DeleteOrigin hides an origin from new listings without dropping the row.
func DeleteOrigin(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setOriginActive(svc, logg, false)
}

// ActivateOrigin restores a hidden origin.
func ActivateOrigin(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setOriginActive(svc, logg, true)
}

func setOriginActive(svc catalogsvc.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "originID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		origin, err := svc.SetOriginActive(r.Context(), id, active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, origin)
	}
}

// ListRiceTypes returns the variety lookup table, active rows only by default.
func ListRiceTypes(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		riceTypes, err := svc.ListRiceTypes(r.Context(), activeOnlyFilter(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, riceTypes)
	}
}

// GetRiceType returns a single variety by id.
func GetRiceType(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "riceTypeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riceType, err := svc.GetRiceType(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, riceType)
	}
}

// CreateRiceType registers a new variety, admin-only.
func CreateRiceType(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload catalogsvc.CreateRiceTypeInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riceType, err := svc.CreateRiceType(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, riceType)
	}
}

// UpdateRiceType applies a partial variety update, admin-only.
func UpdateRiceType(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "riceTypeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload catalogsvc.UpdateRiceTypeInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riceType, err := svc.UpdateRiceType(r.Context(), id, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, riceType)
	}
}

// DeleteRiceType hides a variety from new listings without dropping the row.
func DeleteRiceType(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setRiceTypeActive(svc, logg, false)
}

// ActivateRiceType restores a hidden variety.
func ActivateRiceType(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return setRiceTypeActive(svc, logg, true)
}

func setRiceTypeActive(svc catalogsvc.Service, logg *logger.Logger, active bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id, err := pathUUID(r, "riceTypeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		riceType, err := svc.SetRiceTypeActive(r.Context(), id, active)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, riceType)
	}
}
