package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
	pkgerrors "github.com/riceshop/ricestore-backend/pkg/errors"
)

// Service exposes CRUD over the origin and rice-variety lookup tables.
// Mutations are admin-only, enforced at the route level.
type Service interface {
	ListOrigins(ctx context.Context, activeOnly bool) ([]OriginDTO, error)
	GetOrigin(ctx context.Context, id uuid.UUID) (*OriginDTO, error)
	CreateOrigin(ctx context.Context, input CreateOriginInput) (*OriginDTO, error)
	UpdateOrigin(ctx context.Context, id uuid.UUID, input UpdateOriginInput) (*OriginDTO, error)
	SetOriginActive(ctx context.Context, id uuid.UUID, active bool) (*OriginDTO, error)

	ListRiceTypes(ctx context.Context, activeOnly bool) ([]RiceTypeDTO, error)
	GetRiceType(ctx context.Context, id uuid.UUID) (*RiceTypeDTO, error)
	CreateRiceType(ctx context.Context, input CreateRiceTypeInput) (*RiceTypeDTO, error)
	UpdateRiceType(ctx context.Context, id uuid.UUID, input UpdateRiceTypeInput) (*RiceTypeDTO, error)
	SetRiceTypeActive(ctx context.Context, id uuid.UUID, active bool) (*RiceTypeDTO, error)
}

type service struct {
	repo *Repository
}

// NewService constructs a catalog service instance.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) ListOrigins(ctx context.Context, activeOnly bool) ([]OriginDTO, error) {
	rows, err := s.repo.ListOrigins(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list origins")
	}
	items := make([]OriginDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *originFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) GetOrigin(ctx context.Context, id uuid.UUID) (*OriginDTO, error) {
	origin, err := s.repo.FindOriginByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "origin")
	}
	return originFromModel(origin), nil
}

func (s *service) CreateOrigin(ctx context.Context, input CreateOriginInput) (*OriginDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if taken, err := s.repo.OriginNameExists(ctx, name, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check origin name")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin name is already taken")
	}

	origin := &models.Origin{
		Name:        name,
		Description: input.Description,
		CountryCode: normalizeCountryCode(input.CountryCode),
		IsActive:    true,
	}
	if err := s.repo.CreateOrigin(ctx, origin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create origin")
	}
	return originFromModel(origin), nil
}

// UpdateOrigin applies a partial update. The uniqueness re-check is skipped
// when the submitted name matches the stored one.
func (s *service) UpdateOrigin(ctx context.Context, id uuid.UUID, input UpdateOriginInput) (*OriginDTO, error) {
	origin, err := s.repo.FindOriginByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "origin")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		if !strings.EqualFold(name, origin.Name) {
			if taken, err := s.repo.OriginNameExists(ctx, name, &origin.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check origin name")
			} else if taken {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "origin name is already taken")
			}
		}
		origin.Name = name
	}
	if input.Description != nil {
		origin.Description = input.Description
	}
	if input.CountryCode != nil {
		origin.CountryCode = normalizeCountryCode(input.CountryCode)
	}

	if err := s.repo.SaveOrigin(ctx, origin); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update origin")
	}
	return originFromModel(origin), nil
}

func (s *service) SetOriginActive(ctx context.Context, id uuid.UUID, active bool) (*OriginDTO, error) {
	origin, err := s.repo.FindOriginByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "origin")
	}
	if origin.IsActive != active {
		origin.IsActive = active
		if err := s.repo.SaveOrigin(ctx, origin); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update origin")
		}
	}
	return originFromModel(origin), nil
}

func (s *service) ListRiceTypes(ctx context.Context, activeOnly bool) ([]RiceTypeDTO, error) {
	rows, err := s.repo.ListRiceTypes(ctx, activeOnly)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list rice types")
	}
	items := make([]RiceTypeDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *riceTypeFromModel(&rows[i]))
	}
	return items, nil
}

func (s *service) GetRiceType(ctx context.Context, id uuid.UUID) (*RiceTypeDTO, error) {
	rt, err := s.repo.FindRiceTypeByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "rice type")
	}
	return riceTypeFromModel(rt), nil
}

func (s *service) CreateRiceType(ctx context.Context, input CreateRiceTypeInput) (*RiceTypeDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if taken, err := s.repo.RiceTypeNameExists(ctx, name, nil); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check rice type name")
	} else if taken {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rice type name is already taken")
	}

	rt := &models.RiceType{
		Name:        name,
		Description: input.Description,
		IsActive:    true,
	}
	if err := s.repo.CreateRiceType(ctx, rt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: create rice type")
	}
	return riceTypeFromModel(rt), nil
}

func (s *service) UpdateRiceType(ctx context.Context, id uuid.UUID, input UpdateRiceTypeInput) (*RiceTypeDTO, error) {
	rt, err := s.repo.FindRiceTypeByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "rice type")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		if !strings.EqualFold(name, rt.Name) {
			if taken, err := s.repo.RiceTypeNameExists(ctx, name, &rt.ID); err != nil {
				return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check rice type name")
			} else if taken {
				return nil, pkgerrors.New(pkgerrors.CodeValidation, "rice type name is already taken")
			}
		}
		rt.Name = name
	}
	if input.Description != nil {
		rt.Description = input.Description
	}

	if err := s.repo.SaveRiceType(ctx, rt); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update rice type")
	}
	return riceTypeFromModel(rt), nil
}

func (s *service) SetRiceTypeActive(ctx context.Context, id uuid.UUID, active bool) (*RiceTypeDTO, error) {
	rt, err := s.repo.FindRiceTypeByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "rice type")
	}
	if rt.IsActive != active {
		rt.IsActive = active
		if err := s.repo.SaveRiceType(ctx, rt); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update rice type")
		}
	}
	return riceTypeFromModel(rt), nil
}

func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.New(pkgerrors.CodeNotFound, entity+" not found")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load "+entity)
}

func normalizeCountryCode(code *string) *string {
	if code == nil {
		return nil
	}
	normalized := strings.ToUpper(strings.TrimSpace(*code))
	if normalized == "" {
		return nil
	}
	return &normalized
}
