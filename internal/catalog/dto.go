package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
)

// OriginDTO is the transport shape of a growing-region lookup entry.
type OriginDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	CountryCode *string   `json:"country_code,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RiceTypeDTO is the transport shape of a rice-variety lookup entry.
type RiceTypeDTO struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CreateOriginInput holds the fields accepted when registering an origin.
type CreateOriginInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=128"`
	Description *string `json:"description,omitempty"`
	CountryCode *string `json:"country_code,omitempty" validate:"omitempty,len=2"`
}

// UpdateOriginInput lists the optional fields of a partial origin update.
type UpdateOriginInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description,omitempty"`
	CountryCode *string `json:"country_code,omitempty" validate:"omitempty,len=2"`
}

// CreateRiceTypeInput holds the fields accepted when registering a variety.
type CreateRiceTypeInput struct {
	Name        string  `json:"name" validate:"required,min=2,max=128"`
	Description *string `json:"description,omitempty"`
}

// UpdateRiceTypeInput lists the optional fields of a partial variety update.
type UpdateRiceTypeInput struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=2,max=128"`
	Description *string `json:"description,omitempty"`
}

func originFromModel(m *models.Origin) *OriginDTO {
	if m == nil {
		return nil
	}
	return &OriginDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		CountryCode: m.CountryCode,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func riceTypeFromModel(m *models.RiceType) *RiceTypeDTO {
	if m == nil {
		return nil
	}
	return &RiceTypeDTO{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
