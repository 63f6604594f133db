package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/riceshop/ricestore-backend/pkg/db/models"
)

// Repository exposes persistence for the catalog lookup tables.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a catalog repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a copy of the repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) CreateOrigin(ctx context.Context, origin *models.Origin) error {
	if origin.ID == uuid.Nil {
		origin.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(origin).Error
}

func (r *Repository) FindOriginByID(ctx context.Context, id uuid.UUID) (*models.Origin, error) {
	var origin models.Origin
	if err := r.db.WithContext(ctx).First(&origin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &origin, nil
}

// OriginNameExists reports whether another origin already claims the name.
func (r *Repository) OriginNameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.Origin{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) SaveOrigin(ctx context.Context, origin *models.Origin) error {
	return r.db.WithContext(ctx).Save(origin).Error
}

// ListOrigins returns origins sorted by name, optionally active ones only.
func (r *Repository) ListOrigins(ctx context.Context, activeOnly bool) ([]models.Origin, error) {
	query := r.db.WithContext(ctx).Model(&models.Origin{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.Origin
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) CreateRiceType(ctx context.Context, rt *models.RiceType) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(rt).Error
}

func (r *Repository) FindRiceTypeByID(ctx context.Context, id uuid.UUID) (*models.RiceType, error) {
	var rt models.RiceType
	if err := r.db.WithContext(ctx).First(&rt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// RiceTypeNameExists reports whether another variety already claims the name.
func (r *Repository) RiceTypeNameExists(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.RiceType{}).Where("LOWER(name) = LOWER(?)", name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *Repository) SaveRiceType(ctx context.Context, rt *models.RiceType) error {
	return r.db.WithContext(ctx).Save(rt).Error
}

// ListRiceTypes returns varieties sorted by name, optionally active ones only.
func (r *Repository) ListRiceTypes(ctx context.Context, activeOnly bool) ([]models.RiceType, error) {
	query := r.db.WithContext(ctx).Model(&models.RiceType{})
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	var rows []models.RiceType
	if err := query.Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
