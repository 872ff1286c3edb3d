package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/repo"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	"github.com/materialdesk/materialdesk-backend/pkg/pagination"
)

// MaterialFilter narrows material list queries.
type MaterialFilter struct {
	Type     *enums.MaterialType
	Category string
}

// Repository persists materials. Quantity mutations go through guarded
// updates so concurrent reservations cannot oversell.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, material *models.Material) (*models.Material, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Material, error)
	List(ctx context.Context, params pagination.Params, filter MaterialFilter) ([]models.Material, int64, error)
	DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
	OverwriteQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error)
}

type repository struct {
	repo.Base
}

// NewRepository builds the gorm-backed material repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, material *models.Material) (*models.Material, error) {
	if material.ID == uuid.Nil {
		material.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(material).Error; err != nil {
		return nil, err
	}
	return material, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	var material models.Material
	if err := r.DB(ctx).First(&material, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params, filter MaterialFilter) ([]models.Material, int64, error) {
	params = params.Normalize()

	query := r.DB(ctx).Model(&models.Material{})
	if filter.Type != nil {
		query = query.Where("type = ?", *filter.Type)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var materials []models.Material
	err := query.
		Order("name ASC").
		Offset(params.Offset()).
		Limit(params.Limit).
		Find(&materials).Error
	if err != nil {
		return nil, 0, err
	}
	return materials, total, nil
}

// DecrementQuantity subtracts qty only when enough stock remains. A zero row
// count means the material is missing or stock is insufficient.
func (r *repository) DecrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.DB(ctx).Exec(`
		UPDATE materials
		SET quantity = quantity - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND quantity >= ?
	`, qty, id, qty)
	return res.RowsAffected, res.Error
}

func (r *repository) IncrementQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.DB(ctx).Exec(`
		UPDATE materials
		SET quantity = quantity + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	return res.RowsAffected, res.Error
}

func (r *repository) OverwriteQuantity(ctx context.Context, id uuid.UUID, qty int) (int64, error) {
	res := r.DB(ctx).Exec(`
		UPDATE materials
		SET quantity = ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, qty, id)
	return res.RowsAffected, res.Error
}
