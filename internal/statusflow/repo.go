package statusflow

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/repo"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
)

// Repository persists the append-only status log. Entries are never updated
// or deleted outside an order hard delete.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, error)
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.StatusUpdate, error)
	DeleteByProject(ctx context.Context, projectID uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds the gorm-backed status update repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

// Create assigns the per-project sequence number so that createdAt ties keep
// insertion order.
func (r *repository) Create(ctx context.Context, update *models.StatusUpdate) (*models.StatusUpdate, error) {
	if update.ID == uuid.Nil {
		update.ID = uuid.New()
	}

	var maxSeq int64
	err := r.DB(ctx).Model(&models.StatusUpdate{}).
		Where("project_id = ?", update.ProjectID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return nil, err
	}
	update.Seq = maxSeq + 1

	if err := r.DB(ctx).Create(update).Error; err != nil {
		return nil, err
	}
	return update, nil
}

func (r *repository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.StatusUpdate, error) {
	var updates []models.StatusUpdate
	err := r.DB(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Order("seq ASC").
		Find(&updates).Error
	if err != nil {
		return nil, err
	}
	return updates, nil
}

func (r *repository) DeleteByProject(ctx context.Context, projectID uuid.UUID) error {
	return r.DB(ctx).Where("project_id = ?", projectID).Delete(&models.StatusUpdate{}).Error
}
