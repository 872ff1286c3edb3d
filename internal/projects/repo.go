package projects

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/repo"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// Repository persists tracking projects.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, project *models.Project) (*models.Project, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Project, error)
	UpdateOverallStatus(ctx context.Context, id uuid.UUID, status enums.ProjectStatus) error
	DeleteByOrder(ctx context.Context, orderID uuid.UUID) error
}

type repository struct {
	repo.Base
}

// NewRepository builds the gorm-backed project repository.
func NewRepository(db *gorm.DB) Repository {
	return &repository{Base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{Base: repo.NewBase(tx)}
}

func (r *repository) Create(ctx context.Context, project *models.Project) (*models.Project, error) {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	if err := r.DB(ctx).Create(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.DB(ctx).First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) FindByOrder(ctx context.Context, orderID uuid.UUID) (*models.Project, error) {
	var project models.Project
	if err := r.DB(ctx).First(&project, "order_id = ?", orderID).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *repository) UpdateOverallStatus(ctx context.Context, id uuid.UUID, status enums.ProjectStatus) error {
	res := r.DB(ctx).Model(&models.Project{}).
		Where("id = ?", id).
		Update("overall_status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) DeleteByOrder(ctx context.Context, orderID uuid.UUID) error {
	return r.DB(ctx).Where("order_id = ?", orderID).Delete(&models.Project{}).Error
}
