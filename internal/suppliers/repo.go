package suppliers

import (
	"context"

	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/repo"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// ItemFilter narrows the aggregation input.
type ItemFilter struct {
	Kind *enums.MaterialType
}

// Repository reads the line items feeding the supplier aggregation.
type Repository interface {
	// ListActiveItems returns line items of all non-cancelled orders.
	ListActiveItems(ctx context.Context, filter ItemFilter) ([]models.OrderItem, error)
}

type gormRepository struct {
	repo.Base
}

func NewRepository(db *gorm.DB) Repository {
	return &gormRepository{Base: repo.NewBase(db)}
}

func (r *gormRepository) ListActiveItems(ctx context.Context, filter ItemFilter) ([]models.OrderItem, error) {
	query := r.DB(ctx).
		Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status <> ?", enums.OrderStatusCancelled)
	if filter.Kind != nil {
		query = query.Where("orders.kind = ?", *filter.Kind)
	}

	var items []models.OrderItem
	if err := query.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
