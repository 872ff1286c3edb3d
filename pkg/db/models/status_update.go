package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	"github.com/materialdesk/materialdesk-backend/pkg/types"
)

// StatusUpdate is one append-only entry in a project's status log. Rows are
// never mutated or deleted in normal flow; the current value per column is the
// entry with the greatest CreatedAt, ties broken by Seq.
type StatusUpdate struct {
	ID        uuid.UUID              `gorm:"column:id;type:uuid;primaryKey"`
	ProjectID uuid.UUID              `gorm:"column:project_id;type:uuid;not null;index"`
	AuthorID  uuid.UUID              `gorm:"column:author_id;type:uuid;not null"`
	Column    enums.StatusColumn     `gorm:"column:status_type;type:text;not null"`
	Value     string                 `gorm:"column:status_value;not null"`
	Delivery  *types.DeliveryDetails `gorm:"column:delivery;type:jsonb;serializer:json"`
	Extra     types.JSONMap          `gorm:"column:extra;type:jsonb;serializer:json"`
	Seq       int64                  `gorm:"column:seq;not null"`
	CreatedAt time.Time              `gorm:"column:created_at;autoCreateTime"`
}
