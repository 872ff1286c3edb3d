package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// Project tracks fulfillment for exactly one order. The unique index on
// OrderID enforces the 1:1 constraint at the store level as well.
type Project struct {
	ID            uuid.UUID           `gorm:"column:id;type:uuid;primaryKey"`
	OrderID       uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex"`
	Name          string              `gorm:"column:name;not null"`
	OverallStatus enums.ProjectStatus `gorm:"column:overall_status;type:text;not null;default:'ACTIVE'"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
