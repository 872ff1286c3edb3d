package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// Material is a stocked procurement item. Quantity is only mutated through the
// inventory ledger; it never goes negative.
type Material struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	Name      string             `gorm:"column:name;not null"`
	Category  string             `gorm:"column:category;not null"`
	Price     decimal.Decimal    `gorm:"column:price;type:numeric(14,4);not null"`
	Quantity  int                `gorm:"column:quantity;not null;default:0"`
	Supplier  *string            `gorm:"column:supplier"`
	Type      enums.MaterialType `gorm:"column:type;type:text;not null"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
