package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// Order is a procurement order for one material class. TotalAmount is the sum
// of line item quantity times unit price snapshot, fixed at creation time.
type Order struct {
	ID          uuid.UUID          `gorm:"column:id;type:uuid;primaryKey"`
	OwnerID     uuid.UUID          `gorm:"column:owner_id;type:uuid;not null"`
	Name        *string            `gorm:"column:name"`
	Kind        enums.MaterialType `gorm:"column:kind;type:text;not null"`
	Status      enums.OrderStatus  `gorm:"column:status;type:text;not null;default:'PENDING'"`
	TotalAmount decimal.Decimal    `gorm:"column:total_amount;type:numeric(16,4);not null"`
	Items       []OrderItem        `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}

// OrderItem is one ordered line with price and supplier snapshots taken from
// the material at creation time.
type OrderItem struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	OrderID    uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	MaterialID uuid.UUID       `gorm:"column:material_id;type:uuid;not null"`
	Quantity   int             `gorm:"column:quantity;not null"`
	UnitPrice  decimal.Decimal `gorm:"column:unit_price;type:numeric(14,4);not null"`
	Supplier   *string         `gorm:"column:supplier"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
