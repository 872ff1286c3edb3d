package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// User is a caller identity. Authentication lives outside this service; the
// row exists for ownership checks and status history author display.
type User struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;primaryKey"`
	DisplayName string     `gorm:"column:display_name;not null"`
	Role        enums.Role `gorm:"column:role;type:text;not null"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
}
