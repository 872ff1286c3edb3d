package orders

import (
	"github.com/google/uuid"

	"github.com/materialdesk/materialdesk-backend/pkg/auth"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

// LineItemInput is one requested material line.
type LineItemInput struct {
	MaterialID uuid.UUID
	Quantity   int
}

// CreateOrderInput carries a new order request. Kind doubles as the material
// eligibility filter: every line's material must match it.
type CreateOrderInput struct {
	Actor auth.Actor
	Name  *string
	Kind  enums.MaterialType
	Items []LineItemInput
}

// CreateOrderResult returns the persisted order with its tracking project.
type CreateOrderResult struct {
	Order   *models.Order
	Project *models.Project
}

// ConfirmResult reports whether the idempotent project-creation path ran.
type ConfirmResult struct {
	Order          *models.Order
	Project        *models.Project
	ProjectCreated bool
}

// OrderFilter narrows order list queries.
type OrderFilter struct {
	OwnerID *uuid.UUID
	Status  *enums.OrderStatus
	Kind    *enums.MaterialType
}
