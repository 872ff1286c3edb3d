package materials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/inventory"
	"github.com/materialdesk/materialdesk-backend/pkg/auth"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/pagination"
)

// maxPriceScale is the largest number of decimal places a price may carry.
const maxPriceScale = 4

// CreateMaterialInput carries a new material plus the acting identity.
type CreateMaterialInput struct {
	Name     string
	Category string
	Price    decimal.Decimal
	Quantity int
	Supplier *string
	Type     enums.MaterialType
	Actor    auth.Actor
}

// SetQuantityInput is the direct stock overwrite used by warehouse admins.
type SetQuantityInput struct {
	MaterialID uuid.UUID
	Quantity   int
	Actor      auth.Actor
}

// Service exposes material intake and read operations. Stock quantity is
// owned by the inventory ledger; this service only routes overwrites to it.
type Service interface {
	Create(ctx context.Context, input CreateMaterialInput) (*models.Material, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Material, error)
	List(ctx context.Context, params pagination.Params, filter inventory.MaterialFilter) ([]models.Material, int64, error)
	SetQuantity(ctx context.Context, input SetQuantityInput) (*models.Material, error)
}

type service struct {
	repo   inventory.Repository
	ledger inventory.Ledger
}

// NewService builds the material service.
func NewService(repo inventory.Repository, ledger inventory.Ledger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("material repository required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("inventory ledger required")
	}
	return &service{repo: repo, ledger: ledger}, nil
}

func (s *service) Create(ctx context.Context, input CreateMaterialInput) (*models.Material, error) {
	if input.Actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only admins may register materials")
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material name required")
	}
	if !input.Type.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown material type").
			WithDetails(map[string]any{"type": string(input.Type)})
	}
	if input.Price.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be positive")
	}
	if input.Price.Exponent() < -maxPriceScale {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price precision exceeds 4 decimal places")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	material := &models.Material{
		Name:     strings.TrimSpace(input.Name),
		Category: strings.TrimSpace(input.Category),
		Price:    input.Price,
		Quantity: input.Quantity,
		Supplier: input.Supplier,
		Type:     input.Type,
	}
	created, err := s.repo.Create(ctx, material)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create material")
	}
	return created, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Material, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	material, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
	}
	return material, nil
}

func (s *service) List(ctx context.Context, params pagination.Params, filter inventory.MaterialFilter) ([]models.Material, int64, error) {
	materials, total, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list materials")
	}
	return materials, total, nil
}

func (s *service) SetQuantity(ctx context.Context, input SetQuantityInput) (*models.Material, error) {
	if !input.Actor.Role.CanManageWarehouse() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "warehouse role required")
	}
	return s.ledger.SetQuantity(ctx, input.MaterialID, input.Quantity)
}
