package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
)

// Ledger is the single authority over material stock. Reserve and Restore run
// against the caller's transaction so multi-line order mutations stay atomic.
type Ledger interface {
	Reserve(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, qty int) (*models.Material, error)
	Restore(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, qty int) error
	SetQuantity(ctx context.Context, materialID uuid.UUID, qty int) (*models.Material, error)
}

type ledger struct {
	repo Repository
}

// NewLedger builds the inventory ledger on top of the material repository.
func NewLedger(repo Repository) (Ledger, error) {
	if repo == nil {
		return nil, fmt.Errorf("material repository required")
	}
	return &ledger{repo: repo}, nil
}

func (l *ledger) Reserve(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, qty int) (*models.Material, error) {
	if materialID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	if qty <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "reserve quantity must be positive")
	}

	repo := l.repo.WithTx(tx)

	rows, err := repo.DecrementQuantity(ctx, materialID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserve material")
	}
	if rows == 0 {
		material, findErr := repo.FindByID(ctx, materialID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found").
					WithDetails(map[string]any{"material_id": materialID})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, findErr, "load material")
		}
		return nil, pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for material").
			WithDetails(map[string]any{
				"material_id": materialID,
				"requested":   qty,
				"available":   material.Quantity,
			})
	}

	material, err := repo.FindByID(ctx, materialID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload material")
	}
	return material, nil
}

// Restore adds stock back on cancel. A missing material is a hard NotFound;
// the ledger never best-efforts a restore it cannot account for.
func (l *ledger) Restore(ctx context.Context, tx *gorm.DB, materialID uuid.UUID, qty int) error {
	if materialID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	if qty <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "restore quantity must be positive")
	}

	rows, err := l.repo.WithTx(tx).IncrementQuantity(ctx, materialID, qty)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "restore material")
	}
	if rows == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "material not found").
			WithDetails(map[string]any{"material_id": materialID})
	}
	return nil
}

func (l *ledger) SetQuantity(ctx context.Context, materialID uuid.UUID, qty int) (*models.Material, error) {
	if materialID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "material id required")
	}
	if qty < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	rows, err := l.repo.OverwriteQuantity(ctx, materialID, qty)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set material quantity")
	}
	if rows == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "material not found").
			WithDetails(map[string]any{"material_id": materialID})
	}

	material, err := l.repo.FindByID(ctx, materialID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reload material")
	}
	return material, nil
}
