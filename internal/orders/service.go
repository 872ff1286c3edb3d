package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/inventory"
	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/statusflow"
	"github.com/materialdesk/materialdesk-backend/pkg/auth"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/pagination"
)

const maxOrderNameLength = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// statusInitializer seeds workflow columns; satisfied by statusflow.Service.
type statusInitializer interface {
	Initialize(ctx context.Context, tx *gorm.DB, projectID, authorID uuid.UUID, preset statusflow.Preset) error
}

// Service drives the order lifecycle. Creation reserves stock, spawns the
// tracking project and seeds its workflow inside one transaction; cancel
// restores stock; delete removes everything and deliberately does not.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Confirm(ctx context.Context, orderID uuid.UUID, actor auth.Actor) (*ConfirmResult, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actor auth.Actor) (*models.Order, error)
	Cancel(ctx context.Context, orderID uuid.UUID, actor auth.Actor) (*models.Order, error)
	Delete(ctx context.Context, orderID uuid.UUID, actor auth.Actor) error
	Rename(ctx context.Context, orderID uuid.UUID, name string, actor auth.Actor) (*models.Order, error)
	Get(ctx context.Context, orderID uuid.UUID, actor auth.Actor) (*models.Order, error)
	List(ctx context.Context, params pagination.Params, filter OrderFilter, actor auth.Actor) ([]models.Order, int64, error)
}

type service struct {
	repo         Repository
	materialRepo inventory.Repository
	ledger       inventory.Ledger
	projectRepo  projects.Repository
	spawner      projects.Service
	statusRepo   statusflow.Repository
	statusInit   statusInitializer
	tx           txRunner
}

// NewService wires the order lifecycle dependencies.
func NewService(
	repo Repository,
	materialRepo inventory.Repository,
	ledger inventory.Ledger,
	projectRepo projects.Repository,
	spawner projects.Service,
	statusRepo statusflow.Repository,
	statusInit statusInitializer,
	tx txRunner,
) (Service, error) {
	if repo == nil || materialRepo == nil || ledger == nil || projectRepo == nil ||
		spawner == nil || statusRepo == nil || statusInit == nil || tx == nil {
		return nil, fmt.Errorf("order service dependencies required")
	}
	return &service{
		repo:         repo,
		materialRepo: materialRepo,
		ledger:       ledger,
		projectRepo:  projectRepo,
		spawner:      spawner,
		statusRepo:   statusRepo,
		statusInit:   statusInit,
		tx:           tx,
	}, nil
}

// Create validates every line, reserves stock, persists the order and spawns
// its project in a single transaction. Any failing line aborts the whole order
// and releases all prior reservations via rollback.
func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if !input.Actor.Role.CanCreateOrders() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot create orders")
	}
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	var result CreateOrderResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		materialRepo := s.materialRepo.WithTx(tx)

		order := &models.Order{
			ID:      uuid.New(),
			OwnerID: input.Actor.ID,
			Name:    input.Name,
			Kind:    input.Kind,
			Status:  enums.OrderStatusPending,
		}

		total := decimal.Zero
		for _, line := range input.Items {
			material, err := materialRepo.FindByID(ctx, line.MaterialID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "material not found").
						WithDetails(map[string]any{"material_id": line.MaterialID})
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load material")
			}
			if material.Type != input.Kind {
				return pkgerrors.New(pkgerrors.CodeWrongMaterialType, "material type does not match order kind").
					WithDetails(map[string]any{
						"material_id":   material.ID,
						"material_type": material.Type,
						"order_kind":    input.Kind,
					})
			}
			if _, err := s.ledger.Reserve(ctx, tx, material.ID, line.Quantity); err != nil {
				return err
			}

			order.Items = append(order.Items, models.OrderItem{
				ID:         uuid.New(),
				OrderID:    order.ID,
				MaterialID: material.ID,
				Quantity:   line.Quantity,
				UnitPrice:  material.Price,
				Supplier:   material.Supplier,
			})
			total = total.Add(material.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}
		order.TotalAmount = total

		created, err := s.repo.WithTx(tx).Create(ctx, order)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		result.Order = created

		project, err := s.spawner.Spawn(ctx, tx, created)
		if err != nil {
			return err
		}
		result.Project = project

		return s.statusInit.Initialize(ctx, tx, project.ID, input.Actor.ID, statusflow.PresetOnCreate)
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Confirm moves a PENDING order to CONFIRMED and makes sure its project and
// workflow columns exist. The project path is idempotent so a confirm after an
// out-of-band project creation still succeeds.
func (s *service) Confirm(ctx context.Context, orderID uuid.UUID, actor auth.Actor) (*ConfirmResult, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != actor.ID && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the order owner can confirm")
	}
	if order.Status != enums.OrderStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is not pending").
			WithDetails(map[string]any{"status": order.Status})
	}

	var result ConfirmResult
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, enums.OrderStatusConfirmed); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm order")
		}
		project, created, err := s.spawner.EnsureForOrder(ctx, tx, order)
		if err != nil {
			return err
		}
		result.Project = project
		result.ProjectCreated = created
		if created {
			if err := s.statusInit.Initialize(ctx, tx, project.ID, actor.ID, statusflow.PresetOnConfirm); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusConfirmed
	result.Order = order
	return &result, nil
}

// UpdateStatus is the warehouse-side progression path. It accepts any valid
// status value; lifecycle guards beyond parsing live in Confirm and Cancel.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, status string, actor auth.Actor) (*models.Order, error) {
	if !actor.Role.CanManageWarehouse() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "role cannot update order status")
	}
	parsed, err := enums.ParseOrderStatus(status)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid order status").
			WithDetails(map[string]any{"status": status})
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is in a terminal status").
			WithDetails(map[string]any{"status": order.Status})
	}
	if err := s.repo.UpdateStatus(ctx, order.ID, parsed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	order.Status = parsed
	return order, nil
}

// Cancel restores every reserved line and marks the tracking project
// cancelled. Only PENDING and CONFIRMED orders can be cancelled.
func (s *service) Cancel(ctx context.Context, orderID uuid.UUID, actor auth.Actor) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != actor.ID && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the order owner can cancel")
	}
	if !order.Status.CanCancel() {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order cannot be cancelled from its current status").
			WithDetails(map[string]any{"status": order.Status})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		for _, item := range order.Items {
			if err := s.ledger.Restore(ctx, tx, item.MaterialID, item.Quantity); err != nil {
				return err
			}
		}
		if err := s.repo.WithTx(tx).UpdateStatus(ctx, order.ID, enums.OrderStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel order")
		}
		projectRepo := s.projectRepo.WithTx(tx)
		project, err := projectRepo.FindByOrder(ctx, order.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		if err := projectRepo.UpdateOverallStatus(ctx, project.ID, enums.ProjectStatusCancelled); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel project")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	order.Status = enums.OrderStatusCancelled
	return order, nil
}

// Delete removes the order, its items, its project and the project's workflow
// rows. Reserved stock is not restored; cancel first when stock should come
// back.
func (s *service) Delete(ctx context.Context, orderID uuid.UUID, actor auth.Actor) error {
	if actor.Role != enums.RoleAdmin {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only admins can delete orders")
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		project, err := s.projectRepo.WithTx(tx).FindByOrder(ctx, order.ID)
		if err == nil {
			if err := s.statusRepo.WithTx(tx).DeleteByProject(ctx, project.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete status updates")
			}
			if err := s.projectRepo.WithTx(tx).DeleteByOrder(ctx, order.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete project")
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}
		if err := s.repo.WithTx(tx).Delete(ctx, order.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
		}
		return nil
	})
}

func (s *service) Rename(ctx context.Context, orderID uuid.UUID, name string, actor auth.Actor) (*models.Order, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order name must not be empty")
	}
	if len(trimmed) > maxOrderNameLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order name too long").
			WithDetails(map[string]any{"max_length": maxOrderNameLength})
	}
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != actor.ID && actor.Role != enums.RoleAdmin {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the order owner can rename")
	}
	if err := s.repo.UpdateName(ctx, order.ID, trimmed); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "rename order")
	}
	order.Name = &trimmed
	return order, nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID, actor auth.Actor) (*models.Order, error) {
	order, err := s.load(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.OwnerID != actor.ID && !actor.Role.CanManageWarehouse() {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order belongs to another user")
	}
	return order, nil
}

// List scopes project managers to their own orders; warehouse and admin roles
// see everything.
func (s *service) List(ctx context.Context, params pagination.Params, filter OrderFilter, actor auth.Actor) ([]models.Order, int64, error) {
	if !actor.Role.CanManageWarehouse() {
		filter.OwnerID = &actor.ID
	}
	rows, total, err := s.repo.List(ctx, params, filter)
	if err != nil {
		return nil, 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	return rows, total, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func validateCreateInput(input CreateOrderInput) error {
	if !input.Kind.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid material kind")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		if trimmed == "" || len(trimmed) > maxOrderNameLength {
			return pkgerrors.New(pkgerrors.CodeValidation, "order name must be 1 to 100 characters")
		}
	}
	seen := make(map[uuid.UUID]struct{}, len(input.Items))
	for _, line := range input.Items {
		if line.MaterialID == uuid.Nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item material id required")
		}
		if line.Quantity <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive").
				WithDetails(map[string]any{"material_id": line.MaterialID})
		}
		if _, dup := seen[line.MaterialID]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate material in order").
				WithDetails(map[string]any{"material_id": line.MaterialID})
		}
		seen[line.MaterialID] = struct{}{}
	}
	return nil
}
