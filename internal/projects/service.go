package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
)

// Kind prefixes are a display convention carried over from the ops tooling.
const (
	auxiliaryProjectPrefix = "auxiliary-material-project"
	finishedProjectPrefix  = "finished-material-project"
)

// Service spawns exactly one tracking project per order.
type Service interface {
	// Spawn creates the project for the order and fails with Conflict when one
	// already exists.
	Spawn(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Project, error)
	// EnsureForOrder returns the existing project or creates one, reporting
	// whether a new project was spawned.
	EnsureForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Project, bool, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Project, error)
	GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Project, error)
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds the project spawner.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	return &service{repo: repo, now: time.Now}, nil
}

func (s *service) Spawn(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Project, error) {
	if order == nil || order.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	repo := s.repo.WithTx(tx)

	_, err := repo.FindByOrder(ctx, order.ID)
	if err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "project already exists for order").
			WithDetails(map[string]any{"order_id": order.ID})
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check project existence")
	}

	project := &models.Project{
		OrderID:       order.ID,
		Name:          s.buildName(order),
		OverallStatus: enums.ProjectStatusActive,
	}
	created, err := repo.Create(ctx, project)
	if err != nil {
		// A concurrent spawn can pass the existence check and lose the insert
		// race on the order_id unique index.
		if pkgerrors.IsUniqueViolation(err) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "project already exists for order").
				WithDetails(map[string]any{"order_id": order.ID})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create project")
	}
	return created, nil
}

func (s *service) EnsureForOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Project, bool, error) {
	if order == nil || order.ID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "order required")
	}

	existing, err := s.repo.WithTx(tx).FindByOrder(ctx, order.ID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check project existence")
	}

	created, err := s.Spawn(ctx, tx, order)
	if err != nil {
		return nil, false, err
	}
	return created, true, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	project, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

func (s *service) GetByOrder(ctx context.Context, orderID uuid.UUID) (*models.Project, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	project, err := s.repo.FindByOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found for order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}
	return project, nil
}

// buildName derives the deterministic project name:
// <kind-prefix>-<ISO-date>-<first-8-of-order-id>.
func (s *service) buildName(order *models.Order) string {
	prefix := auxiliaryProjectPrefix
	if order.Kind == enums.MaterialTypeFinished {
		prefix = finishedProjectPrefix
	}
	shortID := strings.ReplaceAll(order.ID.String(), "-", "")
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	return fmt.Sprintf("%s-%s-%s", prefix, s.now().UTC().Format("2006-01-02"), shortID)
}
