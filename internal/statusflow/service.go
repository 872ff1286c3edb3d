package statusflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/users"
	"github.com/materialdesk/materialdesk-backend/pkg/auth"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AppendInput carries one status log entry plus the acting identity.
type AppendInput struct {
	ProjectID uuid.UUID
	Actor     auth.Actor
	Column    enums.StatusColumn
	Value     string
	Delivery  *types.DeliveryDetails
	Extra     types.JSONMap
}

// HistoryEntry is one log row joined with the author for audit display.
type HistoryEntry struct {
	Update     models.StatusUpdate
	AuthorName string
	AuthorRole enums.Role
}

// Service is the four-column fulfillment workflow over a project's status log.
type Service interface {
	// Initialize seeds all four columns with the preset values. Preset writes
	// bypass the per-column append rules; they are system rows, not operator
	// transitions.
	Initialize(ctx context.Context, tx *gorm.DB, projectID, authorID uuid.UUID, preset Preset) error
	Append(ctx context.Context, input AppendInput) (*models.StatusUpdate, error)
	Latest(ctx context.Context, projectID uuid.UUID) (map[enums.StatusColumn]*models.StatusUpdate, error)
	History(ctx context.Context, projectID uuid.UUID) ([]HistoryEntry, error)
}

type service struct {
	repo        Repository
	projectRepo projects.Repository
	userRepo    users.Repository
	tx          txRunner
}

// NewService builds the status workflow service.
func NewService(repo Repository, projectRepo projects.Repository, userRepo users.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("status repository required")
	}
	if projectRepo == nil {
		return nil, fmt.Errorf("project repository required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("user repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:        repo,
		projectRepo: projectRepo,
		userRepo:    userRepo,
		tx:          tx,
	}, nil
}

func (s *service) Initialize(ctx context.Context, tx *gorm.DB, projectID, authorID uuid.UUID, preset Preset) error {
	if projectID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if authorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "author id required")
	}

	repo := s.repo.WithTx(tx)
	values := preset.Values()
	for _, column := range enums.AllStatusColumns() {
		update := &models.StatusUpdate{
			ProjectID: projectID,
			AuthorID:  authorID,
			Column:    column,
			Value:     values[column],
		}
		if _, err := repo.Create(ctx, update); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "initialize status column")
		}
	}
	return nil
}

func (s *service) Append(ctx context.Context, input AppendInput) (*models.StatusUpdate, error) {
	if input.ProjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if input.Actor.ID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "actor identity missing")
	}
	if err := ValidateAppend(input.Column, input.Value, input.Delivery); err != nil {
		return nil, err
	}

	var created *models.StatusUpdate
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		projectRepo := s.projectRepo.WithTx(tx)

		project, err := projectRepo.FindByID(ctx, input.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
		}

		if _, err := s.userRepo.WithTx(tx).FindByID(ctx, input.Actor.ID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "author not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load author")
		}

		update := &models.StatusUpdate{
			ProjectID: project.ID,
			AuthorID:  input.Actor.ID,
			Column:    input.Column,
			Value:     input.Value,
			Delivery:  input.Delivery,
			Extra:     input.Extra,
		}
		created, err = repo.Create(ctx, update)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append status update")
		}

		// A terminal CHECK value completes the project in the same transaction.
		if input.Column == enums.StatusColumnCheck && IsCheckTerminal(input.Value) {
			if err := projectRepo.UpdateOverallStatus(ctx, project.ID, enums.ProjectStatusCompleted); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "complete project")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) Latest(ctx context.Context, projectID uuid.UUID) (map[enums.StatusColumn]*models.StatusUpdate, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	updates, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status updates")
	}

	// Entries arrive oldest first; the last write per column wins.
	latest := make(map[enums.StatusColumn]*models.StatusUpdate, 4)
	for i := range updates {
		update := updates[i]
		latest[update.Column] = &update
	}
	return latest, nil
}

func (s *service) History(ctx context.Context, projectID uuid.UUID) ([]HistoryEntry, error) {
	if projectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "project id required")
	}
	if _, err := s.projectRepo.FindByID(ctx, projectID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load project")
	}

	updates, err := s.repo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load status updates")
	}

	authorIDs := make([]uuid.UUID, 0, len(updates))
	seen := map[uuid.UUID]bool{}
	for _, update := range updates {
		if !seen[update.AuthorID] {
			seen[update.AuthorID] = true
			authorIDs = append(authorIDs, update.AuthorID)
		}
	}
	authors, err := s.userRepo.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load authors")
	}

	entries := make([]HistoryEntry, len(updates))
	for i, update := range updates {
		entry := HistoryEntry{Update: update}
		if author, ok := authors[update.AuthorID]; ok {
			entry.AuthorName = author.DisplayName
			entry.AuthorRole = author.Role
		}
		entries[i] = entry
	}
	return entries, nil
}
