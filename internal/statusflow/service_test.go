package statusflow

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/users"
	"github.com/materialdesk/materialdesk-backend/pkg/auth"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
	"github.com/materialdesk/materialdesk-backend/pkg/types"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

type fixture struct {
	svc       Service
	db        *gorm.DB
	project   *models.Project
	warehouse auth.Actor
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := "file:statusflow_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Project{}, &models.StatusUpdate{}, &models.User{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	warehouseUser := &models.User{ID: uuid.New(), DisplayName: "Dana Wells", Role: enums.RoleWarehouse}
	if err := db.Create(warehouseUser).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}

	project := &models.Project{
		ID:            uuid.New(),
		OrderID:       uuid.New(),
		Name:          "auxiliary-material-project-2026-03-14-abcd1234",
		OverallStatus: enums.ProjectStatusActive,
	}
	if err := db.Create(project).Error; err != nil {
		t.Fatalf("seed project: %v", err)
	}

	svc, err := NewService(
		NewRepository(db),
		projects.NewRepository(db),
		users.NewRepository(db),
		gormTxRunner{db: db},
	)
	if err != nil {
		t.Fatalf("service: %v", err)
	}

	return &fixture{
		svc:       svc,
		db:        db,
		project:   project,
		warehouse: auth.Actor{ID: warehouseUser.ID, Role: enums.RoleWarehouse},
	}
}

func TestInitializeOnCreatePreset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Initialize(ctx, nil, f.project.ID, f.warehouse.ID, PresetOnCreate); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	latest, err := f.svc.Latest(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if len(latest) != 4 {
		t.Fatalf("expected 4 columns, got %d", len(latest))
	}
	if latest[enums.StatusColumnOrder].Value != "PENDING" {
		t.Fatalf("ORDER column should start PENDING, got %q", latest[enums.StatusColumnOrder].Value)
	}
	for _, column := range []enums.StatusColumn{enums.StatusColumnPickup, enums.StatusColumnDelivery, enums.StatusColumnCheck} {
		if latest[column].Value != "" {
			t.Fatalf("%s column should start empty, got %q", column, latest[column].Value)
		}
	}

	history, err := f.svc.History(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(history))
	}
}

func TestInitializeOnConfirmPreset(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if err := f.svc.Initialize(ctx, nil, f.project.ID, f.warehouse.ID, PresetOnConfirm); err != nil {
		t.Fatalf("initialize: %v", err)
	}

	latest, err := f.svc.Latest(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	for _, column := range enums.AllStatusColumns() {
		if latest[column].Value != "PENDING" {
			t.Fatalf("%s column should start PENDING, got %q", column, latest[column].Value)
		}
	}
}

func TestAppendPickupValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnPickup,
		Value:     "Picked (WH-3)",
	}); err != nil {
		t.Fatalf("valid pickup append failed: %v", err)
	}

	_, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnPickup,
		Value:     "InvalidStatus",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnPickup,
		Value:     "",
	}); !pkgerrors.Is(err, pkgerrors.CodeValidation) {
		t.Fatalf("empty pickup value should be rejected, got %v", err)
	}

	history, err := f.svc.History(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("rejected append must not write, got %d entries", len(history))
	}
}

func TestAppendDeliveredRequiresPayload(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnDelivery,
		Value:     "Delivered",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for missing payload, got %v", err)
	}

	created, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnDelivery,
		Value:     "Delivered",
		Delivery: &types.DeliveryDetails{
			Time:        "2026-03-14T10:00:00Z",
			Address:     "12 Depot Rd",
			PO:          "PO-1881",
			DeliveredBy: "J. Ramos",
		},
	})
	if err != nil {
		t.Fatalf("complete delivered append failed: %v", err)
	}
	if created.Delivery == nil || created.Delivery.PO != "PO-1881" {
		t.Fatalf("delivery payload not persisted: %+v", created.Delivery)
	}
}

func TestCheckTerminalCompletesProject(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnCheck,
		Value:     "(C.B)",
	}); err != nil {
		t.Fatalf("check append failed: %v", err)
	}

	var project models.Project
	if err := f.db.First(&project, "id = ?", f.project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if project.OverallStatus != enums.ProjectStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", project.OverallStatus)
	}
}

func TestAppendClearingCheckDoesNotComplete(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     f.warehouse,
		Column:    enums.StatusColumnCheck,
		Value:     "",
	}); err != nil {
		t.Fatalf("clear append failed: %v", err)
	}

	var project models.Project
	if err := f.db.First(&project, "id = ?", f.project.ID).Error; err != nil {
		t.Fatalf("reload project: %v", err)
	}
	if project.OverallStatus != enums.ProjectStatusActive {
		t.Fatalf("clearing CHECK must not complete the project, got %s", project.OverallStatus)
	}
}

func TestLatestLastWriteWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	for _, value := range []string{"Ordered", "Ordered - supplier confirmed", "Ordered - in transit"} {
		if _, err := f.svc.Append(ctx, AppendInput{
			ProjectID: f.project.ID,
			Actor:     f.warehouse,
			Column:    enums.StatusColumnOrder,
			Value:     value,
		}); err != nil {
			t.Fatalf("append %q: %v", value, err)
		}
	}

	latest, err := f.svc.Latest(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest[enums.StatusColumnOrder].Value != "Ordered - in transit" {
		t.Fatalf("expected last write, got %q", latest[enums.StatusColumnOrder].Value)
	}

	history, err := f.svc.History(ctx, f.project.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 3 {
		t.Fatalf("expected full log of 3, got %d", len(history))
	}
	if history[0].Update.Value != "Ordered" {
		t.Fatalf("history should be oldest first, got %q", history[0].Update.Value)
	}
	if history[0].AuthorName != "Dana Wells" || history[0].AuthorRole != enums.RoleWarehouse {
		t.Fatalf("history author join missing: %+v", history[0])
	}
}

func TestAppendUnknownProjectOrAuthor(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Append(ctx, AppendInput{
		ProjectID: uuid.New(),
		Actor:     f.warehouse,
		Column:    enums.StatusColumnOrder,
		Value:     "Ordered",
	})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown project, got %v", err)
	}

	_, err = f.svc.Append(ctx, AppendInput{
		ProjectID: f.project.ID,
		Actor:     auth.Actor{ID: uuid.New(), Role: enums.RoleWarehouse},
		Column:    enums.StatusColumnOrder,
		Value:     "Ordered",
	})
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for unknown author, got %v", err)
	}
}
