package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/internal/inventory"
	"github.com/materialdesk/materialdesk-backend/internal/materials"
	"github.com/materialdesk/materialdesk-backend/internal/orders"
	"github.com/materialdesk/materialdesk-backend/internal/projects"
	"github.com/materialdesk/materialdesk-backend/internal/statusflow"
	"github.com/materialdesk/materialdesk-backend/internal/suppliers"
	"github.com/materialdesk/materialdesk-backend/internal/users"
	"github.com/materialdesk/materialdesk-backend/pkg/config"
	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

type gormTxRunner struct {
	db *gorm.DB
}

func (r gormTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

// memoryStore is an in-process stand-in for the redis idempotency client.
type memoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: map[string]string{}}
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memoryStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[key]; ok {
		return false, nil
	}
	m.data[key] = fmt.Sprint(value)
	return true, nil
}

func (m *memoryStore) IdempotencyKey(scope, id string) string {
	return "test:idempotency:" + scope + ":" + id
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

type env struct {
	handler   http.Handler
	db        *gorm.DB
	cfg       *config.Config
	store     *memoryStore
	manager   *models.User
	admin     *models.User
	warehouse *models.User
}

func newEnv(t *testing.T) *env {
	t.Helper()
	dsn := "file:routes_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	err = db.AutoMigrate(
		&models.Material{}, &models.Order{}, &models.OrderItem{},
		&models.Project{}, &models.StatusUpdate{}, &models.User{},
	)
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}

	seedUser := func(name string, role enums.Role) *models.User {
		u := &models.User{ID: uuid.New(), DisplayName: name, Role: role}
		if err := db.Create(u).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
		return u
	}

	materialRepo := inventory.NewRepository(db)
	ledger, err := inventory.NewLedger(materialRepo)
	if err != nil {
		t.Fatalf("ledger: %v", err)
	}
	materialsSvc, err := materials.NewService(materialRepo, ledger)
	if err != nil {
		t.Fatalf("materials: %v", err)
	}
	projectRepo := projects.NewRepository(db)
	projectsSvc, err := projects.NewService(projectRepo)
	if err != nil {
		t.Fatalf("projects: %v", err)
	}
	statusRepo := statusflow.NewRepository(db)
	statusSvc, err := statusflow.NewService(statusRepo, projectRepo, users.NewRepository(db), gormTxRunner{db: db})
	if err != nil {
		t.Fatalf("statusflow: %v", err)
	}
	ordersSvc, err := orders.NewService(
		orders.NewRepository(db), materialRepo, ledger,
		projectRepo, projectsSvc, statusRepo, statusSvc,
		gormTxRunner{db: db},
	)
	if err != nil {
		t.Fatalf("orders: %v", err)
	}
	suppliersSvc, err := suppliers.NewService(suppliers.NewRepository(db))
	if err != nil {
		t.Fatalf("suppliers: %v", err)
	}

	cfg := &config.Config{}
	cfg.App.Env = "dev"
	cfg.JWT.Secret = "router-test-secret"
	cfg.JWT.Issuer = "materialdesk-test"

	store := newMemoryStore()
	handler := NewRouter(cfg, nil, Services{
		Materials: materialsSvc,
		Orders:    ordersSvc,
		Projects:  projectsSvc,
		Status:    statusSvc,
		Suppliers: suppliersSvc,
	}, Dependencies{Idempotency: store})

	return &env{
		handler:   handler,
		db:        db,
		cfg:       cfg,
		store:     store,
		manager:   seedUser("Priya Raman", enums.RoleProjectManager),
		admin:     seedUser("Jon Alvarez", enums.RoleAdmin),
		warehouse: seedUser("Dana Wells", enums.RoleWarehouse),
	}
}

func (e *env) token(t *testing.T, user *models.User) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": user.ID.String(),
		"role":    string(user.Role),
		"iss":     e.cfg.JWT.Issuer,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(e.cfg.JWT.Secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func (e *env) do(t *testing.T, method, path string, body any, user *models.User, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(t, user))
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func (e *env) seedMaterial(t *testing.T, price string, qty int) *models.Material {
	t.Helper()
	m := &models.Material{
		ID:       uuid.New(),
		Name:     "steel bracket",
		Category: "fasteners",
		Price:    decimal.RequireFromString(price),
		Quantity: qty,
		Type:     enums.MaterialTypeAuxiliary,
	}
	if err := e.db.Create(m).Error; err != nil {
		t.Fatalf("seed material: %v", err)
	}
	return m
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Data map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Data
}

func TestRouterRejectsMissingToken(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	rec := e.do(t, http.MethodGet, "/api/v1/materials", nil, nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	if rec := e.do(t, http.MethodGet, "/healthz", nil, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz = %d", rec.Code)
	}
	if rec := e.do(t, http.MethodGet, "/metrics", nil, nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("metrics = %d", rec.Code)
	}
}

func TestCreateOrderFlowOverHTTP(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	material := e.seedMaterial(t, "100.50", 50)

	body := map[string]any{
		"kind": "AUXILIARY",
		"items": []map[string]any{
			{"material_id": material.ID.String(), "quantity": 2},
		},
	}
	rec := e.do(t, http.MethodPost, "/api/v1/orders", body, e.manager, map[string]string{
		"Idempotency-Key": "order-create-1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	order, _ := data["order"].(map[string]any)
	if order == nil {
		t.Fatalf("missing order payload: %v", data)
	}
	if order["total_amount"] != "201" {
		t.Fatalf("total_amount = %v", order["total_amount"])
	}
	project, _ := data["project"].(map[string]any)
	if project == nil || project["overall_status"] != "ACTIVE" {
		t.Fatalf("project payload = %v", data["project"])
	}

	// Replaying the same key returns the stored response without a second
	// reservation.
	replay := e.do(t, http.MethodPost, "/api/v1/orders", body, e.manager, map[string]string{
		"Idempotency-Key": "order-create-1",
	})
	if replay.Code != http.StatusCreated {
		t.Fatalf("replay = %d", replay.Code)
	}
	var m models.Material
	if err := e.db.First(&m, "id = ?", material.ID).Error; err != nil {
		t.Fatalf("reload material: %v", err)
	}
	if m.Quantity != 48 {
		t.Fatalf("quantity = %d, want 48 after replay", m.Quantity)
	}

	// Same key with a different body is a hard conflict.
	body["items"] = []map[string]any{{"material_id": material.ID.String(), "quantity": 3}}
	conflict := e.do(t, http.MethodPost, "/api/v1/orders", body, e.manager, map[string]string{
		"Idempotency-Key": "order-create-1",
	})
	if conflict.Code != http.StatusConflict {
		t.Fatalf("conflicting replay = %d", conflict.Code)
	}
}

func TestCreateOrderRequiresManagerRole(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	material := e.seedMaterial(t, "10", 5)
	body := map[string]any{
		"kind":  "AUXILIARY",
		"items": []map[string]any{{"material_id": material.ID.String(), "quantity": 1}},
	}
	rec := e.do(t, http.MethodPost, "/api/v1/orders", body, e.warehouse, map[string]string{
		"Idempotency-Key": "order-create-2",
	})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestStatusAppendOverHTTP(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	material := e.seedMaterial(t, "10", 20)

	createBody := map[string]any{
		"kind":  "AUXILIARY",
		"items": []map[string]any{{"material_id": material.ID.String(), "quantity": 1}},
	}
	created := e.do(t, http.MethodPost, "/api/v1/orders", createBody, e.manager, map[string]string{
		"Idempotency-Key": "order-create-3",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create = %d, body %s", created.Code, created.Body.String())
	}
	project, _ := decodeData(t, created)["project"].(map[string]any)
	projectID, _ := project["id"].(string)
	if projectID == "" {
		t.Fatalf("missing project id")
	}

	// Project managers cannot append.
	appendBody := map[string]any{"status_type": "PICKUP", "status_value": "Picked (A1)"}
	denied := e.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/status", appendBody, e.manager, map[string]string{
		"Idempotency-Key": "append-1",
	})
	if denied.Code != http.StatusForbidden {
		t.Fatalf("manager append = %d, want 403", denied.Code)
	}

	// The warehouse append sends a split primary/secondary and the server joins
	// them into the stored value.
	composedBody := map[string]any{"status_type": "PICKUP", "status_value": "Picked", "status_secondary": "(A1)"}
	accepted := e.do(t, http.MethodPost, "/api/v1/projects/"+projectID+"/status", composedBody, e.warehouse, map[string]string{
		"Idempotency-Key": "append-2",
	})
	if accepted.Code != http.StatusCreated {
		t.Fatalf("warehouse append = %d, body %s", accepted.Code, accepted.Body.String())
	}

	latest := e.do(t, http.MethodGet, "/api/v1/projects/"+projectID+"/status", nil, e.manager, nil)
	if latest.Code != http.StatusOK {
		t.Fatalf("latest = %d", latest.Code)
	}
	pickup, _ := decodeData(t, latest)["PICKUP"].(map[string]any)
	if pickup == nil || pickup["status_value"] != "Picked (A1)" {
		t.Fatalf("PICKUP latest = %v", decodeData(t, latest)["PICKUP"])
	}

	history := e.do(t, http.MethodGet, "/api/v1/projects/"+projectID+"/status/history", nil, e.manager, nil)
	if history.Code != http.StatusOK {
		t.Fatalf("history = %d", history.Code)
	}
	var historyEnvelope struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(history.Body.Bytes(), &historyEnvelope); err != nil {
		t.Fatalf("decode history: %v", err)
	}
	if len(historyEnvelope.Data) != 5 {
		t.Fatalf("history entries = %d, want 4 preset + 1 append", len(historyEnvelope.Data))
	}
}

func TestSupplierSummaryOverHTTP(t *testing.T) {
	t.Parallel()
	e := newEnv(t)
	supplier := "Northside Supply"
	material := &models.Material{
		ID:       uuid.New(),
		Name:     "steel bracket",
		Category: "fasteners",
		Price:    decimal.RequireFromString("10"),
		Quantity: 20,
		Supplier: &supplier,
		Type:     enums.MaterialTypeAuxiliary,
	}
	if err := e.db.Create(material).Error; err != nil {
		t.Fatalf("seed material: %v", err)
	}

	body := map[string]any{
		"kind":  "AUXILIARY",
		"items": []map[string]any{{"material_id": material.ID.String(), "quantity": 3}},
	}
	created := e.do(t, http.MethodPost, "/api/v1/orders", body, e.manager, map[string]string{
		"Idempotency-Key": "order-create-4",
	})
	if created.Code != http.StatusCreated {
		t.Fatalf("create = %d", created.Code)
	}

	rec := e.do(t, http.MethodGet, "/api/v1/suppliers/summary", nil, e.manager, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("summary = %d", rec.Code)
	}
	groups, _ := decodeData(t, rec)["suppliers"].([]any)
	if len(groups) != 1 {
		t.Fatalf("groups = %v", groups)
	}
	first, _ := groups[0].(map[string]any)
	if first["supplier"] != supplier {
		t.Fatalf("supplier = %v", first["supplier"])
	}
}
