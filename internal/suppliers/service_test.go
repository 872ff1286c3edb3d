package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/materialdesk/materialdesk-backend/pkg/db/models"
	"github.com/materialdesk/materialdesk-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:suppliers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&models.Order{}, &models.OrderItem{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func seedOrder(t *testing.T, db *gorm.DB, status enums.OrderStatus, kind enums.MaterialType, items []models.OrderItem) {
	t.Helper()
	order := &models.Order{
		ID:          uuid.New(),
		OwnerID:     uuid.New(),
		Kind:        kind,
		Status:      status,
		TotalAmount: decimal.Zero,
	}
	for i := range items {
		items[i].ID = uuid.New()
		items[i].OrderID = order.ID
	}
	order.Items = items
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("seed order: %v", err)
	}
}

func strptr(s string) *string { return &s }

func item(supplier *string, qty int, price string) models.OrderItem {
	return models.OrderItem{
		MaterialID: uuid.New(),
		Quantity:   qty,
		UnitPrice:  decimal.RequireFromString(price),
		Supplier:   supplier,
	}
}

func TestSummarizeGroupsBySupplierSnapshot(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	sharedMaterial := uuid.New()
	first := item(strptr("Northside Supply"), 2, "100.50")
	second := item(strptr("Northside Supply"), 3, "10")
	second.MaterialID = sharedMaterial
	third := item(strptr("Northside Supply"), 1, "10")
	third.MaterialID = sharedMaterial

	seedOrder(t, db, enums.OrderStatusConfirmed, enums.MaterialTypeAuxiliary, []models.OrderItem{first, second})
	seedOrder(t, db, enums.OrderStatusPending, enums.MaterialTypeAuxiliary, []models.OrderItem{
		third,
		item(strptr("Harbor Metals"), 5, "2.25"),
		item(nil, 4, "1"),
	})

	svc, err := NewService(NewRepository(db))
	if err != nil {
		t.Fatalf("service: %v", err)
	}
	summaries, err := svc.Summarize(context.Background(), ItemFilter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 3 {
		t.Fatalf("groups = %d, want 3", len(summaries))
	}

	northside := summaries[0]
	if northside.Supplier != "Northside Supply" {
		t.Fatalf("top supplier = %q", northside.Supplier)
	}
	if northside.ItemCount != 3 || northside.TotalQuantity != 6 {
		t.Fatalf("northside items=%d qty=%d", northside.ItemCount, northside.TotalQuantity)
	}
	if !northside.TotalAmount.Equal(decimal.RequireFromString("241")) {
		t.Fatalf("northside amount = %s, want 241.00", northside.TotalAmount)
	}
	if northside.DistinctMaterials != 2 {
		t.Fatalf("northside materials = %d, want 2", northside.DistinctMaterials)
	}

	var unattributed *Summary
	for i := range summaries {
		if summaries[i].Supplier == UnattributedSupplier {
			unattributed = &summaries[i]
		}
	}
	if unattributed == nil || unattributed.TotalQuantity != 4 {
		t.Fatalf("missing unattributed bucket: %+v", summaries)
	}
}

func TestSummarizeSkipsCancelledOrders(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	seedOrder(t, db, enums.OrderStatusCancelled, enums.MaterialTypeAuxiliary, []models.OrderItem{
		item(strptr("Northside Supply"), 10, "9.99"),
	})
	seedOrder(t, db, enums.OrderStatusCompleted, enums.MaterialTypeAuxiliary, []models.OrderItem{
		item(strptr("Northside Supply"), 1, "5"),
	})

	svc, _ := NewService(NewRepository(db))
	summaries, err := svc.Summarize(context.Background(), ItemFilter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("groups = %d, want 1", len(summaries))
	}
	if summaries[0].TotalQuantity != 1 || !summaries[0].TotalAmount.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("cancelled order leaked into summary: %+v", summaries[0])
	}
}

func TestSummarizeFiltersByKind(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)

	seedOrder(t, db, enums.OrderStatusPending, enums.MaterialTypeAuxiliary, []models.OrderItem{
		item(strptr("Northside Supply"), 2, "3"),
	})
	seedOrder(t, db, enums.OrderStatusPending, enums.MaterialTypeFinished, []models.OrderItem{
		item(strptr("Harbor Metals"), 7, "4"),
	})

	svc, _ := NewService(NewRepository(db))
	kind := enums.MaterialTypeFinished
	summaries, err := svc.Summarize(context.Background(), ItemFilter{Kind: &kind})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 1 || summaries[0].Supplier != "Harbor Metals" {
		t.Fatalf("kind filter ignored: %+v", summaries)
	}
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()
	db := newTestDB(t)
	svc, _ := NewService(NewRepository(db))
	summaries, err := svc.Summarize(context.Background(), ItemFilter{})
	if err != nil {
		t.Fatalf("summarize: %v", err)
	}
	if len(summaries) != 0 {
		t.Fatalf("expected empty result, got %+v", summaries)
	}
}
