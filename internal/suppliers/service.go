package suppliers

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	pkgerrors "github.com/materialdesk/materialdesk-backend/pkg/errors"
)

// UnattributedSupplier buckets line items whose material carried no supplier
// at snapshot time.
const UnattributedSupplier = "unattributed"

// Summary is the per-supplier rollup over non-cancelled order items.
type Summary struct {
	Supplier          string          `json:"supplier"`
	ItemCount         int             `json:"item_count"`
	TotalQuantity     int             `json:"total_quantity"`
	TotalAmount       decimal.Decimal `json:"total_amount"`
	DistinctMaterials int             `json:"distinct_materials"`
}

// Service exposes read-only supplier analytics.
type Service interface {
	Summarize(ctx context.Context, filter ItemFilter) ([]Summary, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("supplier repository required")
	}
	return &service{repo: repo}, nil
}

// Summarize groups line items by their supplier snapshot. Amounts use the
// item's unit price snapshot, so later material price edits do not shift
// historical totals. Results are ordered by total amount descending, then
// supplier name for a stable tie order.
func (s *service) Summarize(ctx context.Context, filter ItemFilter) ([]Summary, error) {
	items, err := s.repo.ListActiveItems(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list order items")
	}

	type bucket struct {
		summary   Summary
		materials map[uuid.UUID]struct{}
	}
	buckets := make(map[string]*bucket)
	for _, item := range items {
		name := UnattributedSupplier
		if item.Supplier != nil && *item.Supplier != "" {
			name = *item.Supplier
		}
		b, ok := buckets[name]
		if !ok {
			b = &bucket{
				summary:   Summary{Supplier: name, TotalAmount: decimal.Zero},
				materials: make(map[uuid.UUID]struct{}),
			}
			buckets[name] = b
		}
		b.summary.ItemCount++
		b.summary.TotalQuantity += item.Quantity
		b.summary.TotalAmount = b.summary.TotalAmount.
			Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		b.materials[item.MaterialID] = struct{}{}
	}

	summaries := make([]Summary, 0, len(buckets))
	for _, b := range buckets {
		b.summary.DistinctMaterials = len(b.materials)
		summaries = append(summaries, b.summary)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].TotalAmount.Equal(summaries[j].TotalAmount) {
			return summaries[i].TotalAmount.GreaterThan(summaries[j].TotalAmount)
		}
		return summaries[i].Supplier < summaries[j].Supplier
	})
	return summaries, nil
}
