package calculator

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/railzwaylabs/sitepnl/internal/pnl/domain"
)

type expenseCacheKey struct {
	siteID uuid.UUID
	year   int
}

// ExpenseDetailCache memoises the yearly other-expense detail per site for
// the lifetime of one computation. It must not be shared across requests.
type ExpenseDetailCache struct {
	mu      sync.Mutex
	entries map[expenseCacheKey][]domain.OtherExpenseDetail
}

func NewExpenseDetailCache() *ExpenseDetailCache {
	return &ExpenseDetailCache{entries: make(map[expenseCacheKey][]domain.OtherExpenseDetail)}
}

// Yearly returns the cached detail or loads it. Failed loads are not cached.
func (c *ExpenseDetailCache) Yearly(ctx context.Context, siteID uuid.UUID, year int, load func(context.Context) ([]domain.OtherExpenseDetail, error)) ([]domain.OtherExpenseDetail, error) {
	key := expenseCacheKey{siteID: siteID, year: year}

	c.mu.Lock()
	cached, ok := c.entries[key]
	c.mu.Unlock()
	if ok {
		return cached, nil
	}

	details, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if details == nil {
		details = []domain.OtherExpenseDetail{}
	}

	c.mu.Lock()
	c.entries[key] = details
	c.mu.Unlock()
	return details, nil
}
