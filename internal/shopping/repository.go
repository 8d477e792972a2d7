package shopping

import (
	"context"
	"time"
)

// Repository is the Shopping List Store
type Repository interface {
	// Add fails with a ConflictError when an unchecked item with the same
	// case-insensitive text exists. Checked duplicates never block.
	Add(ctx context.Context, text, category string, at time.Time) (*Item, error)
	List(ctx context.Context, filter Filter) ([]Item, error)
	GetByID(ctx context.Context, id uint) (*Item, error)
	Toggle(ctx context.Context, id uint) (*Item, error)
	ClearChecked(ctx context.Context) (int64, error)
	ClearAll(ctx context.Context) (int64, error)
	Count(ctx context.Context) (Counts, error)
}
