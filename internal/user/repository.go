package user

import (
	"context"
	"time"
)

// Repository defines data access for the user registry
type Repository interface {
	// Upsert inserts the user or refreshes known profile fields. joined_at is
	// set on first write and never changed afterwards.
	Upsert(ctx context.Context, profile Profile, at time.Time) (*User, error)
	Get(ctx context.Context, chatID int64) (*User, error)
	FindByFirstName(ctx context.Context, name string) (*User, error)
	List(ctx context.Context) ([]User, error)
	// DisplayName never fails; unknown ids and storage errors yield UnknownUserName
	DisplayName(ctx context.Context, chatID int64) string
	DisplayNames(ctx context.Context, chatIDs []int64) map[int64]string
}
