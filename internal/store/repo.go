package store

import (
	"context"
	"errors"
	"time"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

var (
	// ErrNotFound marks a missing record, subscription or VAPID key row.
	ErrNotFound = errors.New("not found")
	// ErrTransient marks a server-side storage failure worth retrying.
	ErrTransient = errors.New("transient store error")
)

// RecordRepo defines storage for daily planner records, keyed by date.
type RecordRepo interface {
	UpsertRecord(ctx context.Context, r *domain.DailyRecord) error
	GetRecord(ctx context.Context, date string) (*domain.DailyRecord, error)
	// ListRecords returns records ordered by date descending. Empty bounds
	// are open; limit <= 0 means no limit.
	ListRecords(ctx context.Context, startDate, endDate string, limit int) ([]domain.DailyRecord, error)
	DeleteRecord(ctx context.Context, date string) error
}

// PushRepo defines storage for push subscriptions, reminder bindings and the
// server's VAPID key pair.
type PushRepo interface {
	VAPIDKeys(ctx context.Context) (*domain.VAPIDKeys, error)
	SaveVAPIDKeys(ctx context.Context, k domain.VAPIDKeys) error

	UpsertSubscription(ctx context.Context, endpoint, p256dh, auth string) (string, error)
	GetSubscription(ctx context.Context, endpoint string) (*domain.Subscription, error)
	DeleteSubscription(ctx context.Context, endpoint string) error
	DeleteSubscriptionByID(ctx context.Context, id string) error

	// ScheduleBinding replaces any previous binding for the same
	// (subscription, event id) pair.
	ScheduleBinding(ctx context.Context, subscriptionID string, b domain.Binding) error
	CancelBinding(ctx context.Context, subscriptionID, eventID string) error
	ListActiveBindings(ctx context.Context, subscriptionID string) ([]domain.Binding, error)

	// ListDueBindings returns unfired bindings whose scheduled time equals
	// the given "HH:MM" clock, joined with their subscriptions.
	ListDueBindings(ctx context.Context, clock string) ([]domain.DueBinding, error)
	MarkFired(ctx context.Context, bindingID int64) error
	PurgeFired(ctx context.Context, olderThan time.Time) (int64, error)
}

// Repo is the full storage surface backed by one database.
type Repo interface {
	RecordRepo
	PushRepo
	Close() error
}
