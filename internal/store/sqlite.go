package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	// Registers the "sqlite" driver (pure Go).
	_ "modernc.org/sqlite"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

// SQLiteRepo implements Repo using an embedded SQLite database.
type SQLiteRepo struct{ db *sql.DB }

// OpenSQLite opens (or creates) the SQLite database at the given path,
// applies recommended PRAGMAs, runs SQL migrations, and returns a repository.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepo, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Reasonable pooling for SQLite; it's a single-writer engine.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := applyPragmas(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations: %w", err)
	}

	return &SQLiteRepo{db: db}, nil
}

// applyPragmas configures the SQLite connection for durability and concurrency.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the underlying database resources.
func (r *SQLiteRepo) Close() error {
	return r.db.Close()
}

// wrap maps driver errors onto the store taxonomy. Missing rows become
// ErrNotFound; everything else is assumed transient and retryable.
func wrap(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// --- daily records ---

// UpsertRecord inserts or updates the record for its date. One row per
// calendar date; the date's uniqueness is enforced by the primary key.
func (r *SQLiteRepo) UpsertRecord(ctx context.Context, rec *domain.DailyRecord) error {
	if rec == nil {
		return errors.New("nil record")
	}

	scheduleJSON, err := marshalSchedule(rec.Schedule)
	if err != nil {
		return err
	}
	tasksJSON, err := marshalTasks(rec.CompletedTasks)
	if err != nil {
		return err
	}

	now := time.Now().UTC().Unix()
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO daily_records (
			date, arrival_hour, arrival_minute, has_dinner, has_laundry,
			study_minutes, total_free_time, schedule_json, completed_tasks,
			notes, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			arrival_hour    = excluded.arrival_hour,
			arrival_minute  = excluded.arrival_minute,
			has_dinner      = excluded.has_dinner,
			has_laundry     = excluded.has_laundry,
			study_minutes   = excluded.study_minutes,
			total_free_time = excluded.total_free_time,
			schedule_json   = excluded.schedule_json,
			completed_tasks = excluded.completed_tasks,
			notes           = excluded.notes,
			updated_at      = excluded.updated_at`,
		rec.Date, rec.ArrivalHour, rec.ArrivalMinute,
		boolToInt(rec.HasDinner), boolToInt(rec.HasLaundry),
		rec.StudyMinutes, rec.TotalFreeTime, scheduleJSON, tasksJSON,
		rec.Notes, now, now,
	)
	return wrap(err)
}

const recordColumns = `date, arrival_hour, arrival_minute, has_dinner, has_laundry,
	study_minutes, total_free_time, schedule_json, completed_tasks,
	notes, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*domain.DailyRecord, error) {
	var (
		rec          domain.DailyRecord
		dinnerInt    int
		laundryInt   int
		scheduleJSON string
		tasksJSON    string
		createdAt    int64
		updatedAt    int64
	)
	if err := row.Scan(
		&rec.Date, &rec.ArrivalHour, &rec.ArrivalMinute, &dinnerInt, &laundryInt,
		&rec.StudyMinutes, &rec.TotalFreeTime, &scheduleJSON, &tasksJSON,
		&rec.Notes, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	rec.HasDinner = dinnerInt != 0
	rec.HasLaundry = laundryInt != 0
	rec.CreatedAt = time.Unix(createdAt, 0).UTC()
	rec.UpdatedAt = time.Unix(updatedAt, 0).UTC()

	var err error
	if rec.Schedule, err = unmarshalSchedule(scheduleJSON); err != nil {
		return nil, err
	}
	if rec.CompletedTasks, err = unmarshalTasks(tasksJSON); err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetRecord returns the record stored for the given date.
func (r *SQLiteRepo) GetRecord(ctx context.Context, date string) (*domain.DailyRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM daily_records WHERE date = ?`, date)
	rec, err := scanRecord(row)
	if err != nil {
		return nil, wrap(err)
	}
	return rec, nil
}

// ListRecords returns records within the optional date bounds, newest first.
func (r *SQLiteRepo) ListRecords(ctx context.Context, startDate, endDate string, limit int) ([]domain.DailyRecord, error) {
	var (
		conds []string
		args  []any
	)
	if startDate != "" {
		conds = append(conds, "date >= ?")
		args = append(args, startDate)
	}
	if endDate != "" {
		conds = append(conds, "date <= ?")
		args = append(args, endDate)
	}

	q := `SELECT ` + recordColumns + ` FROM daily_records`
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY date DESC"
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var res []domain.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, wrap(err)
		}
		res = append(res, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return res, nil
}

// DeleteRecord removes the record for the given date, if any.
func (r *SQLiteRepo) DeleteRecord(ctx context.Context, date string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM daily_records WHERE date = ?`, date)
	return wrap(err)
}

// --- VAPID keys ---

// VAPIDKeys returns the stored key pair or ErrNotFound.
func (r *SQLiteRepo) VAPIDKeys(ctx context.Context) (*domain.VAPIDKeys, error) {
	var k domain.VAPIDKeys
	err := r.db.QueryRowContext(ctx,
		`SELECT public_key, private_key FROM vapid_keys WHERE id = 1`,
	).Scan(&k.Public, &k.Private)
	if err != nil {
		return nil, wrap(err)
	}
	return &k, nil
}

// SaveVAPIDKeys persists the singleton key pair.
func (r *SQLiteRepo) SaveVAPIDKeys(ctx context.Context, k domain.VAPIDKeys) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vapid_keys (id, public_key, private_key) VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			public_key  = excluded.public_key,
			private_key = excluded.private_key`,
		k.Public, k.Private,
	)
	return wrap(err)
}

// --- subscriptions ---

// UpsertSubscription registers a push endpoint, updating its keys if it is
// already known, and returns the subscription id either way.
func (r *SQLiteRepo) UpsertSubscription(ctx context.Context, endpoint, p256dh, auth string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, endpoint, keys_p256dh, keys_auth, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(endpoint) DO UPDATE SET
			keys_p256dh = excluded.keys_p256dh,
			keys_auth   = excluded.keys_auth`,
		id, endpoint, p256dh, auth, time.Now().UTC().Unix(),
	)
	if err != nil {
		return "", wrap(err)
	}

	// On conflict the original id survives; read it back.
	var existing string
	if err := r.db.QueryRowContext(ctx,
		`SELECT id FROM subscriptions WHERE endpoint = ?`, endpoint,
	).Scan(&existing); err != nil {
		return "", wrap(err)
	}
	return existing, nil
}

// GetSubscription looks a subscription up by endpoint.
func (r *SQLiteRepo) GetSubscription(ctx context.Context, endpoint string) (*domain.Subscription, error) {
	var (
		sub       domain.Subscription
		createdAt int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, endpoint, keys_p256dh, keys_auth, created_at
		FROM subscriptions WHERE endpoint = ?`, endpoint,
	).Scan(&sub.ID, &sub.Endpoint, &sub.P256dh, &sub.Auth, &createdAt)
	if err != nil {
		return nil, wrap(err)
	}
	sub.CreatedAt = time.Unix(createdAt, 0).UTC()
	return &sub, nil
}

// DeleteSubscription removes a subscription by endpoint; its bindings go with
// it via the foreign key cascade.
func (r *SQLiteRepo) DeleteSubscription(ctx context.Context, endpoint string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE endpoint = ?`, endpoint)
	return wrap(err)
}

// DeleteSubscriptionByID removes a subscription the sweep found dead.
func (r *SQLiteRepo) DeleteSubscriptionByID(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM subscriptions WHERE id = ?`, id)
	return wrap(err)
}

// --- reminder bindings ---

// ScheduleBinding sets the reminder for (subscription, event), replacing any
// previous one. The uniqueness constraint makes the replacement atomic.
func (r *SQLiteRepo) ScheduleBinding(ctx context.Context, subscriptionID string, b domain.Binding) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO scheduled_notifications (
			subscription_id, event_id, event_label, scheduled_time, notified, created_at
		) VALUES (?, ?, ?, ?, 0, ?)
		ON CONFLICT(subscription_id, event_id) DO UPDATE SET
			event_label    = excluded.event_label,
			scheduled_time = excluded.scheduled_time,
			notified       = 0,
			created_at     = excluded.created_at`,
		subscriptionID, b.EventID, b.Label, b.ScheduledTime, time.Now().UTC().Unix(),
	)
	return wrap(err)
}

// CancelBinding drops the reminder for (subscription, event), if any.
func (r *SQLiteRepo) CancelBinding(ctx context.Context, subscriptionID, eventID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM scheduled_notifications
		WHERE subscription_id = ? AND event_id = ?`,
		subscriptionID, eventID,
	)
	return wrap(err)
}

// ListActiveBindings returns the subscription's unfired reminders.
func (r *SQLiteRepo) ListActiveBindings(ctx context.Context, subscriptionID string) ([]domain.Binding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, subscription_id, event_id, event_label, scheduled_time, created_at
		FROM scheduled_notifications
		WHERE subscription_id = ? AND notified = 0
		ORDER BY scheduled_time ASC`,
		subscriptionID,
	)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var res []domain.Binding
	for rows.Next() {
		var (
			b         domain.Binding
			createdAt int64
		)
		if err := rows.Scan(&b.ID, &b.SubscriptionID, &b.EventID, &b.Label, &b.ScheduledTime, &createdAt); err != nil {
			return nil, wrap(err)
		}
		b.CreatedAt = time.Unix(createdAt, 0).UTC()
		res = append(res, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return res, nil
}

// ListDueBindings returns every unfired binding scheduled for the given
// "HH:MM" clock, joined with its subscription.
func (r *SQLiteRepo) ListDueBindings(ctx context.Context, clock string) ([]domain.DueBinding, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT n.id, n.subscription_id, n.event_id, n.event_label, n.scheduled_time, n.created_at,
		       s.id, s.endpoint, s.keys_p256dh, s.keys_auth, s.created_at
		FROM scheduled_notifications n
		JOIN subscriptions s ON s.id = n.subscription_id
		WHERE n.scheduled_time = ? AND n.notified = 0`,
		clock,
	)
	if err != nil {
		return nil, wrap(err)
	}
	defer rows.Close()

	var res []domain.DueBinding
	for rows.Next() {
		var (
			d            domain.DueBinding
			bCreated     int64
			subCreatedAt int64
		)
		if err := rows.Scan(
			&d.Binding.ID, &d.Binding.SubscriptionID, &d.Binding.EventID,
			&d.Binding.Label, &d.Binding.ScheduledTime, &bCreated,
			&d.Subscription.ID, &d.Subscription.Endpoint,
			&d.Subscription.P256dh, &d.Subscription.Auth, &subCreatedAt,
		); err != nil {
			return nil, wrap(err)
		}
		d.Binding.CreatedAt = time.Unix(bCreated, 0).UTC()
		d.Subscription.CreatedAt = time.Unix(subCreatedAt, 0).UTC()
		res = append(res, d)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap(err)
	}
	return res, nil
}

// MarkFired flags a binding as delivered so the sweep never resends it.
func (r *SQLiteRepo) MarkFired(ctx context.Context, bindingID int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE scheduled_notifications SET notified = 1 WHERE id = ?`,
		bindingID,
	)
	return wrap(err)
}

// PurgeFired deletes fired bindings created before the cutoff.
func (r *SQLiteRepo) PurgeFired(ctx context.Context, olderThan time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM scheduled_notifications
		WHERE notified = 1 AND created_at < ?`,
		olderThan.UTC().Unix(),
	)
	if err != nil {
		return 0, wrap(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
