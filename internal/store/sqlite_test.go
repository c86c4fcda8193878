package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
)

func openTestRepo(t *testing.T) *SQLiteRepo {
	t.Helper()
	repo, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "planner.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testRecord(date string) *domain.DailyRecord {
	in := domain.PlannerInput{ArrivalHour: 19, ArrivalMinute: 0, HasDinner: true, StudyMinutes: 45}
	events := domain.BuildSchedule(in, domain.PolicySplit)
	return &domain.DailyRecord{
		Date:           date,
		PlannerInput:   in,
		TotalFreeTime:  domain.TotalFreeTime(events),
		Schedule:       events,
		CompletedTasks: []string{"dinner", "study2"},
		Notes:          "良い一日",
	}
}

func TestRecordRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	want := testRecord("2026-08-28")
	if err := repo.UpsertRecord(ctx, want); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := repo.GetRecord(ctx, "2026-08-28")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.PlannerInput != want.PlannerInput {
		t.Fatalf("input changed: %+v != %+v", got.PlannerInput, want.PlannerInput)
	}
	if got.TotalFreeTime != 75 {
		t.Fatalf("want 75 free minutes, got %d", got.TotalFreeTime)
	}
	if len(got.Schedule) != len(want.Schedule) {
		t.Fatalf("schedule length %d != %d", len(got.Schedule), len(want.Schedule))
	}
	for i := range got.Schedule {
		if got.Schedule[i] != want.Schedule[i] {
			t.Fatalf("event %d changed: %+v != %+v", i, got.Schedule[i], want.Schedule[i])
		}
	}
	if len(got.CompletedTasks) != 2 || got.CompletedTasks[0] != "dinner" {
		t.Fatalf("completed tasks changed: %v", got.CompletedTasks)
	}
	if got.Notes != want.Notes {
		t.Fatalf("notes changed: %q", got.Notes)
	}
}

func TestUpsertRecordIsPerDate(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	rec := testRecord("2026-08-28")
	if err := repo.UpsertRecord(ctx, rec); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	rec.Notes = "updated"
	rec.StudyMinutes = 60
	if err := repo.UpsertRecord(ctx, rec); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	list, err := repo.ListRecords(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("upsert must not duplicate the date, got %d rows", len(list))
	}
	if list[0].Notes != "updated" || list[0].StudyMinutes != 60 {
		t.Fatalf("update lost: %+v", list[0])
	}
}

func TestListRecordsOrderAndBounds(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	for _, d := range []string{"2026-08-01", "2026-08-03", "2026-08-02"} {
		if err := repo.UpsertRecord(ctx, testRecord(d)); err != nil {
			t.Fatalf("upsert %s: %v", d, err)
		}
	}

	list, err := repo.ListRecords(ctx, "", "", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 || list[0].Date != "2026-08-03" || list[2].Date != "2026-08-01" {
		t.Fatalf("want date-descending order, got %+v", list)
	}

	bounded, err := repo.ListRecords(ctx, "2026-08-02", "2026-08-03", 0)
	if err != nil {
		t.Fatalf("bounded list: %v", err)
	}
	if len(bounded) != 2 {
		t.Fatalf("want 2 bounded rows, got %d", len(bounded))
	}

	limited, err := repo.ListRecords(ctx, "", "", 1)
	if err != nil {
		t.Fatalf("limited list: %v", err)
	}
	if len(limited) != 1 || limited[0].Date != "2026-08-03" {
		t.Fatalf("limit should keep the newest, got %+v", limited)
	}
}

func TestDeleteRecordAndNotFound(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	if _, err := repo.GetRecord(ctx, "2026-08-28"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := repo.UpsertRecord(ctx, testRecord("2026-08-28")); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.DeleteRecord(ctx, "2026-08-28"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := repo.GetRecord(ctx, "2026-08-28"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("record should be gone, got %v", err)
	}
}

func TestSubscriptionUpsertKeepsID(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	id1, err := repo.UpsertSubscription(ctx, "https://push.example/abc", "p1", "a1")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	id2, err := repo.UpsertSubscription(ctx, "https://push.example/abc", "p2", "a2")
	if err != nil {
		t.Fatalf("re-upsert: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("endpoint re-registration must keep its id: %s != %s", id1, id2)
	}

	sub, err := repo.GetSubscription(ctx, "https://push.example/abc")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if sub.P256dh != "p2" || sub.Auth != "a2" {
		t.Fatalf("keys not updated: %+v", sub)
	}
}

func TestBindingReplaceAndSweepLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	subID, err := repo.UpsertSubscription(ctx, "https://push.example/abc", "p", "a")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	set := func(eventID, clock string) {
		t.Helper()
		err := repo.ScheduleBinding(ctx, subID, domain.Binding{
			EventID: eventID, Label: domain.LabelBath, ScheduledTime: clock,
		})
		if err != nil {
			t.Fatalf("schedule %s: %v", eventID, err)
		}
	}

	set("bath", "20:00")
	set("bath", "20:30") // replaces, never duplicates
	set("dinner", "19:00")

	active, err := repo.ListActiveBindings(ctx, subID)
	if err != nil {
		t.Fatalf("list active: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("want 2 active bindings, got %d", len(active))
	}
	for _, b := range active {
		if b.EventID == "bath" && b.ScheduledTime != "20:30" {
			t.Fatalf("bath binding not replaced: %+v", b)
		}
	}

	due, err := repo.ListDueBindings(ctx, "20:30")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 1 || due[0].Binding.EventID != "bath" {
		t.Fatalf("unexpected due set: %+v", due)
	}
	if due[0].Subscription.Endpoint != "https://push.example/abc" {
		t.Fatalf("due binding lost its subscription: %+v", due[0].Subscription)
	}

	if err := repo.MarkFired(ctx, due[0].Binding.ID); err != nil {
		t.Fatalf("mark fired: %v", err)
	}
	due, err = repo.ListDueBindings(ctx, "20:30")
	if err != nil {
		t.Fatalf("due after fire: %v", err)
	}
	if len(due) != 0 {
		t.Fatal("fired binding matched again")
	}

	// Fired rows older than the cutoff get purged; the fresh one stays
	// until it ages past 24h.
	n, err := repo.PurgeFired(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 0 {
		t.Fatalf("fresh fired binding purged early, n=%d", n)
	}
	n, err = repo.PurgeFired(ctx, time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("purge: %v", err)
	}
	if n != 1 {
		t.Fatalf("want 1 purged binding, got %d", n)
	}
}

func TestDeleteSubscriptionCascades(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	subID, err := repo.UpsertSubscription(ctx, "https://push.example/abc", "p", "a")
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err := repo.ScheduleBinding(ctx, subID, domain.Binding{
		EventID: "bath", Label: domain.LabelBath, ScheduledTime: "20:00",
	}); err != nil {
		t.Fatalf("schedule: %v", err)
	}

	if err := repo.DeleteSubscription(ctx, "https://push.example/abc"); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	due, err := repo.ListDueBindings(ctx, "20:00")
	if err != nil {
		t.Fatalf("due: %v", err)
	}
	if len(due) != 0 {
		t.Fatal("bindings should cascade with their subscription")
	}
}

func TestVAPIDKeysRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := openTestRepo(t)

	if _, err := repo.VAPIDKeys(ctx); !errors.Is(err, ErrNotFound) {
		t.Fatalf("want ErrNotFound before save, got %v", err)
	}
	if err := repo.SaveVAPIDKeys(ctx, domain.VAPIDKeys{Public: "pub", Private: "priv"}); err != nil {
		t.Fatalf("save: %v", err)
	}
	k, err := repo.VAPIDKeys(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if k.Public != "pub" || k.Private != "priv" {
		t.Fatalf("keys changed: %+v", k)
	}
}
