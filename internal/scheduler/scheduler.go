package scheduler

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
	"github.com/soudousya-lab/weekday-planner/internal/push"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

// Sender is the minimal delivery interface the sweep needs.
// push.Service implements it.
type Sender interface {
	Send(ctx context.Context, sub domain.Subscription, p push.Payload) error
}

// retention is how long fired reminders are kept before the sweep purges them.
const retention = 24 * time.Hour

// Sweeper periodically matches reminder bindings against the wall clock and
// dispatches push notifications for the ones that are due.
type Sweeper struct {
	repo     store.PushRepo
	sender   Sender
	log      *zap.Logger
	interval time.Duration
	now      func() time.Time
}

// New creates a Sweeper. The reference cadence is once per minute: bindings
// match on exact "HH:MM" equality, so a coarser interval would drop minutes.
func New(repo store.PushRepo, sender Sender, log *zap.Logger, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		repo:     repo,
		sender:   sender,
		log:      log,
		interval: interval,
		now:      time.Now,
	}
}

// Run loops until ctx is canceled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("sweeper stopping")
			return
		case <-ticker.C:
			s.Tick(ctx)
		}
	}
}

// Tick performs one sweep cycle: match the current minute, send, mark fired,
// purge old fired rows. A binding whose delivery fails stays unfired; since
// matching is exact-minute it simply lapses rather than being retried.
func (s *Sweeper) Tick(ctx context.Context) {
	now := s.now()
	clock := domain.ClockPadded(now.Hour()*60 + now.Minute())

	due, err := s.repo.ListDueBindings(ctx, clock)
	if err != nil {
		s.log.Error("list due bindings failed", zap.Error(err))
		return
	}

	for _, d := range due {
		payload := push.Payload{
			Title: "Weekday Planner",
			Body:  d.Binding.Label + "の時間です",
			Icon:  "/icon.svg",
			Badge: "/icon.svg",
			Tag:   d.Binding.EventID,
			Data:  map[string]string{"eventId": d.Binding.EventID},
		}

		if err := s.sender.Send(ctx, d.Subscription, payload); err != nil {
			if errors.Is(err, push.ErrGone) {
				s.log.Info("removing dead subscription",
					zap.String("endpoint", d.Subscription.Endpoint))
				if err := s.repo.DeleteSubscriptionByID(ctx, d.Subscription.ID); err != nil {
					s.log.Error("delete dead subscription failed", zap.Error(err))
				}
				continue
			}
			s.log.Error("push send failed",
				zap.Error(err),
				zap.String("event", d.Binding.EventID))
			continue
		}

		if err := s.repo.MarkFired(ctx, d.Binding.ID); err != nil {
			s.log.Error("mark fired failed",
				zap.Error(err),
				zap.Int64("binding", d.Binding.ID))
			continue
		}
		s.log.Info("reminder sent",
			zap.String("event", d.Binding.EventID),
			zap.String("at", clock))
	}

	if _, err := s.repo.PurgeFired(ctx, now.Add(-retention)); err != nil {
		s.log.Error("purge fired bindings failed", zap.Error(err))
	}
}
