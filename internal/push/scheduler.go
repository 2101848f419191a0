package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/expiry"
	"github.com/ecopantry/ecopantry/internal/metrics"
	"github.com/ecopantry/ecopantry/internal/model"
)

// notifiedRetention is how long reminder records are kept for dedup.
const notifiedRetention = 7

type Sender interface {
	Send(ctx context.Context, sub model.PushSubscription, payload Payload) error
}

// SubscriptionStore is the slice of the push store the scheduler needs.
type SubscriptionStore interface {
	ListUserIDs(ctx context.Context) ([]string, error)
	ListByUser(ctx context.Context, c auth.Caller) ([]model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
	WasNotified(ctx context.Context, c auth.Caller, foodItemID string, on model.Date) (bool, error)
	MarkNotified(ctx context.Context, c auth.Caller, foodItemID string, on model.Date) error
	CleanupNotified(ctx context.Context, before model.Date) error
}

type ItemLister interface {
	List(ctx context.Context, c auth.Caller, f model.FoodItemFilter) ([]model.FoodItem, error)
}

// Scheduler periodically reminds owners, once per item per day, about food
// expiring within the dashboard horizon. Items already past their date are
// left to the dashboard.
type Scheduler struct {
	mu       sync.RWMutex
	sender   Sender
	subs     SubscriptionStore
	items    ItemLister
	metrics  *metrics.Metrics
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewScheduler(sender Sender, subs SubscriptionStore, items ItemLister, interval time.Duration, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sender:   sender,
		subs:     subs,
		items:    items,
		metrics:  m,
		interval: interval,
		now:      time.Now,
		logger:   logger,
	}
}

// Start runs one pass immediately and then one per interval until ctx is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.Tick(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Tick(ctx)
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

// Tick runs a single reminder pass over every owner with a subscription.
func (s *Scheduler) Tick(ctx context.Context) {
	userIDs, err := s.subs.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("list push users", "error", err)
		return
	}

	now := s.now()
	for _, id := range userIDs {
		if ctx.Err() != nil {
			return
		}
		c := auth.Caller{UserID: id, Source: auth.SourceScheduler}
		if err := s.remind(ctx, c, now); err != nil {
			s.logger.Error("expiry reminder", "user_id", id, "error", err)
		}
	}

	if err := s.subs.CleanupNotified(ctx, model.DateOf(now).AddDays(-notifiedRetention)); err != nil {
		s.logger.Error("cleanup expiry notifications", "error", err)
	}
}

func (s *Scheduler) remind(ctx context.Context, c auth.Caller, now time.Time) error {
	items, err := s.items.List(ctx, c, model.FoodItemFilter{Sort: "expiry"})
	if err != nil {
		return err
	}

	today := model.DateOf(now)
	var due []model.FoodItem
	for _, item := range expiry.Select(items, now, expiry.DashboardHorizon, 0) {
		if expiry.DaysUntilExpiry(*item.ExpiryDate, now) < 0 {
			continue
		}
		sent, err := s.subs.WasNotified(ctx, c, item.ID, today)
		if err != nil {
			return err
		}
		if !sent {
			due = append(due, item)
		}
	}
	if len(due) == 0 {
		return nil
	}

	subs, err := s.subs.ListByUser(ctx, c)
	if err != nil {
		return err
	}

	payload := ReminderPayload(due, now)
	delivered := false
	for _, sub := range subs {
		err := s.sender.Send(ctx, sub, payload)
		switch {
		case err == nil:
			delivered = true
			s.count("sent")
		case errors.Is(err, ErrExpired):
			s.count("expired")
			if err := s.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
				s.logger.Error("delete expired subscription", "error", err)
			}
		default:
			s.count("failed")
			s.logger.Warn("send expiry reminder", "user_id", c.UserID, "device", sub.DeviceName, "error", err)
		}
	}

	// Undelivered reminders are retried on the next pass.
	if !delivered {
		return nil
	}
	for _, item := range due {
		if err := s.subs.MarkNotified(ctx, c, item.ID, today); err != nil {
			return err
		}
	}
	s.logger.Info("sent expiry reminder", "user_id", c.UserID, "items", len(due))
	return nil
}

func (s *Scheduler) count(result string) {
	if s.metrics != nil {
		s.metrics.PushSent.WithLabelValues(result).Inc()
	}
}

// ReminderPayload summarizes the items in one notification.
func ReminderPayload(items []model.FoodItem, now time.Time) Payload {
	p := Payload{
		Title: "Food expiring soon",
		URL:   "/dashboard",
		Tag:   "expiry-" + model.DateOf(now).String(),
	}
	if len(items) == 1 {
		days := expiry.DaysUntilExpiry(*items[0].ExpiryDate, now)
		p.Body = fmt.Sprintf("%s: %s", items[0].Name, strings.ToLower(expiry.Text(days)))
		return p
	}

	names := make([]string, 0, 3)
	for i, item := range items {
		if i == 3 {
			break
		}
		names = append(names, item.Name)
	}
	p.Body = fmt.Sprintf("%d items expire within %d days: %s", len(items), expiry.DashboardHorizon, strings.Join(names, ", "))
	if len(items) > 3 {
		p.Body += fmt.Sprintf(" and %d more", len(items)-3)
	}
	return p
}
