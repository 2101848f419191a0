package push

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ecopantry/ecopantry/internal/auth"
	"github.com/ecopantry/ecopantry/internal/model"
)

type fakeSubs struct {
	users    []string
	subs     map[string][]model.PushSubscription
	notified map[string]bool
	deleted  []string
	cleaned  *model.Date
}

func (f *fakeSubs) ListUserIDs(context.Context) ([]string, error) { return f.users, nil }

func (f *fakeSubs) ListByUser(_ context.Context, c auth.Caller) ([]model.PushSubscription, error) {
	return f.subs[c.UserID], nil
}

func (f *fakeSubs) DeleteByEndpoint(_ context.Context, endpoint string) error {
	f.deleted = append(f.deleted, endpoint)
	return nil
}

func (f *fakeSubs) WasNotified(_ context.Context, c auth.Caller, id string, on model.Date) (bool, error) {
	return f.notified[c.UserID+"/"+id+"/"+on.String()], nil
}

func (f *fakeSubs) MarkNotified(_ context.Context, c auth.Caller, id string, on model.Date) error {
	f.notified[c.UserID+"/"+id+"/"+on.String()] = true
	return nil
}

func (f *fakeSubs) CleanupNotified(_ context.Context, before model.Date) error {
	f.cleaned = &before
	return nil
}

type fakeItems map[string][]model.FoodItem

func (f fakeItems) List(_ context.Context, c auth.Caller, _ model.FoodItemFilter) ([]model.FoodItem, error) {
	if c.Source != auth.SourceScheduler {
		return nil, errors.New("unexpected source")
	}
	return f[c.UserID], nil
}

type sentPush struct {
	endpoint string
	payload  Payload
}

type fakeSender struct {
	sent []sentPush
	errs map[string]error
}

func (f *fakeSender) Send(_ context.Context, sub model.PushSubscription, p Payload) error {
	if err := f.errs[sub.Endpoint]; err != nil {
		return err
	}
	f.sent = append(f.sent, sentPush{sub.Endpoint, p})
	return nil
}

var schedNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func itemExpiring(id, name string, days int) model.FoodItem {
	d := model.DateOf(schedNow).AddDays(days)
	return model.FoodItem{ID: id, Name: name, ExpiryDate: &d}
}

func newTestScheduler(sender Sender, subs SubscriptionStore, items ItemLister) *Scheduler {
	s := NewScheduler(sender, subs, items, time.Hour, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.now = func() time.Time { return schedNow }
	return s
}

func TestTickSendsOncePerDay(t *testing.T) {
	subs := &fakeSubs{
		users:    []string{"u1"},
		subs:     map[string][]model.PushSubscription{"u1": {{Endpoint: "https://push/a"}}},
		notified: map[string]bool{},
	}
	items := fakeItems{"u1": {
		itemExpiring("1", "Milk", 1),
		itemExpiring("2", "Yogurt", 10),
		{ID: "3", Name: "Rice"},
	}}
	sender := &fakeSender{}
	s := newTestScheduler(sender, subs, items)

	s.Tick(context.Background())
	if len(sender.sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sender.sent))
	}
	p := sender.sent[0].payload
	if !strings.HasPrefix(p.Body, "Milk") {
		t.Errorf("body = %q, want Milk reminder", p.Body)
	}
	if p.Tag != "expiry-2026-03-10" {
		t.Errorf("tag = %q", p.Tag)
	}
	if !subs.notified["u1/1/2026-03-10"] {
		t.Error("expected Milk to be marked notified")
	}
	if subs.notified["u1/2/2026-03-10"] {
		t.Error("item outside horizon should not be marked")
	}
	if subs.cleaned == nil || subs.cleaned.String() != "2026-03-03" {
		t.Errorf("cleanup before = %v, want 2026-03-03", subs.cleaned)
	}

	s.Tick(context.Background())
	if len(sender.sent) != 1 {
		t.Errorf("second tick sent again: %d", len(sender.sent))
	}
}

func TestTickExpiredSubscription(t *testing.T) {
	subs := &fakeSubs{
		users: []string{"u1"},
		subs: map[string][]model.PushSubscription{"u1": {
			{Endpoint: "https://push/gone"},
			{Endpoint: "https://push/ok"},
		}},
		notified: map[string]bool{},
	}
	items := fakeItems{"u1": {itemExpiring("1", "Milk", 0)}}
	sender := &fakeSender{errs: map[string]error{"https://push/gone": ErrExpired}}

	newTestScheduler(sender, subs, items).Tick(context.Background())

	if len(subs.deleted) != 1 || subs.deleted[0] != "https://push/gone" {
		t.Errorf("deleted = %v", subs.deleted)
	}
	if len(sender.sent) != 1 || sender.sent[0].endpoint != "https://push/ok" {
		t.Errorf("sent = %v", sender.sent)
	}
}

func TestTickRetriesWhenUndelivered(t *testing.T) {
	subs := &fakeSubs{
		users:    []string{"u1"},
		subs:     map[string][]model.PushSubscription{"u1": {{Endpoint: "https://push/a"}}},
		notified: map[string]bool{},
	}
	items := fakeItems{"u1": {itemExpiring("1", "Milk", 2)}}
	sender := &fakeSender{errs: map[string]error{"https://push/a": errors.New("timeout")}}

	newTestScheduler(sender, subs, items).Tick(context.Background())

	if subs.notified["u1/1/2026-03-10"] {
		t.Error("failed delivery should not mark item notified")
	}
}

func TestReminderPayload(t *testing.T) {
	items := []model.FoodItem{
		itemExpiring("1", "Milk", 0),
		itemExpiring("2", "Bread", 1),
		itemExpiring("3", "Eggs", 2),
		itemExpiring("4", "Ham", 3),
	}

	one := ReminderPayload(items[:1], schedNow)
	if one.Body != "Milk: expires today" {
		t.Errorf("single body = %q", one.Body)
	}

	many := ReminderPayload(items, schedNow)
	want := "4 items expire within 3 days: Milk, Bread, Eggs and 1 more"
	if many.Body != want {
		t.Errorf("body = %q, want %q", many.Body, want)
	}
}

func TestStartStop(t *testing.T) {
	subs := &fakeSubs{notified: map[string]bool{}}
	s := newTestScheduler(&fakeSender{}, subs, fakeItems{})

	s.Start(context.Background())
	s.Stop()

	if subs.cleaned == nil {
		t.Error("expected an immediate pass on start")
	}
}

func TestTickSkipsExpiredItems(t *testing.T) {
	subs := &fakeSubs{
		users:    []string{"u1"},
		subs:     map[string][]model.PushSubscription{"u1": {{Endpoint: "https://push/a"}}},
		notified: map[string]bool{},
	}
	items := fakeItems{"u1": {itemExpiring("1", "Old cheese", -2)}}
	sender := &fakeSender{}

	newTestScheduler(sender, subs, items).Tick(context.Background())

	if len(sender.sent) != 0 {
		t.Errorf("sent = %d, want 0", len(sender.sent))
	}
}
