package handler

import (
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ecopantry/ecopantry/internal/analytics"
	"github.com/ecopantry/ecopantry/internal/expiry"
	"github.com/ecopantry/ecopantry/internal/model"
	"github.com/ecopantry/ecopantry/internal/store"
)

type StatsHandler struct {
	items  *store.FoodItemStore
	logs   *store.ConsumptionLogStore
	now    func() time.Time
	logger *slog.Logger
}

func NewStatsHandler(items *store.FoodItemStore, logs *store.ConsumptionLogStore, logger *slog.Logger) *StatsHandler {
	return &StatsHandler{items: items, logs: logs, now: time.Now, logger: logger}
}

// Get handles GET /api/analytics/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := caller(r)
	cutoff := expiry.Cutoff(h.now(), expiry.DashboardHorizon)

	var (
		total    int
		expiring int
		logs     []model.ConsumptionLog
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		total, err = h.items.Count(ctx, c)
		return err
	})
	g.Go(func() error {
		var err error
		expiring, err = h.items.CountExpiringOnOrBefore(ctx, c, cutoff)
		return err
	})
	g.Go(func() error {
		var err error
		logs, err = h.logs.List(ctx, c, 0)
		return err
	})
	if err := g.Wait(); err != nil {
		storeFailed(w, h.logger, err, "load stats")
		return
	}

	writeData(w, http.StatusOK, analytics.Summarize(logs, total, expiring))
}
