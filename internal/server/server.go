package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/ecopantry/ecopantry/internal/chat"
	"github.com/ecopantry/ecopantry/internal/handler"
	"github.com/ecopantry/ecopantry/internal/metrics"
	"github.com/ecopantry/ecopantry/internal/middleware"
	"github.com/ecopantry/ecopantry/internal/push"
	"github.com/ecopantry/ecopantry/internal/store"
	ws "github.com/ecopantry/ecopantry/internal/websocket"
)

// Rate limits per window.
const (
	authRateLimit = 10
	chatRateLimit = 20
	rateWindow    = time.Minute
)

// Options carries the optional collaborators of the server.
type Options struct {
	JWTSecret      string
	CookieSecure   bool
	OriginPatterns []string
	// TrustProxy keys per-IP rate limits on forwarding headers.
	TrustProxy bool

	// Chat completion backend; nil disables the assistant.
	Completer   chat.Completer
	ChatOptions []chat.Option

	// Web push; nil disables subscriptions and reminders.
	Push             *push.Service
	ReminderInterval time.Duration

	// Metrics; nil creates a private registry.
	Metrics *metrics.Metrics
}

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	authn         *middleware.Authenticator
	foodItemH     *handler.FoodItemHandler
	consumptionH  *handler.ConsumptionLogHandler
	shoppingH     *handler.ShoppingListHandler
	statsH        *handler.StatsHandler
	chatH         *handler.ChatHandler
	profileH      *handler.ProfileHandler
	authH         *handler.AuthHandler
	pushH         *handler.PushHandler
	sessionStore  *store.SessionStore
	pushStore     *store.PushStore
	rateLimiter   *middleware.RateLimiter
	pushScheduler *push.Scheduler
	metrics       *metrics.Metrics
	origins       []string
	trustProxy    bool
	logger        *slog.Logger
}

func New(db *sql.DB, opts Options, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	m := opts.Metrics
	if m == nil {
		m = metrics.New()
	}

	foodItemStore := store.NewFoodItemStore(db)
	consumptionStore := store.NewConsumptionLogStore(db)
	shoppingStore := store.NewShoppingListStore(db)
	profileStore := store.NewProfileStore(db)

	// Auth stores
	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	var chatSvc *chat.Service
	if opts.Completer != nil {
		chatSvc = chat.NewService(opts.Completer, foodItemStore, logger, opts.ChatOptions...)
	}

	// Push notification service + scheduler
	pushSt := store.NewPushStore(db)
	var pushSched *push.Scheduler
	var pushH *handler.PushHandler
	if opts.Push != nil {
		interval := opts.ReminderInterval
		if interval <= 0 {
			interval = time.Hour
		}
		pushSched = push.NewScheduler(opts.Push, pushSt, foodItemStore, interval, m, logger.With("component", "push"))
		pushH = handler.NewPushHandler(pushSt, opts.Push, logger.With("component", "push_handler"))
	}

	return &Server{
		db:            db,
		hub:           hub,
		authn:         middleware.NewAuthenticator(sessionStore, userStore, opts.JWTSecret, logger.With("component", "auth")),
		foodItemH:     handler.NewFoodItemHandler(foodItemStore, hub, m, logger.With("component", "food_item")),
		consumptionH:  handler.NewConsumptionLogHandler(consumptionStore, hub, m, logger.With("component", "consumption_log")),
		shoppingH:     handler.NewShoppingListHandler(shoppingStore, hub, logger.With("component", "shopping_list")),
		statsH:        handler.NewStatsHandler(foodItemStore, consumptionStore, logger.With("component", "stats")),
		chatH:         handler.NewChatHandler(chatSvc, m, logger.With("component", "chat_handler")),
		profileH:      handler.NewProfileHandler(profileStore, hub, logger.With("component", "profile")),
		authH:         handler.NewAuthHandler(userStore, sessionStore, profileStore, opts.CookieSecure, logger.With("component", "auth_handler")),
		pushH:         pushH,
		sessionStore:  sessionStore,
		pushStore:     pushSt,
		rateLimiter:   middleware.NewRateLimiter(),
		trustProxy:    opts.TrustProxy,
		pushScheduler: pushSched,
		metrics:       m,
		origins:       opts.OriginPatterns,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// PushScheduler returns the expiry reminder scheduler, or nil when push is
// not configured.
func (s *Server) PushScheduler() *push.Scheduler {
	return s.pushScheduler
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	// Public routes (no auth required)
	mux.Handle("POST /register", s.rateLimited(middleware.ByIP(s.trustProxy), authRateLimit, s.authH.Register))
	mux.Handle("POST /login", s.rateLimited(middleware.ByIP(s.trustProxy), authRateLimit, s.authH.Login))
	mux.HandleFunc("POST /logout", s.authH.Logout)
	mux.HandleFunc("GET /health", s.healthHandler)
	mux.Handle("GET /metrics", s.metrics.Handler())

	// Chat works anonymously; a signed-in caller gets personalized context.
	mux.Handle("POST /api/chat", s.authn.OptionalAuth(s.rateLimited(middleware.ByCaller(s.trustProxy), chatRateLimit, s.chatH.Reply)))

	s.registerProtectedRoutes(mux)

	// Apply metrics and request logging middleware
	return middleware.RequestLogger(s.logger.With("component", "http"))(s.metrics.Middleware(mux))
}

// protected wraps h with RequireAuth. Routes stay on the one mux so the
// metrics middleware sees the matched pattern.
func (s *Server) protected(h http.HandlerFunc) http.Handler {
	return s.authn.RequireAuth(h)
}

func (s *Server) rateLimited(key func(*http.Request) string, limit int, h http.HandlerFunc) http.Handler {
	return middleware.RateLimit(s.rateLimiter, key, limit, rateWindow)(h)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		s.logger.Error("health check", "error", err)
		status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": status})
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	// Analytics
	mux.Handle("GET /api/analytics/stats", s.protected(s.statsH.Get))

	// Consumption logs
	mux.Handle("GET /api/consumption-logs", s.protected(s.consumptionH.List))
	mux.Handle("POST /api/consumption-logs", s.protected(s.consumptionH.Create))

	// Food items
	mux.Handle("GET /api/food-items", s.protected(s.foodItemH.List))
	mux.Handle("POST /api/food-items", s.protected(s.foodItemH.Create))
	mux.Handle("GET /api/food-items/expiring", s.protected(s.foodItemH.Expiring))
	mux.Handle("PUT /api/food-items/{id}", s.protected(s.foodItemH.Update))
	mux.Handle("DELETE /api/food-items/{id}", s.protected(s.foodItemH.Delete))
	mux.Handle("POST /api/food-items/{id}/consume", s.protected(s.foodItemH.Consume))

	// Shopping lists
	mux.Handle("GET /api/shopping-lists", s.protected(s.shoppingH.List))
	mux.Handle("POST /api/shopping-lists", s.protected(s.shoppingH.Create))
	mux.Handle("POST /api/shopping-lists/{list_id}/items", s.protected(s.shoppingH.AddItem))
	mux.Handle("PUT /api/shopping-lists/{list_id}/items/{id}/purchased", s.protected(s.shoppingH.SetPurchased))

	// Profile
	mux.Handle("GET /api/profile", s.protected(s.profileH.Get))
	mux.Handle("PUT /api/profile", s.protected(s.profileH.Update))

	// Push notification API routes
	if s.pushH != nil {
		mux.Handle("POST /api/push/subscribe", s.protected(s.pushH.Subscribe))
		mux.Handle("DELETE /api/push/subscriptions/{id}", s.protected(s.pushH.Unsubscribe))
		mux.Handle("GET /api/push/subscriptions", s.protected(s.pushH.ListSubscriptions))
		mux.Handle("POST /api/push/test", s.protected(s.pushH.TestNotification))
		mux.HandleFunc("GET /api/push/vapid-key", s.pushH.GetVAPIDKey)
	}

	// WebSocket
	mux.Handle("GET /ws", s.protected(ws.HandleWebSocket(s.hub, s.origins, s.logger.With("component", "websocket"))))
}
