// Package server exposes the planner's REST surface: daily record CRUD,
// push subscription bookkeeping, reminder scheduling and analytics.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

// PublicKeySource hands the VAPID public key to subscribing clients.
// push.Service implements it.
type PublicKeySource interface {
	PublicKey() string
}

// Mutating store calls retry transient failures a few times with linearly
// increasing backoff before giving up.
const (
	retryAttempts = 3
	retryBackoff  = 100 * time.Millisecond
)

// Server holds the handler dependencies.
type Server struct {
	log     *zap.Logger
	records store.RecordRepo
	push    store.PushRepo
	keys    PublicKeySource
	limits  domain.InputLimits
	policy  domain.Policy
	now     func() time.Time
}

// New assembles the REST server.
func New(log *zap.Logger, records store.RecordRepo, pushRepo store.PushRepo, keys PublicKeySource, limits domain.InputLimits, policy domain.Policy) *Server {
	return &Server{
		log:     log,
		records: records,
		push:    pushRepo,
		keys:    keys,
		limits:  limits,
		policy:  policy,
		now:     time.Now,
	}
}

// Handler builds the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/schedule", s.handleBuildSchedule)

	mux.HandleFunc("GET /api/vapid-public-key", s.handleVAPIDPublicKey)
	mux.HandleFunc("POST /api/subscribe", s.handleSubscribe)
	mux.HandleFunc("POST /api/unsubscribe", s.handleUnsubscribe)
	mux.HandleFunc("POST /api/schedule-notification", s.handleScheduleNotification)
	mux.HandleFunc("POST /api/cancel-notification", s.handleCancelNotification)
	mux.HandleFunc("GET /api/scheduled-notifications", s.handleListNotifications)

	mux.HandleFunc("POST /api/records", s.handleSaveRecord)
	mux.HandleFunc("GET /api/records", s.handleListRecords)
	mux.HandleFunc("GET /api/records/{date}", s.handleGetRecord)
	mux.HandleFunc("DELETE /api/records/{date}", s.handleDeleteRecord)

	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)

	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}
