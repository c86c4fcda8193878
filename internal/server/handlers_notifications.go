package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

func (s *Server) handleVAPIDPublicKey(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"publicKey": s.keys.PublicKey()})
}

type subscribeRequest struct {
	Subscription struct {
		Endpoint string `json:"endpoint"`
		Keys     struct {
			P256dh string `json:"p256dh"`
			Auth   string `json:"auth"`
		} `json:"keys"`
	} `json:"subscription"`
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var req subscribeRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	sub := req.Subscription
	if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
		s.badRequest(w, "invalid subscription")
		return
	}

	var id string
	err := store.WithRetry(r.Context(), retryAttempts, retryBackoff, func(ctx context.Context) error {
		var err error
		id, err = s.push.UpsertSubscription(ctx, sub.Endpoint, sub.Keys.P256dh, sub.Keys.Auth)
		return err
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"success": true, "subscriptionId": id})
}

type endpointRequest struct {
	Endpoint string `json:"endpoint"`
}

func (s *Server) handleUnsubscribe(w http.ResponseWriter, r *http.Request) {
	var req endpointRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.Endpoint == "" {
		s.badRequest(w, "endpoint required")
		return
	}

	err := store.WithRetry(r.Context(), retryAttempts, retryBackoff, func(ctx context.Context) error {
		return s.push.DeleteSubscription(ctx, req.Endpoint)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type scheduleNotificationRequest struct {
	SubscriptionEndpoint string `json:"subscriptionEndpoint"`
	EventID              string `json:"eventId"`
	EventLabel           string `json:"eventLabel"`
	ScheduledTime        string `json:"scheduledTime"`
}

func (s *Server) handleScheduleNotification(w http.ResponseWriter, r *http.Request) {
	var req scheduleNotificationRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.SubscriptionEndpoint == "" || req.EventID == "" || req.EventLabel == "" || req.ScheduledTime == "" {
		s.badRequest(w, "missing required fields")
		return
	}
	if _, err := domain.ParseClock(req.ScheduledTime); err != nil {
		s.badRequest(w, "scheduledTime must be HH:MM")
		return
	}

	sub, err := s.push.GetSubscription(r.Context(), req.SubscriptionEndpoint)
	if err != nil {
		s.writeError(w, err)
		return
	}

	err = store.WithRetry(r.Context(), retryAttempts, retryBackoff, func(ctx context.Context) error {
		return s.push.ScheduleBinding(ctx, sub.ID, domain.Binding{
			EventID:       req.EventID,
			Label:         req.EventLabel,
			ScheduledTime: req.ScheduledTime,
		})
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

type cancelNotificationRequest struct {
	SubscriptionEndpoint string `json:"subscriptionEndpoint"`
	EventID              string `json:"eventId"`
}

func (s *Server) handleCancelNotification(w http.ResponseWriter, r *http.Request) {
	var req cancelNotificationRequest
	if err := decodeBody(r, &req); err != nil {
		s.badRequest(w, "invalid JSON body")
		return
	}
	if req.SubscriptionEndpoint == "" || req.EventID == "" {
		s.badRequest(w, "missing required fields")
		return
	}

	sub, err := s.push.GetSubscription(r.Context(), req.SubscriptionEndpoint)
	if err != nil {
		s.writeError(w, err)
		return
	}

	err = store.WithRetry(r.Context(), retryAttempts, retryBackoff, func(ctx context.Context) error {
		return s.push.CancelBinding(ctx, sub.ID, req.EventID)
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleListNotifications(w http.ResponseWriter, r *http.Request) {
	endpoint := r.URL.Query().Get("endpoint")
	if endpoint == "" {
		s.badRequest(w, "endpoint required")
		return
	}

	sub, err := s.push.GetSubscription(r.Context(), endpoint)
	if err != nil {
		// Unknown endpoints list as empty rather than failing; the client
		// calls this before it has ever subscribed.
		if errors.Is(err, store.ErrNotFound) {
			s.writeJSON(w, http.StatusOK, map[string]any{"notifications": []domain.Binding{}})
			return
		}
		s.writeError(w, err)
		return
	}

	bindings, err := s.push.ListActiveBindings(r.Context(), sub.ID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if bindings == nil {
		bindings = []domain.Binding{}
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"notifications": bindings})
}
