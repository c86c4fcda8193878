// Package push delivers Web Push notifications to registered browser
// subscriptions, signing requests with the server's VAPID key pair.
package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	webpush "github.com/SherClockHolmes/webpush-go"
	"go.uber.org/zap"

	"github.com/soudousya-lab/weekday-planner/internal/domain"
	"github.com/soudousya-lab/weekday-planner/internal/store"
)

// ErrGone marks a delivery failure whose endpoint no longer exists; the
// caller should drop the subscription.
var ErrGone = errors.New("subscription gone")

// Payload is the notification body the service worker unpacks.
type Payload struct {
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Icon  string            `json:"icon,omitempty"`
	Badge string            `json:"badge,omitempty"`
	Tag   string            `json:"tag,omitempty"`
	Data  map[string]string `json:"data,omitempty"`
}

// Service sends Web Push messages with a store-backed VAPID key pair.
type Service struct {
	keys    domain.VAPIDKeys
	subject string
	log     *zap.Logger
}

// NewService loads the persisted VAPID key pair, generating and storing a
// fresh one on first run, so the public key survives restarts and existing
// browser subscriptions stay valid.
func NewService(ctx context.Context, repo store.PushRepo, subject string, log *zap.Logger) (*Service, error) {
	keys, err := repo.VAPIDKeys(ctx)
	switch {
	case err == nil:
	case errors.Is(err, store.ErrNotFound):
		priv, pub, genErr := webpush.GenerateVAPIDKeys()
		if genErr != nil {
			return nil, fmt.Errorf("generate vapid keys: %w", genErr)
		}
		keys = &domain.VAPIDKeys{Public: pub, Private: priv}
		if err := repo.SaveVAPIDKeys(ctx, *keys); err != nil {
			return nil, fmt.Errorf("save vapid keys: %w", err)
		}
		log.Info("generated new VAPID key pair")
	default:
		return nil, fmt.Errorf("load vapid keys: %w", err)
	}

	return &Service{keys: *keys, subject: subject, log: log}, nil
}

// PublicKey returns the VAPID public key clients subscribe with.
func (s *Service) PublicKey() string {
	return s.keys.Public
}

// Send pushes the payload to one subscription. A 404/410 from the push
// provider returns ErrGone.
func (s *Service) Send(ctx context.Context, sub domain.Subscription, p Payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: sub.Endpoint,
		Keys: webpush.Keys{
			P256dh: sub.P256dh,
			Auth:   sub.Auth,
		},
	}, &webpush.Options{
		Subscriber:      s.subject,
		VAPIDPublicKey:  s.keys.Public,
		VAPIDPrivateKey: s.keys.Private,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return fmt.Errorf("%w: status %d", ErrGone, resp.StatusCode)
	case resp.StatusCode >= 400:
		return fmt.Errorf("push provider returned %d", resp.StatusCode)
	}
	return nil
}
