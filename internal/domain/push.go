package domain

import "time"

// Subscription is a registered Web Push endpoint with its encryption keys.
type Subscription struct {
	ID        string    `json:"id"`
	Endpoint  string    `json:"endpoint"`
	P256dh    string    `json:"p256dh"`
	Auth      string    `json:"auth"`
	CreatedAt time.Time `json:"createdAt"`
}

// Binding is a request to be reminded of one timeline event at a clock time.
// At most one unfired binding exists per (subscription, event id) pair.
type Binding struct {
	ID             int64     `json:"-"`
	SubscriptionID string    `json:"-"`
	EventID        string    `json:"event_id"`
	Label          string    `json:"event_label"`
	ScheduledTime  string    `json:"scheduled_time"` // "HH:MM"
	Fired          bool      `json:"-"`
	CreatedAt      time.Time `json:"-"`
}

// DueBinding pairs a due binding with the subscription to deliver it to.
type DueBinding struct {
	Binding      Binding
	Subscription Subscription
}

// VAPIDKeys is the server's Web Push signing key pair.
type VAPIDKeys struct {
	Public  string
	Private string
}
