// Stores browser push subscriptions for admin notifications.

package storage

import (
	"errors"
	"iter"

	"github.com/maruel/ksid"

	"github.com/realsalbednarz/notion-form-sub000/internal/jsonldb"
)

// PushSubscription is a browser Web Push subscription registered by an admin.
type PushSubscription struct {
	ID       ksid.ID `json:"id" jsonschema:"description=Unique subscription identifier"`
	UserID   ksid.ID `json:"user_id" jsonschema:"description=Admin user who registered the subscription"`
	Endpoint string  `json:"endpoint" jsonschema:"description=Push service endpoint URL"`
	P256dh   string  `json:"p256dh" jsonschema:"description=Client public key for payload encryption"`
	Auth     string  `json:"auth" jsonschema:"description=Client auth secret for payload encryption"`
	Created  Time    `json:"created" jsonschema:"description=Registration timestamp"`
}

// Clone returns a copy of the subscription.
func (p *PushSubscription) Clone() *PushSubscription {
	c := *p
	return &c
}

// GetID returns the subscription's ID.
func (p *PushSubscription) GetID() ksid.ID {
	return p.ID
}

// PushSubscriptionService manages push subscriptions.
type PushSubscriptionService struct {
	table    *jsonldb.Table[*PushSubscription]
	byUserID *jsonldb.Index[ksid.ID, *PushSubscription]
}

// NewPushSubscriptionService creates a new push subscription service.
func NewPushSubscriptionService(tablePath string) (*PushSubscriptionService, error) {
	table, err := jsonldb.NewTable[*PushSubscription](tablePath)
	if err != nil {
		return nil, err
	}
	byUserID := jsonldb.NewIndex(table, func(p *PushSubscription) ksid.ID { return p.UserID })
	return &PushSubscriptionService{table: table, byUserID: byUserID}, nil
}

// Create registers a new subscription. Re-registering an endpoint the user
// already has returns the existing subscription.
func (s *PushSubscriptionService) Create(userID ksid.ID, endpoint, p256dh, auth string) (*PushSubscription, error) {
	if userID.IsZero() {
		return nil, errPushUserIDRequired
	}
	if endpoint == "" || p256dh == "" || auth == "" {
		return nil, errPushKeysRequired
	}

	for existing := range s.byUserID.Iter(userID) {
		if existing.Endpoint == endpoint {
			return existing, nil
		}
	}

	sub := &PushSubscription{
		ID:       ksid.NewID(),
		UserID:   userID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
		Created:  Now(),
	}
	if err := s.table.Append(sub); err != nil {
		return nil, err
	}
	return sub.Clone(), nil
}

// Get retrieves a subscription by ID.
func (s *PushSubscriptionService) Get(id ksid.ID) (*PushSubscription, error) {
	sub := s.table.Get(id)
	if sub == nil {
		return nil, ErrPushSubscriptionNotFound
	}
	return sub, nil
}

// ByUser returns an iterator over a user's subscriptions.
func (s *PushSubscriptionService) ByUser(userID ksid.ID) iter.Seq[*PushSubscription] {
	return s.byUserID.Iter(userID)
}

// All returns an iterator over every subscription.
func (s *PushSubscriptionService) All() iter.Seq[*PushSubscription] {
	return s.table.All()
}

// Delete removes a subscription. Used when the push service reports the
// endpoint gone or the admin unsubscribes.
func (s *PushSubscriptionService) Delete(id ksid.ID) error {
	return s.table.Delete(id)
}

// Len returns the number of subscriptions.
func (s *PushSubscriptionService) Len() int {
	return s.table.Len()
}

var (
	// ErrPushSubscriptionNotFound is returned when a subscription lookup misses.
	ErrPushSubscriptionNotFound = errors.New("push subscription not found")

	errPushUserIDRequired = errors.New("push subscription user_id is required")
	errPushKeysRequired   = errors.New("push subscription endpoint and keys are required")
)
