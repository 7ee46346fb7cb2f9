package domain

import "time"

// SubscriptionOptions are the persisted search options of a subscription.
type SubscriptionOptions struct {
	// CreatorID is the remote fanclub id being followed.
	CreatorID int64 `json:"creator_id"`
}

// Subscription is a durable follow of a creator's feed. State holds the
// serialized pagination cursor and is persisted after every record
// processed so that interrupted runs resume without re-downloading.
type Subscription struct {
	// ID is the local unique identifier.
	ID string

	// Name is the user-chosen unique subscription name.
	Name string

	// Source names the remote service.
	Source string

	// Options are the search options the subscription was created with.
	Options SubscriptionOptions

	// State is the serialized cursor ({head_id, tail_id}). Empty until
	// the first fetch seeds it.
	State string

	// CreatedAt is when the subscription was created.
	CreatedAt time.Time

	// UpdatedAt is when the subscription was last updated.
	UpdatedAt time.Time
}
