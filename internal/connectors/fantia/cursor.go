package fantia

import (
	"encoding/json"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

// Cursor is the persisted pagination state of a subscription: the
// newest and oldest record ids seen so far. Both are nil until the
// first fetch seeds them from the creator's recent post listing.
type Cursor struct {
	// HeadID is the newest record id seen.
	HeadID *int64 `json:"head_id,omitempty"`

	// TailID is the oldest record id seen.
	TailID *int64 `json:"tail_id,omitempty"`
}

// DecodeCursor deserializes cursor state from a subscription.
// Returns a fresh empty cursor for empty input.
func DecodeCursor(state string) (*Cursor, error) {
	if state == "" {
		return &Cursor{}, nil
	}

	var cursor Cursor
	if err := json.Unmarshal([]byte(state), &cursor); err != nil {
		return nil, ErrInvalidCursor
	}
	return &cursor, nil
}

// Encode serializes the cursor for persistence.
func (c *Cursor) Encode() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// IDFor returns the record id the given direction resumes from, or nil
// when the cursor has not been seeded yet.
func (c *Cursor) IDFor(direction domain.FetchDirection) *int64 {
	if direction == domain.DirectionNewer {
		return c.HeadID
	}
	return c.TailID
}

// Seed initializes both ends of the cursor to the same record id.
func (c *Cursor) Seed(id int64) {
	c.HeadID = &id
	c.TailID = &id
}

// Advance moves the cursor end for the walking direction to the record
// id just processed.
func (c *Cursor) Advance(direction domain.FetchDirection, id int64) {
	if direction == domain.DirectionNewer {
		c.HeadID = &id
	} else {
		c.TailID = &id
	}
}
