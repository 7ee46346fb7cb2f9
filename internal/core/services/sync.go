package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/kitsumori/fanvault/internal/connectors/fantia"
	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
	"github.com/kitsumori/fanvault/internal/logger"
)

// SyncService runs synchronization sessions: it drives the creator
// iterator and the normaliser for a subscription, persisting cursor
// state after every record so an aborted run never redoes completed
// asset transfers.
type SyncService struct {
	subs      driven.SubscriptionStore
	connector *fantia.Connector
}

// NewSyncService creates a sync service.
func NewSyncService(subs driven.SubscriptionStore, connector *fantia.Connector) *SyncService {
	return &SyncService{subs: subs, connector: connector}
}

// Subscribe creates a durable subscription for a creator reference.
// The input must resolve to a creator fanclub; no records are fetched.
func (s *SyncService) Subscribe(ctx context.Context, name, input string) (*domain.Subscription, error) {
	res, err := fantia.Resolve(input)
	if err != nil {
		return nil, err
	}
	if res.CreatorID == 0 {
		return nil, fmt.Errorf("%w: %q does not name a creator", domain.ErrUnsupportedInput, input)
	}

	if _, err := s.subs.GetByName(ctx, name); err == nil {
		return nil, fmt.Errorf("subscription %q: %w", name, domain.ErrAlreadyExists)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	sub := &domain.Subscription{
		ID:      uuid.New().String(),
		Name:    name,
		Source:  fantia.SourceName,
		Options: domain.SubscriptionOptions{CreatorID: res.CreatorID},
	}
	if err := s.subs.Save(ctx, sub); err != nil {
		return nil, err
	}

	logger.Info("created subscription %q for creator %d", name, res.CreatorID)
	return sub, nil
}

// List returns all subscriptions.
func (s *SyncService) List(ctx context.Context) ([]domain.Subscription, error) {
	return s.subs.List(ctx)
}

// Fetch obtains up to limit records for a subscription in the given
// direction (0 means until the feed is exhausted), normalizes each and
// appends the resulting posts to the subscription feed in encounter
// order. Direction is forced to older while no tail cursor exists:
// bootstrap always walks backward from the seed.
//
// Cursor state is committed after every record. On error the posts
// already processed are returned alongside it; committed progress is
// retained.
func (s *SyncService) Fetch(ctx context.Context, name string, direction domain.FetchDirection, limit int) ([]*domain.Post, error) {
	sub, err := s.subs.GetByName(ctx, name)
	if err != nil {
		return nil, err
	}

	cursor, err := fantia.DecodeCursor(sub.State)
	if err != nil {
		return nil, err
	}
	if cursor.TailID == nil {
		direction = domain.DirectionOlder
	}

	it := s.connector.Iterator(sub.Options.CreatorID, cursor, direction, limit)

	var out []*domain.Post
	for {
		record, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if record == nil {
			break
		}

		posts, err := s.connector.Normaliser().Normalise(ctx, record, nil, false)
		if err != nil {
			return out, err
		}

		for _, post := range posts {
			if err := s.subs.AppendFeed(ctx, sub.ID, post.ID); err != nil {
				return out, err
			}
		}
		out = append(out, posts...)

		// The normalized entities are cheap cache; the asset transfers
		// are not. Commit the cursor after every record so neither is
		// redone after a crash.
		if err := s.saveCursor(ctx, sub, cursor); err != nil {
			return out, err
		}
	}

	if err := s.saveCursor(ctx, sub, cursor); err != nil {
		return out, err
	}

	logger.Info("fetched %d records for subscription %q", len(out), name)
	return out, nil
}

// Search runs a one-off fetch over a creator's feed without a
// subscription: nothing is appended to any feed, no cursor persists,
// and records are normalized in preview mode (thumbnails only).
func (s *SyncService) Search(ctx context.Context, creatorID int64, limit int) ([]*domain.Post, error) {
	it := s.connector.Iterator(creatorID, &fantia.Cursor{}, domain.DirectionOlder, limit)

	var out []*domain.Post
	for {
		record, err := it.Next(ctx)
		if err != nil {
			return out, err
		}
		if record == nil {
			return out, nil
		}

		posts, err := s.connector.Normaliser().Normalise(ctx, record, nil, true)
		if err != nil {
			return out, err
		}
		out = append(out, posts...)
	}
}

// saveCursor persists the iterator's cursor onto the subscription.
func (s *SyncService) saveCursor(ctx context.Context, sub *domain.Subscription, cursor *fantia.Cursor) error {
	state, err := cursor.Encode()
	if err != nil {
		return err
	}
	sub.State = state
	return s.subs.Save(ctx, sub)
}
