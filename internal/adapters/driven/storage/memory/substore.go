package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
)

// Ensure SubscriptionStore implements the interface.
var _ driven.SubscriptionStore = (*SubscriptionStore)(nil)

// SubscriptionStore is an in-memory implementation of driven.SubscriptionStore.
type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[string]domain.Subscription // by name
	feed map[string][]string            // subscription id -> post ids, append order
}

// NewSubscriptionStore creates a new in-memory subscription store.
func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{
		subs: make(map[string]domain.Subscription),
		feed: make(map[string][]string),
	}
}

// Save stores or updates a subscription.
func (s *SubscriptionStore) Save(_ context.Context, sub *domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.Name] = *sub
	return nil
}

// GetByName retrieves a subscription by its unique name.
func (s *SubscriptionStore) GetByName(_ context.Context, name string) (*domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[name]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &sub, nil
}

// List returns all subscriptions ordered by name.
func (s *SubscriptionStore) List(_ context.Context) ([]domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	subs := make([]domain.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].Name < subs[j].Name })
	return subs, nil
}

// AppendFeed appends a post to the end of a subscription feed.
// Appending a post already in the feed is a no-op.
func (s *SubscriptionStore) AppendFeed(_ context.Context, subscriptionID, postID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.feed[subscriptionID] {
		if id == postID {
			return nil
		}
	}
	s.feed[subscriptionID] = append(s.feed[subscriptionID], postID)
	return nil
}

// ListFeed returns the post ids of a subscription feed in append order.
func (s *SubscriptionStore) ListFeed(_ context.Context, subscriptionID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.feed[subscriptionID]))
	copy(ids, s.feed[subscriptionID])
	return ids, nil
}
