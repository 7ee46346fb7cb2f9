package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
)

// Ensure TagStore implements the interface.
var _ driven.TagStore = (*TagStore)(nil)

// TagStore is an in-memory implementation of driven.TagStore.
type TagStore struct {
	mu   sync.RWMutex
	tags map[string]domain.Tag // category + "\x00" + name -> tag
}

// NewTagStore creates a new in-memory tag store.
func NewTagStore() *TagStore {
	return &TagStore{
		tags: make(map[string]domain.Tag),
	}
}

func tagKey(category domain.TagCategory, name string) string {
	return string(category) + "\x00" + name
}

// GetOrCreate returns the tag with the given category and name,
// creating it when absent.
func (s *TagStore) GetOrCreate(_ context.Context, category domain.TagCategory, name string) (*domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := tagKey(category, name)
	if tag, ok := s.tags[key]; ok {
		return &tag, nil
	}
	tag := domain.Tag{
		ID:       uuid.New().String(),
		Category: category,
		Name:     name,
	}
	s.tags[key] = tag
	return &tag, nil
}

// Save stores or updates a tag.
func (s *TagStore) Save(_ context.Context, tag *domain.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tags[tagKey(tag.Category, tag.Name)] = *tag
	return nil
}
