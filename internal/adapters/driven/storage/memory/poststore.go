package memory

import (
	"context"
	"sync"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
)

// Ensure PostStore implements the interface.
var _ driven.PostStore = (*PostStore)(nil)

// PostStore is an in-memory implementation of driven.PostStore.
type PostStore struct {
	mu      sync.RWMutex
	posts   map[string]domain.Post // by id
	byOrig  map[string]string      // source + "\x00" + original id -> post id
	tags    map[string][]string    // post id -> tag ids, attach order
	related map[string][]string    // post id -> related post ids, add order
}

// NewPostStore creates a new in-memory post store.
func NewPostStore() *PostStore {
	return &PostStore{
		posts:   make(map[string]domain.Post),
		byOrig:  make(map[string]string),
		tags:    make(map[string][]string),
		related: make(map[string][]string),
	}
}

func origKey(source, originalID string) string {
	return source + "\x00" + originalID
}

// Save stores or updates a post.
func (s *PostStore) Save(_ context.Context, post *domain.Post) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts[post.ID] = *post
	s.byOrig[origKey(post.Source, post.OriginalID)] = post.ID
	return nil
}

// GetByOriginalID retrieves a post by its remote identity.
func (s *PostStore) GetByOriginalID(_ context.Context, source, originalID string) (*domain.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byOrig[origKey(source, originalID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	post := s.posts[id]
	return &post, nil
}

// AttachTag links a tag to a post. Duplicate attachments are no-ops.
func (s *PostStore) AttachTag(_ context.Context, postID, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.tags[postID] {
		if id == tagID {
			return nil
		}
	}
	s.tags[postID] = append(s.tags[postID], tagID)
	return nil
}

// ListTags returns ids of tags attached to a post. The memory store has
// no tag table of its own, so it returns bare tags carrying only ids;
// tests resolve them against their TagStore when they need more.
func (s *PostStore) ListTags(_ context.Context, postID string) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tags := make([]domain.Tag, 0, len(s.tags[postID]))
	for _, id := range s.tags[postID] {
		tags = append(tags, domain.Tag{ID: id})
	}
	return tags, nil
}

// AddRelated links a related post. Duplicate links are no-ops.
func (s *PostStore) AddRelated(_ context.Context, postID, relatedID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.related[postID] {
		if id == relatedID {
			return nil
		}
	}
	s.related[postID] = append(s.related[postID], relatedID)
	return nil
}

// ListRelated returns the ids of posts related to a post.
func (s *PostStore) ListRelated(_ context.Context, postID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, len(s.related[postID]))
	copy(ids, s.related[postID])
	return ids, nil
}
