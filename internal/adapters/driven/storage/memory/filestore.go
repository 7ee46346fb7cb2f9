package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
)

// Ensure FileStore implements the interface.
var _ driven.FileStore = (*FileStore)(nil)

// FileStore is an in-memory implementation of driven.FileStore.
type FileStore struct {
	mu    sync.RWMutex
	files map[string]map[int64]domain.File // post id -> remote order -> file
}

// NewFileStore creates a new in-memory file store.
func NewFileStore() *FileStore {
	return &FileStore{
		files: make(map[string]map[int64]domain.File),
	}
}

// Save stores or updates a file placeholder.
func (s *FileStore) Save(_ context.Context, file *domain.File) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	byOrder, ok := s.files[file.PostID]
	if !ok {
		byOrder = make(map[int64]domain.File)
		s.files[file.PostID] = byOrder
	}
	byOrder[file.RemoteOrder] = *file
	return nil
}

// Get retrieves the file placeholder at a position within a post.
func (s *FileStore) Get(_ context.Context, postID string, remoteOrder int64) (*domain.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	file, ok := s.files[postID][remoteOrder]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &file, nil
}

// ListByPost returns all file placeholders of a post in remote order.
func (s *FileStore) ListByPost(_ context.Context, postID string) ([]domain.File, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	files := make([]domain.File, 0, len(s.files[postID]))
	for _, file := range s.files[postID] {
		files = append(files, file)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].RemoteOrder < files[j].RemoteOrder })
	return files, nil
}
