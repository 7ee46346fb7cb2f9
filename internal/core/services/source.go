package services

import (
	"context"

	"github.com/kitsumori/fanvault/internal/connectors/fantia"
	"github.com/kitsumori/fanvault/internal/core/domain"
)

// SourceService is the source adapter: it resolves input references
// and performs single-record fetches.
type SourceService struct {
	connector *fantia.Connector
}

// NewSourceService creates a source service.
func NewSourceService(connector *fantia.Connector) *SourceService {
	return &SourceService{connector: connector}
}

// Resolve interprets an input reference as a record id or a creator
// feed reference.
func (s *SourceService) Resolve(input string) (fantia.Resolution, error) {
	return fantia.Resolve(input)
}

// Download fetches the record named by input, normalizes it and
// returns the collection post. With preview set only thumbnails are
// transferred.
func (s *SourceService) Download(ctx context.Context, input string, preview bool) (*domain.Post, error) {
	return s.connector.Download(ctx, input, nil, preview)
}

// Refresh refetches the record an existing post came from and
// re-normalizes it anchored on that post, updating it in place.
func (s *SourceService) Refresh(ctx context.Context, post *domain.Post, preview bool) (*domain.Post, error) {
	return s.connector.Download(ctx, "", post, preview)
}
