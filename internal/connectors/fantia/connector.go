package fantia

import (
	"context"
	"fmt"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/logger"
)

// Connector is the top-level entry point for the Fantia source,
// bundling the API client and the normaliser.
type Connector struct {
	api  API
	norm *Normaliser
}

// NewConnector creates a connector.
func NewConnector(api API, norm *Normaliser) *Connector {
	return &Connector{api: api, norm: norm}
}

// Normaliser returns the record normaliser.
func (c *Connector) Normaliser() *Normaliser {
	return c.norm
}

// Iterator creates a cursor-driven iterator over a creator's feed.
func (c *Connector) Iterator(creatorID int64, cursor *Cursor, direction domain.FetchDirection, limit int) *CreatorIterator {
	return NewCreatorIterator(c.api, creatorID, cursor, direction, limit)
}

// Download fetches a single record and normalizes it, returning the
// collection post, or nil when normalization produced nothing.
//
// When existing is given, its identity is reused (stripping any
// content-item suffix) and the matching post is updated in place; the
// input reference is ignored. Otherwise input must resolve to a single
// record id.
func (c *Connector) Download(ctx context.Context, input string, existing *domain.Post, preview bool) (*domain.Post, error) {
	var postID int64

	switch {
	case existing != nil:
		var err error
		postID, _, _, err = splitOriginalID(existing.OriginalID)
		if err != nil {
			return nil, err
		}
		logger.Info("update request for record %d", postID)

	default:
		res, err := Resolve(input)
		if err != nil {
			return nil, err
		}
		if res.PostID == 0 {
			return nil, fmt.Errorf("%w: %q does not name a single record", domain.ErrUnsupportedInput, input)
		}
		postID = res.PostID
		logger.Info("download request for record %d", postID)
	}

	record, err := c.api.GetPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	posts, err := c.norm.Normalise(ctx, record, existing, preview)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return nil, nil
	}
	return posts[0], nil
}
