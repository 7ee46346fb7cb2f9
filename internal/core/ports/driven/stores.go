package driven

import (
	"context"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

// PostStore persists normalized posts, their tag attachments and the
// related links between collection posts and their decomposed children.
type PostStore interface {
	// GetByOriginalID retrieves a post by its (source, original id)
	// identity. Returns domain.ErrNotFound if no such post exists.
	GetByOriginalID(ctx context.Context, source, originalID string) (*domain.Post, error)

	// Save stores or updates a post. Each save is durable on return.
	Save(ctx context.Context, post *domain.Post) error

	// AttachTag links a tag to a post. Idempotent.
	AttachTag(ctx context.Context, postID, tagID string) error

	// ListTags returns the tags attached to a post.
	ListTags(ctx context.Context, postID string) ([]domain.Tag, error)

	// AddRelated links a collection post to a decomposed child post.
	// Idempotent: at most one link per (post, related) pair.
	AddRelated(ctx context.Context, postID, relatedID string) error

	// ListRelated returns the ids of posts related to the given post.
	ListRelated(ctx context.Context, postID string) ([]string, error)
}

// TagStore persists global tags, deduplicated by (category, name).
type TagStore interface {
	// GetOrCreate returns the tag for (category, name), creating it if
	// it does not exist yet.
	GetOrCreate(ctx context.Context, category domain.TagCategory, name string) (*domain.Tag, error)

	// Save updates a tag, e.g. after a metadata change.
	Save(ctx context.Context, tag *domain.Tag) error
}

// FileStore persists file placeholders.
type FileStore interface {
	// Get retrieves the placeholder at (post, remote order).
	// Returns domain.ErrNotFound if it has not been created yet.
	Get(ctx context.Context, postID string, remoteOrder int64) (*domain.File, error)

	// ListByPost returns a post's placeholders ordered by remote order.
	ListByPost(ctx context.Context, postID string) ([]domain.File, error)

	// Save stores or updates a placeholder.
	Save(ctx context.Context, file *domain.File) error
}

// SubscriptionStore persists subscriptions and their feeds.
type SubscriptionStore interface {
	// GetByName retrieves a subscription by its unique name.
	// Returns domain.ErrNotFound if it does not exist.
	GetByName(ctx context.Context, name string) (*domain.Subscription, error)

	// Save stores or updates a subscription, including its cursor state.
	Save(ctx context.Context, sub *domain.Subscription) error

	// List returns all subscriptions.
	List(ctx context.Context) ([]domain.Subscription, error)

	// AppendFeed appends a post to the subscription's feed in encounter
	// order. Idempotent per (subscription, post) pair.
	AppendFeed(ctx context.Context, subscriptionID, postID string) error

	// ListFeed returns the post ids in the subscription's feed, in
	// append order.
	ListFeed(ctx context.Context, subscriptionID string) ([]string, error)
}
