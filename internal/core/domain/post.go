package domain

import "time"

// PostType classifies a normalized post.
type PostType string

// Post types.
const (
	// PostCollection is the post created for a whole remote record,
	// owning its cover thumbnail and related links to decomposed posts.
	PostCollection PostType = "collection"

	// PostSet is a text-only content item.
	PostSet PostType = "set"

	// PostBlog is a content item with interleaved text and images.
	PostBlog PostType = "blog"
)

// FetchDirection selects which way pagination walks the remote feed.
type FetchDirection string

// Fetch directions.
const (
	DirectionNewer FetchDirection = "newer"
	DirectionOlder FetchDirection = "older"
)

// Post is the persisted, normalized representation of either a whole
// remote record or one of its content items.
//
// Identity is (Source, OriginalID), unique. OriginalID is the bare
// remote record id for the collection post, or "{record}-{content}"
// for a decomposed content item.
type Post struct {
	// ID is the local unique identifier.
	ID string

	// Source names the remote service this post came from.
	Source string

	// OriginalID is the remote identity within the source.
	OriginalID string

	// URL is the canonical remote URL of the record.
	URL string

	// Title is the remote title.
	Title string

	// Comment is the free-text comment. For blog posts it holds a
	// serialized ordered list of text/file segments.
	Comment string

	// Type classifies the post.
	Type PostType

	// PostTime is the remote publication time in UTC.
	PostTime time.Time

	// Favorite mirrors the remote liked flag.
	Favorite bool

	// Metadata holds arbitrary key-value pairs (e.g. plan price).
	Metadata map[string]any

	// CreatedAt is when the post was first persisted locally.
	CreatedAt time.Time

	// UpdatedAt is when the post was last updated locally.
	UpdatedAt time.Time
}
