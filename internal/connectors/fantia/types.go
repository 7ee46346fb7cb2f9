package fantia

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

// Content categories as the remote API spells them.
const (
	CategoryFile    = "file"
	CategoryGallery = "photo_gallery"
	CategoryText    = "text"
	CategoryBlog    = "blog"
)

// VisibleStatus value for content items the viewer can access.
const statusVisible = "visible"

// postEnvelope wraps the fetch-post-by-id response.
type postEnvelope struct {
	Post RemotePost `json:"post"`
}

// fanclubEnvelope wraps the fetch-fanclub-by-id response.
type fanclubEnvelope struct {
	Fanclub Fanclub `json:"fanclub"`
}

// RemotePost is one remote post record as returned by the source API,
// before decomposition.
type RemotePost struct {
	ID           int64         `json:"id"`
	Title        string        `json:"title"`
	Comment      string        `json:"comment"`
	PostedAt     string        `json:"posted_at"`
	Rating       string        `json:"rating"`
	Liked        bool          `json:"liked"`
	Fanclub      Fanclub       `json:"fanclub"`
	Tags         []RemoteTag   `json:"tags"`
	Thumb        *Thumbnail    `json:"thumb"`
	PostContents []PostContent `json:"post_contents"`
	Links        PostLinks     `json:"links"`
}

// PostTime parses the record's timestamp and converts it to UTC.
func (p *RemotePost) PostTime() (time.Time, error) {
	layouts := []string{time.RFC1123Z, time.RFC1123, time.RFC3339}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, p.PostedAt); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: unparseable posted_at %q", domain.ErrInvalidInput, p.PostedAt)
}

// Adult reports whether the record's rating marks it as adult content.
func (p *RemotePost) Adult() bool {
	return p.Rating == "adult"
}

// Fanclub is the creator reference embedded in records, and the
// fetch-fanclub response body with the recent post listing used for
// cursor seeding.
type Fanclub struct {
	ID          int64     `json:"id"`
	User        User      `json:"user"`
	RecentPosts []PostRef `json:"recent_posts"`
}

// User is the creator's account.
type User struct {
	Name string `json:"name"`
}

// RemoteTag is a tag name attached to a record.
type RemoteTag struct {
	Name string `json:"name"`
}

// Thumbnail is a record's cover descriptor.
type Thumbnail struct {
	Original string `json:"original"`
	Medium   string `json:"medium"`
}

// PostRef is a bare reference to another record.
type PostRef struct {
	ID int64 `json:"id"`
}

// PostLinks are the forward/backward pagination links of a record.
type PostLinks struct {
	Next     *PostRef `json:"next"`
	Previous *PostRef `json:"previous"`
}

// Neighbour returns the link to follow for the given direction, or nil
// when the feed is exhausted that way.
func (l PostLinks) Neighbour(direction domain.FetchDirection) *PostRef {
	if direction == domain.DirectionNewer {
		return l.Next
	}
	return l.Previous
}

// PostContent is a sub-unit of a record. The category-specific payload
// is obtained through Payload.
type PostContent struct {
	ID            int64          `json:"id"`
	Title         string         `json:"title"`
	Category      string         `json:"category"`
	Comment       string         `json:"comment"`
	VisibleStatus string         `json:"visible_status"`
	Filename      string         `json:"filename"`
	DownloadURI   string         `json:"download_uri"`
	Plan          *Plan          `json:"plan"`
	Photos        []ContentPhoto `json:"post_content_photos"`
}

// Visible reports whether the viewer can access this content item.
func (c *PostContent) Visible() bool {
	return c.VisibleStatus == statusVisible
}

// Plan is the paid plan a content item belongs to.
type Plan struct {
	Price int64 `json:"price"`
}

// ContentPhoto is one photo descriptor within a gallery.
type ContentPhoto struct {
	ID  remoteID `json:"id"`
	URL PhotoURL `json:"url"`
}

// PhotoURL carries the transfer URLs of a photo.
type PhotoURL struct {
	Original string `json:"original"`
	Medium   string `json:"medium"`
}

// remoteID decodes numeric ids that the API serializes inconsistently
// as either JSON numbers or strings.
type remoteID int64

// UnmarshalJSON implements json.Unmarshaler.
func (r *remoteID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return fmt.Errorf("remote id %q: %w", s, err)
	}
	*r = remoteID(v)
	return nil
}

// ContentPayload is the closed set of category-specific payloads.
// The normaliser dispatches over it exhaustively, so an unknown
// category surfaces as an error from Payload rather than a silent skip.
type ContentPayload interface {
	isContentPayload()
}

// FilePayload is a single downloadable file.
type FilePayload struct {
	Filename    string
	DownloadURI string
}

// GalleryPayload is an ordered set of photos keyed by upstream id.
type GalleryPayload struct {
	Photos []ContentPhoto
}

// TextPayload is a text-only content item.
type TextPayload struct{}

// BlogPayload is rich content with interleaved text and image sections.
type BlogPayload struct {
	Sections []BlogSection
}

func (*FilePayload) isContentPayload()    {}
func (*GalleryPayload) isContentPayload() {}
func (*TextPayload) isContentPayload()    {}
func (*BlogPayload) isContentPayload()    {}

// Payload decodes the category-specific payload of a content item.
// Returns domain.ErrUnknownCategory for categories outside the closed
// set.
func (c *PostContent) Payload() (ContentPayload, error) {
	switch c.Category {
	case CategoryFile:
		return &FilePayload{Filename: c.Filename, DownloadURI: c.DownloadURI}, nil
	case CategoryGallery:
		return &GalleryPayload{Photos: c.Photos}, nil
	case CategoryText:
		return &TextPayload{}, nil
	case CategoryBlog:
		sections, err := parseBlogSections(c.Comment)
		if err != nil {
			return nil, err
		}
		return &BlogPayload{Sections: sections}, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c.Category)
	}
}
