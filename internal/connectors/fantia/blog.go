package fantia

import (
	"encoding/json"
	"fmt"

	"github.com/kitsumori/fanvault/internal/logger"
)

// Blog comments arrive as a rich-text delta: an ordered list of ops
// whose insert is either a literal string or an object carrying an
// inline image reference. They are re-serialized locally as an ordered
// list of {type: text|file} segments so the comment round-trips without
// depending on the upstream editor format.

// BlogSegment is one element of a normalized blog comment.
type BlogSegment struct {
	// Type is "text" or "file".
	Type string `json:"type"`

	// Content is the literal text for text segments.
	Content string `json:"content,omitempty"`

	// Order is the remote order of the referenced file placeholder for
	// file segments.
	Order int64 `json:"order,omitempty"`
}

// Segment types.
const (
	SegmentText = "text"
	SegmentFile = "file"
)

// BlogImage is an inline image reference within a blog section.
type BlogImage struct {
	ID          remoteID `json:"id"`
	URL         string   `json:"url"`
	OriginalURL string   `json:"original_url"`
}

// BlogSection is one decoded op: either literal text or an image.
// Exactly one of Text and Image is set.
type BlogSection struct {
	Text  string
	Image *BlogImage
}

type blogOps struct {
	Ops []blogOp `json:"ops"`
}

type blogOp struct {
	Insert json.RawMessage `json:"insert"`
}

type blogInsert struct {
	FantiaImage *BlogImage `json:"fantiaImage"`
}

// parseBlogSections decodes the raw blog comment into ordered sections.
// Ops whose shape matches neither a string nor a known image reference
// are logged and dropped, not fatal.
func parseBlogSections(comment string) ([]BlogSection, error) {
	var ops blogOps
	if err := json.Unmarshal([]byte(comment), &ops); err != nil {
		return nil, fmt.Errorf("parse blog comment: %w", err)
	}

	sections := make([]BlogSection, 0, len(ops.Ops))
	for _, op := range ops.Ops {
		var text string
		if err := json.Unmarshal(op.Insert, &text); err == nil {
			sections = append(sections, BlogSection{Text: text})
			continue
		}

		var insert blogInsert
		if err := json.Unmarshal(op.Insert, &insert); err == nil && insert.FantiaImage != nil {
			sections = append(sections, BlogSection{Image: insert.FantiaImage})
			continue
		}

		logger.Warn("unknown blog insert: %s", string(op.Insert))
	}

	return sections, nil
}

type blogComment struct {
	Comment []BlogSegment `json:"comment"`
}

// EncodeBlogComment serializes the normalized segment list.
func EncodeBlogComment(segments []BlogSegment) (string, error) {
	data, err := json.Marshal(blogComment{Comment: segments})
	if err != nil {
		return "", fmt.Errorf("encode blog comment: %w", err)
	}
	return string(data), nil
}

// DecodeBlogComment parses a normalized blog comment back into its
// ordered segment list.
func DecodeBlogComment(comment string) ([]BlogSegment, error) {
	var bc blogComment
	if err := json.Unmarshal([]byte(comment), &bc); err != nil {
		return nil, fmt.Errorf("decode blog comment: %w", err)
	}
	return bc.Comment, nil
}
