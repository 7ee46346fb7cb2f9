package domain

// TagCategory classifies tags.
type TagCategory string

// Tag categories.
const (
	// TagArtist identifies a creator. Keyed by the stable creator id,
	// not the display name: names change, so the current name is kept
	// as mutable metadata on the tag.
	TagArtist TagCategory = "artist"

	// TagGeneral is a plain remote tag name.
	TagGeneral TagCategory = "general"

	// TagMeta is a fixed sentinel tag such as the NSFW marker.
	TagMeta TagCategory = "meta"
)

// MetaTagNSFW marks posts whose remote rating is adult.
const MetaTagNSFW = "nsfw"

// Tag is a global tag, deduplicated by (Category, Name) across posts.
type Tag struct {
	// ID is the local unique identifier.
	ID string

	// Category classifies the tag.
	Category TagCategory

	// Name is the tag key within its category.
	Name string

	// Metadata holds mutable attributes, e.g. an artist's display name.
	Metadata map[string]any
}

// DisplayName returns the artist display name stored in metadata,
// or the empty string if none is recorded.
func (t *Tag) DisplayName() string {
	if t.Metadata == nil {
		return ""
	}
	name, _ := t.Metadata["name"].(string)
	return name
}

// SetDisplayName records the artist display name in metadata.
func (t *Tag) SetDisplayName(name string) {
	if t.Metadata == nil {
		t.Metadata = make(map[string]any, 1)
	}
	t.Metadata["name"] = name
}
