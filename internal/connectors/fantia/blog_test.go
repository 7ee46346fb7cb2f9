package fantia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlogSections(t *testing.T) {
	comment := `{"ops":[
		{"insert":"hello\n"},
		{"insert":{"fantiaImage":{"id":"77","url":"/tmp/th.jpg","original_url":"/orig/img.jpg"}}},
		{"insert":"bye"}
	]}`

	sections, err := parseBlogSections(comment)
	require.NoError(t, err)
	require.Len(t, sections, 3)

	assert.Equal(t, "hello\n", sections[0].Text)
	assert.Nil(t, sections[0].Image)

	require.NotNil(t, sections[1].Image)
	assert.Equal(t, remoteID(77), sections[1].Image.ID)
	assert.Equal(t, "/orig/img.jpg", sections[1].Image.OriginalURL)

	assert.Equal(t, "bye", sections[2].Text)
}

func TestParseBlogSectionsDropsUnknownInserts(t *testing.T) {
	comment := `{"ops":[
		{"insert":"text"},
		{"insert":{"video":{"id":1}}},
		{"insert":42}
	]}`

	sections, err := parseBlogSections(comment)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	assert.Equal(t, "text", sections[0].Text)
}

func TestParseBlogSectionsInvalidJSON(t *testing.T) {
	_, err := parseBlogSections("not json")
	assert.Error(t, err)
}

func TestBlogCommentRoundTrip(t *testing.T) {
	segments := []BlogSegment{
		{Type: SegmentText, Content: "intro"},
		{Type: SegmentFile, Order: 77},
		{Type: SegmentText, Content: "outro"},
	}

	encoded, err := EncodeBlogComment(segments)
	require.NoError(t, err)

	decoded, err := DecodeBlogComment(encoded)
	require.NoError(t, err)
	assert.Equal(t, segments, decoded)
}
