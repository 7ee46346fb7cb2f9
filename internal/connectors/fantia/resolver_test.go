package fantia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		wantPostID    int64
		wantCreatorID int64
		wantErr       error
	}{
		{name: "bare id", input: "123", wantPostID: 123},
		{name: "post url", input: "https://fantia.jp/posts/123", wantPostID: 123},
		{name: "post url with query", input: "https://fantia.jp/posts/123?utm=x", wantPostID: 123},
		{name: "fanclub url", input: "https://fantia.jp/fanclubs/45", wantCreatorID: 45},
		{name: "fanclub url with subpage", input: "https://fantia.jp/fanclubs/45/posts", wantCreatorID: 45},
		{name: "http scheme", input: "http://fantia.jp/posts/7", wantPostID: 7},
		{name: "foreign host", input: "https://example.com/posts/123", wantErr: domain.ErrUnsupportedInput},
		{name: "garbage", input: "not a reference", wantErr: domain.ErrUnsupportedInput},
		{name: "empty", input: "", wantErr: domain.ErrUnsupportedInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := Resolve(tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantPostID, res.PostID)
			assert.Equal(t, tt.wantCreatorID, res.CreatorID)
		})
	}
}

func TestOriginalIDRoundTrip(t *testing.T) {
	id := originalID(123, 45)
	assert.Equal(t, "123-45", id)

	postID, contentID, hasContent, err := splitOriginalID(id)
	require.NoError(t, err)
	assert.Equal(t, int64(123), postID)
	assert.Equal(t, int64(45), contentID)
	assert.True(t, hasContent)
}

func TestSplitOriginalIDCollection(t *testing.T) {
	postID, contentID, hasContent, err := splitOriginalID("123")
	require.NoError(t, err)
	assert.Equal(t, int64(123), postID)
	assert.Zero(t, contentID)
	assert.False(t, hasContent)
}

func TestSplitOriginalIDInvalid(t *testing.T) {
	_, _, _, err := splitOriginalID("not-an-id")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPostURL(t *testing.T) {
	assert.Equal(t, "https://fantia.jp/posts/123", PostURL(123))
}
