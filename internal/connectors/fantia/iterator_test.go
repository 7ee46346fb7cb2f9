package fantia

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

// fakeAPI serves canned records and fanclubs and writes downloads to
// real temp files so the import pipeline can consume them.
type fakeAPI struct {
	posts     map[int64]*RemotePost
	fanclub   *Fanclub
	fetched   []int64
	downloads []string
}

func (f *fakeAPI) GetPost(_ context.Context, id int64) (*RemotePost, error) {
	f.fetched = append(f.fetched, id)
	post, ok := f.posts[id]
	if !ok {
		return nil, &APIError{StatusCode: 404, URL: fmt.Sprintf("/api/v1/posts/%d", id)}
	}
	return post, nil
}

func (f *fakeAPI) GetFanclub(_ context.Context, id int64) (*Fanclub, error) {
	if f.fanclub == nil || f.fanclub.ID != id {
		return nil, &APIError{StatusCode: 404, URL: fmt.Sprintf("/api/v1/fanclubs/%d", id)}
	}
	return f.fanclub, nil
}

func (f *fakeAPI) DownloadFile(_ context.Context, rawurl, _ string) (string, error) {
	f.downloads = append(f.downloads, rawurl)
	tmp, err := os.CreateTemp("", "fanvault-test-*")
	if err != nil {
		return "", err
	}
	if _, err := tmp.WriteString(rawurl); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	return tmp.Name(), nil
}

func (f *fakeAPI) FileURL(uri string) string {
	if uri == "" || strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	return "https://fantia.test" + uri
}

// chain builds a linked feed of records with the given ids, oldest
// last, wiring next/previous links between neighbours.
func chain(ids ...int64) map[int64]*RemotePost {
	posts := make(map[int64]*RemotePost, len(ids))
	for i, id := range ids {
		post := &RemotePost{
			ID:       id,
			Title:    fmt.Sprintf("post %d", id),
			PostedAt: "2024-03-01T12:00:00Z",
			Fanclub:  Fanclub{ID: 45, User: User{Name: "creator"}},
		}
		if i > 0 {
			post.Links.Next = &PostRef{ID: ids[i-1]}
		}
		if i < len(ids)-1 {
			post.Links.Previous = &PostRef{ID: ids[i+1]}
		}
		posts[id] = post
	}
	return posts
}

func TestIteratorSeedsFromRecentPosts(t *testing.T) {
	api := &fakeAPI{
		posts:   chain(30, 20, 10),
		fanclub: &Fanclub{ID: 45, RecentPosts: []PostRef{{ID: 30}}},
	}
	cursor := &Cursor{}
	it := NewCreatorIterator(api, 45, cursor, domain.DirectionOlder, 0)

	var got []int64
	for {
		rec, err := it.Next(context.Background())
		require.NoError(t, err)
		if rec == nil {
			break
		}
		got = append(got, rec.ID)
	}

	assert.Equal(t, []int64{30, 20, 10}, got)
	require.NotNil(t, cursor.HeadID)
	require.NotNil(t, cursor.TailID)
	assert.Equal(t, int64(30), *cursor.HeadID)
	assert.Equal(t, int64(10), *cursor.TailID)
}

func TestIteratorEmptyCreator(t *testing.T) {
	api := &fakeAPI{fanclub: &Fanclub{ID: 9, RecentPosts: nil}}
	cursor := &Cursor{}
	it := NewCreatorIterator(api, 9, cursor, domain.DirectionOlder, 0)

	rec, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
	assert.Nil(t, cursor.HeadID)
	assert.Nil(t, cursor.TailID)
}

func TestIteratorHonoursLimit(t *testing.T) {
	api := &fakeAPI{
		posts:   chain(50, 40, 30, 20, 10),
		fanclub: &Fanclub{ID: 45, RecentPosts: []PostRef{{ID: 50}}},
	}
	cursor := &Cursor{}
	it := NewCreatorIterator(api, 45, cursor, domain.DirectionOlder, 2)

	var got []int64
	for {
		rec, err := it.Next(context.Background())
		require.NoError(t, err)
		if rec == nil {
			break
		}
		got = append(got, rec.ID)
	}

	assert.Equal(t, []int64{50, 40}, got)
	assert.Equal(t, int64(40), *cursor.TailID)
}

func TestIteratorResumesFromCursor(t *testing.T) {
	api := &fakeAPI{posts: chain(30, 20, 10)}
	tail := int64(30)
	head := int64(30)
	cursor := &Cursor{HeadID: &head, TailID: &tail}
	it := NewCreatorIterator(api, 45, cursor, domain.DirectionOlder, 0)

	rec, err := it.Next(context.Background())
	require.NoError(t, err)
	require.NotNil(t, rec)
	// Record 30 was processed in an earlier run; resumption refetches it
	// for its link only and yields 20 first.
	assert.Equal(t, int64(20), rec.ID)
	assert.Equal(t, int64(20), *cursor.TailID)
}

func TestIteratorResumeAtFeedEnd(t *testing.T) {
	api := &fakeAPI{posts: chain(30, 20, 10)}
	tail := int64(10)
	head := int64(30)
	cursor := &Cursor{HeadID: &head, TailID: &tail}
	it := NewCreatorIterator(api, 45, cursor, domain.DirectionOlder, 0)

	rec, err := it.Next(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestIteratorNewerDirection(t *testing.T) {
	api := &fakeAPI{posts: chain(30, 20, 10)}
	tail := int64(10)
	head := int64(10)
	cursor := &Cursor{HeadID: &head, TailID: &tail}
	it := NewCreatorIterator(api, 45, cursor, domain.DirectionNewer, 0)

	var got []int64
	for {
		rec, err := it.Next(context.Background())
		require.NoError(t, err)
		if rec == nil {
			break
		}
		got = append(got, rec.ID)
	}

	assert.Equal(t, []int64{20, 30}, got)
	assert.Equal(t, int64(30), *cursor.HeadID)
	assert.Equal(t, int64(10), *cursor.TailID)
}

func TestIteratorDeletedCursorRecordFails(t *testing.T) {
	api := &fakeAPI{posts: chain(30, 20, 10)}
	tail := int64(99) // gone upstream
	head := int64(99)
	cursor := &Cursor{HeadID: &head, TailID: &tail}
	it := NewCreatorIterator(api, 45, cursor, domain.DirectionOlder, 0)

	_, err := it.Next(context.Background())
	require.Error(t, err)
	var apiErr *APIError
	assert.ErrorAs(t, err, &apiErr)
	// Cursor untouched so the operator can intervene.
	assert.Equal(t, int64(99), *cursor.TailID)
}
