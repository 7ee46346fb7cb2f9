package services

import (
	"context"
	"fmt"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsumori/fanvault/internal/adapters/driven/files"
	"github.com/kitsumori/fanvault/internal/adapters/driven/storage/memory"
	"github.com/kitsumori/fanvault/internal/connectors/fantia"
	"github.com/kitsumori/fanvault/internal/core/domain"
)

// fakeAPI serves canned records, optionally failing a specific record
// fetch to exercise mid-run abort behavior.
type fakeAPI struct {
	posts     map[int64]*fantia.RemotePost
	fanclub   *fantia.Fanclub
	failID    int64
	downloads []string
}

func (f *fakeAPI) GetPost(_ context.Context, id int64) (*fantia.RemotePost, error) {
	if f.failID != 0 && id == f.failID {
		return nil, &fantia.APIError{StatusCode: 500, URL: fmt.Sprintf("/api/v1/posts/%d", id)}
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, &fantia.APIError{StatusCode: 404, URL: fmt.Sprintf("/api/v1/posts/%d", id)}
	}
	return post, nil
}

func (f *fakeAPI) GetFanclub(_ context.Context, id int64) (*fantia.Fanclub, error) {
	if f.fanclub == nil || f.fanclub.ID != id {
		return nil, &fantia.APIError{StatusCode: 404, URL: fmt.Sprintf("/api/v1/fanclubs/%d", id)}
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
	return tmp.Name(), tmp.Close()
}

func (f *fakeAPI) FileURL(uri string) string {
	if uri == "" || strings.HasPrefix(uri, "http://") || strings.HasPrefix(uri, "https://") {
		return uri
	}
	return "https://fantia.test" + uri
}

// feed builds linked records with the given ids, newest first.
func feed(creatorID int64, ids ...int64) map[int64]*fantia.RemotePost {
	posts := make(map[int64]*fantia.RemotePost, len(ids))
	for i, id := range ids {
		post := &fantia.RemotePost{
			ID:       id,
			Title:    fmt.Sprintf("post %d", id),
			PostedAt: "2024-03-01T12:00:00Z",
			Fanclub:  fantia.Fanclub{ID: creatorID, User: fantia.User{Name: "creator"}},
		}
		if i > 0 {
			post.Links.Next = &fantia.PostRef{ID: ids[i-1]}
		}
		if i < len(ids)-1 {
			post.Links.Previous = &fantia.PostRef{ID: ids[i+1]}
		}
		posts[id] = post
	}
	return posts
}

type fixture struct {
	api   *fakeAPI
	posts *memory.PostStore
	subs  *memory.SubscriptionStore
	sync  *SyncService
	src   *SourceService
}

func setup(t *testing.T, api *fakeAPI) *fixture {
	t.Helper()
	posts := memory.NewPostStore()
	tags := memory.NewTagStore()
	fileStore := memory.NewFileStore()
	importer := files.NewImporter(t.TempDir(), fileStore)
	connector := fantia.NewConnector(api, fantia.NewNormaliser(api, posts, tags, fileStore, importer))
	subs := memory.NewSubscriptionStore()
	return &fixture{
		api:   api,
		posts: posts,
		subs:  subs,
		sync:  NewSyncService(subs, connector),
		src:   NewSourceService(connector),
	}
}

func TestSubscribe(t *testing.T) {
	f := setup(t, &fakeAPI{})
	ctx := context.Background()

	sub, err := f.sync.Subscribe(ctx, "alice", "https://fantia.jp/fanclubs/45")
	require.NoError(t, err)
	assert.Equal(t, "alice", sub.Name)
	assert.Equal(t, int64(45), sub.Options.CreatorID)
	assert.Equal(t, fantia.SourceName, sub.Source)
	assert.Empty(t, sub.State)

	_, err = f.sync.Subscribe(ctx, "alice", "https://fantia.jp/fanclubs/45")
	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestSubscribeRejectsNonCreatorInput(t *testing.T) {
	f := setup(t, &fakeAPI{})
	ctx := context.Background()

	_, err := f.sync.Subscribe(ctx, "alice", "https://fantia.jp/posts/123")
	assert.ErrorIs(t, err, domain.ErrUnsupportedInput)

	_, err = f.sync.Subscribe(ctx, "alice", "garbage")
	assert.ErrorIs(t, err, domain.ErrUnsupportedInput)
}

func TestFetchBootstrapForcesOlder(t *testing.T) {
	api := &fakeAPI{
		posts:   feed(45, 30, 20, 10),
		fanclub: &fantia.Fanclub{ID: 45, RecentPosts: []fantia.PostRef{{ID: 30}}},
	}
	f := setup(t, api)
	ctx := context.Background()

	sub, err := f.sync.Subscribe(ctx, "alice", "https://fantia.jp/fanclubs/45")
	require.NoError(t, err)

	// Newer is requested, but the first run has no tail cursor and must
	// walk backward from the seed.
	posts, err := f.sync.Fetch(ctx, "alice", domain.DirectionNewer, 0)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, "30", posts[0].OriginalID)
	assert.Equal(t, "20", posts[1].OriginalID)
	assert.Equal(t, "10", posts[2].OriginalID)

	ids, err := f.subs.ListFeed(ctx, sub.ID)
	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Equal(t, posts[0].ID, ids[0])
	assert.Equal(t, posts[2].ID, ids[2])

	saved, err := f.subs.GetByName(ctx, "alice")
	require.NoError(t, err)
	cursor, err := fantia.DecodeCursor(saved.State)
	require.NoError(t, err)
	require.NotNil(t, cursor.HeadID)
	require.NotNil(t, cursor.TailID)
	assert.Equal(t, int64(30), *cursor.HeadID)
	assert.Equal(t, int64(10), *cursor.TailID)
}

func TestFetchNewerAfterBootstrap(t *testing.T) {
	api := &fakeAPI{
		posts:   feed(45, 30, 20, 10),
		fanclub: &fantia.Fanclub{ID: 45, RecentPosts: []fantia.PostRef{{ID: 30}}},
	}
	f := setup(t, api)
	ctx := context.Background()

	_, err := f.sync.Subscribe(ctx, "alice", "https://fantia.jp/fanclubs/45")
	require.NoError(t, err)
	_, err = f.sync.Fetch(ctx, "alice", domain.DirectionNewer, 0)
	require.NoError(t, err)

	// A newer record appears upstream.
	api.posts = feed(45, 40, 30, 20, 10)

	posts, err := f.sync.Fetch(ctx, "alice", domain.DirectionNewer, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "40", posts[0].OriginalID)

	saved, err := f.subs.GetByName(ctx, "alice")
	require.NoError(t, err)
	cursor, err := fantia.DecodeCursor(saved.State)
	require.NoError(t, err)
	assert.Equal(t, int64(40), *cursor.HeadID)
	assert.Equal(t, int64(10), *cursor.TailID)
}

func TestFetchLimitAndResumption(t *testing.T) {
	api := &fakeAPI{
		posts:   feed(45, 30, 20, 10),
		fanclub: &fantia.Fanclub{ID: 45, RecentPosts: []fantia.PostRef{{ID: 30}}},
	}
	f := setup(t, api)
	ctx := context.Background()

	_, err := f.sync.Subscribe(ctx, "alice", "https://fantia.jp/fanclubs/45")
	require.NoError(t, err)

	posts, err := f.sync.Fetch(ctx, "alice", domain.DirectionOlder, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "30", posts[0].OriginalID)

	posts, err = f.sync.Fetch(ctx, "alice", domain.DirectionOlder, 1)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "20", posts[0].OriginalID)
}

func TestFetchEmptyCreator(t *testing.T) {
	api := &fakeAPI{fanclub: &fantia.Fanclub{ID: 9}}
	f := setup(t, api)
	ctx := context.Background()

	_, err := f.sync.Subscribe(ctx, "empty", "https://fantia.jp/fanclubs/9")
	require.NoError(t, err)

	posts, err := f.sync.Fetch(ctx, "empty", domain.DirectionOlder, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestFetchUnknownSubscription(t *testing.T) {
	f := setup(t, &fakeAPI{})
	_, err := f.sync.Fetch(context.Background(), "nobody", domain.DirectionOlder, 0)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFetchCommitsProgressBeforeFailure(t *testing.T) {
	api := &fakeAPI{
		posts:   feed(45, 30, 20, 10),
		fanclub: &fantia.Fanclub{ID: 45, RecentPosts: []fantia.PostRef{{ID: 30}}},
		failID:  10,
	}
	f := setup(t, api)
	ctx := context.Background()

	sub, err := f.sync.Subscribe(ctx, "alice", "https://fantia.jp/fanclubs/45")
	require.NoError(t, err)

	posts, err := f.sync.Fetch(ctx, "alice", domain.DirectionOlder, 0)
	require.Error(t, err)
	require.Len(t, posts, 2)

	// Cursor committed through the last completed record.
	saved, err := f.subs.GetByName(ctx, "alice")
	require.NoError(t, err)
	cursor, err := fantia.DecodeCursor(saved.State)
	require.NoError(t, err)
	require.NotNil(t, cursor.TailID)
	assert.Equal(t, int64(20), *cursor.TailID)

	ids, err := f.subs.ListFeed(ctx, sub.ID)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	// The retry picks up where the failed run stopped.
	api.failID = 0
	posts, err = f.sync.Fetch(ctx, "alice", domain.DirectionOlder, 0)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "10", posts[0].OriginalID)
}

func TestSearchIsPreviewOnlyAndFeedless(t *testing.T) {
	api := &fakeAPI{
		posts:   feed(45, 30, 20),
		fanclub: &fantia.Fanclub{ID: 45, RecentPosts: []fantia.PostRef{{ID: 30}}},
	}
	api.posts[30].Thumb = &fantia.Thumbnail{
		Original: "https://c.test/orig.jpg",
		Medium:   "https://c.test/med.jpg",
	}
	f := setup(t, api)
	ctx := context.Background()

	posts, err := f.sync.Search(ctx, 45, 0)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	// Preview mode: the cover original is never transferred.
	assert.Equal(t, []string{"https://c.test/med.jpg"}, api.downloads)

	subs, err := f.sync.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, subs)
}
