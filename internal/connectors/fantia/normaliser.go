package fantia

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
	"github.com/kitsumori/fanvault/internal/logger"
)

// Normaliser converts one fetched remote record into one or more
// normalized posts plus their file placeholders, applying the
// category-specific decomposition rules. It performs no pagination;
// asset transfer is delegated to the import pipeline per the asset
// resolution policy.
type Normaliser struct {
	api      API
	posts    driven.PostStore
	tags     driven.TagStore
	files    driven.FileStore
	importer driven.FileImporter
}

// NewNormaliser creates a normaliser over the given collaborators.
func NewNormaliser(api API, posts driven.PostStore, tags driven.TagStore, files driven.FileStore, importer driven.FileImporter) *Normaliser {
	return &Normaliser{
		api:      api,
		posts:    posts,
		tags:     tags,
		files:    files,
		importer: importer,
	}
}

// Normalise converts a record into its ordered normalized posts: the
// collection post first, then one post per visible content item in
// record order. Repeated calls converge: posts are looked up by
// identity before creation and placeholders are created at most once
// per (post, remote order).
//
// When existing names a previously normalized content-item post, only
// that post is refreshed; if its content item is gone or no longer
// visible upstream, it is returned unchanged.
func (n *Normaliser) Normalise(ctx context.Context, rec *RemotePost, existing *domain.Post, preview bool) ([]*domain.Post, error) {
	if existing != nil {
		_, contentID, hasContent, err := splitOriginalID(existing.OriginalID)
		if err != nil {
			return nil, err
		}
		if hasContent {
			for i := range rec.PostContents {
				content := &rec.PostContents[i]
				if content.ID != contentID {
					continue
				}
				if !content.Visible() {
					break
				}
				post, err := n.contentToPost(ctx, rec, content, existing, preview)
				if err != nil {
					return nil, err
				}
				return []*domain.Post{post}, nil
			}
			// Removed or hidden upstream: nothing to update.
			return []*domain.Post{existing}, nil
		}
	}

	collection := existing
	if collection == nil {
		var err error
		collection, err = n.findOrCreatePost(ctx, rec, strconv.FormatInt(rec.ID, 10), rec.Title, rec.Comment, nil)
		if err != nil {
			return nil, err
		}
	}

	if err := n.resolveCover(ctx, rec, collection, preview); err != nil {
		return nil, err
	}

	posts := []*domain.Post{collection}
	for i := range rec.PostContents {
		content := &rec.PostContents[i]
		if !content.Visible() {
			continue
		}

		child, err := n.contentToPost(ctx, rec, content, nil, preview)
		if err != nil {
			return nil, err
		}
		if err := n.posts.AddRelated(ctx, collection.ID, child.ID); err != nil {
			return nil, err
		}
		posts = append(posts, child)
	}

	return posts, nil
}

// contentToPost normalizes a single content item, dispatching on its
// decoded category payload.
func (n *Normaliser) contentToPost(ctx context.Context, rec *RemotePost, content *PostContent, existing *domain.Post, preview bool) (*domain.Post, error) {
	post := existing
	if post == nil {
		var metadata map[string]any
		if content.Plan != nil {
			metadata = map[string]any{"price": content.Plan.Price}
		}

		var err error
		post, err = n.findOrCreatePost(ctx, rec, originalID(rec.ID, content.ID), content.Title, content.Comment, metadata)
		if err != nil {
			return nil, err
		}
	}

	payload, err := content.Payload()
	if err != nil {
		return nil, err
	}

	switch p := payload.(type) {
	case *FilePayload:
		file, err := n.getOrCreateFile(ctx, post, 0, p.Filename)
		if err != nil {
			return nil, err
		}
		var thumbURL string
		if rec.Thumb != nil {
			thumbURL = rec.Thumb.Medium
		}
		if err := n.resolveAssets(ctx, file, n.api.FileURL(p.DownloadURI), thumbURL, preview); err != nil {
			return nil, err
		}

	case *GalleryPayload:
		for _, photo := range p.Photos {
			file, err := n.getOrCreateFile(ctx, post, int64(photo.ID), "")
			if err != nil {
				return nil, err
			}
			if err := n.resolveAssets(ctx, file, photo.URL.Original, photo.URL.Medium, preview); err != nil {
				return nil, err
			}
		}

	case *TextPayload:
		post.Type = domain.PostSet
		if err := n.posts.Save(ctx, post); err != nil {
			return nil, err
		}

	case *BlogPayload:
		segments := make([]BlogSegment, 0, len(p.Sections))
		for _, section := range p.Sections {
			if section.Image == nil {
				segments = append(segments, BlogSegment{Type: SegmentText, Content: section.Text})
				continue
			}

			order := int64(section.Image.ID)
			file, err := n.getOrCreateFile(ctx, post, order, "")
			if err != nil {
				return nil, err
			}
			origURL := n.api.FileURL(section.Image.OriginalURL)
			thumbURL := n.api.FileURL(section.Image.URL)
			if err := n.resolveAssets(ctx, file, origURL, thumbURL, preview); err != nil {
				return nil, err
			}
			segments = append(segments, BlogSegment{Type: SegmentFile, Order: order})
		}

		comment, err := EncodeBlogComment(segments)
		if err != nil {
			return nil, err
		}
		post.Comment = comment
		post.Type = domain.PostBlog
		if err := n.posts.Save(ctx, post); err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrUnknownCategory, payload)
	}

	return post, nil
}

// resolveCover handles the collection post's thumbnail: exactly one
// placeholder at remote order 0, created only when the record carries
// a thumbnail descriptor.
func (n *Normaliser) resolveCover(ctx context.Context, rec *RemotePost, collection *domain.Post, preview bool) error {
	file, err := n.files.Get(ctx, collection.ID, 0)
	if errors.Is(err, domain.ErrNotFound) {
		if rec.Thumb == nil {
			return nil
		}
		file, err = n.getOrCreateFile(ctx, collection, 0, "")
	}
	if err != nil {
		return err
	}

	var origURL, thumbURL string
	if rec.Thumb != nil {
		origURL = rec.Thumb.Original
		thumbURL = rec.Thumb.Medium
	}
	return n.resolveAssets(ctx, file, origURL, thumbURL, preview)
}

// findOrCreatePost looks a post up by identity and creates it, with
// its tag attachments, when missing. Tags are attached on creation
// only; the artist display name is refreshed whenever it changed.
func (n *Normaliser) findOrCreatePost(ctx context.Context, rec *RemotePost, id, title, comment string, metadata map[string]any) (*domain.Post, error) {
	post, err := n.posts.GetByOriginalID(ctx, SourceName, id)
	if err == nil {
		return post, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	logger.Info("creating post %s", id)

	postTime, err := rec.PostTime()
	if err != nil {
		return nil, err
	}

	post = &domain.Post{
		ID:         uuid.New().String(),
		Source:     SourceName,
		OriginalID: id,
		URL:        PostURL(rec.ID),
		Title:      title,
		Comment:    comment,
		Type:       domain.PostCollection,
		PostTime:   postTime,
		Favorite:   rec.Liked,
		Metadata:   metadata,
	}
	if err := n.posts.Save(ctx, post); err != nil {
		return nil, err
	}

	if err := n.attachTags(ctx, post, rec); err != nil {
		return nil, err
	}
	return post, nil
}

// attachTags links the artist, general and meta tags of a record to a
// newly created post.
func (n *Normaliser) attachTags(ctx context.Context, post *domain.Post, rec *RemotePost) error {
	// Creators are identified by id; the display name is mutable
	// metadata on the artist tag.
	creatorKey := strconv.FormatInt(rec.Fanclub.ID, 10)
	artist, err := n.tags.GetOrCreate(ctx, domain.TagArtist, creatorKey)
	if err != nil {
		return err
	}
	if name := rec.Fanclub.User.Name; artist.DisplayName() != name {
		artist.SetDisplayName(name)
		if err := n.tags.Save(ctx, artist); err != nil {
			return err
		}
	}
	if err := n.posts.AttachTag(ctx, post.ID, artist.ID); err != nil {
		return err
	}

	for _, remoteTag := range rec.Tags {
		tag, err := n.tags.GetOrCreate(ctx, domain.TagGeneral, remoteTag.Name)
		if err != nil {
			return err
		}
		if err := n.posts.AttachTag(ctx, post.ID, tag.ID); err != nil {
			return err
		}
	}

	if rec.Adult() {
		nsfw, err := n.tags.GetOrCreate(ctx, domain.TagMeta, domain.MetaTagNSFW)
		if err != nil {
			return err
		}
		if err := n.posts.AttachTag(ctx, post.ID, nsfw.ID); err != nil {
			return err
		}
	}

	return nil
}

// getOrCreateFile returns the placeholder at (post, order), creating
// it at most once.
func (n *Normaliser) getOrCreateFile(ctx context.Context, post *domain.Post, order int64, filename string) (*domain.File, error) {
	file, err := n.files.Get(ctx, post.ID, order)
	if err == nil {
		return file, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	file = &domain.File{
		ID:          uuid.New().String(),
		PostID:      post.ID,
		RemoteOrder: order,
		Filename:    filename,
	}
	if err := n.files.Save(ctx, file); err != nil {
		return nil, err
	}
	logger.Info("new file for post %s, order %d", post.OriginalID, order)
	return file, nil
}

// resolveAssets applies the asset resolution policy to a placeholder
// and hands any downloaded binaries to the import pipeline, which
// takes ownership of the temp files.
func (n *Normaliser) resolveAssets(ctx context.Context, file *domain.File, origURL, thumbURL string, preview bool) error {
	needOrig, needThumb := file.Needs(preview)
	if origURL == "" {
		needOrig = false
	}
	if thumbURL == "" {
		needThumb = false
	}
	if !needOrig && !needThumb {
		return nil
	}

	logger.Info("transferring file %s (original: %v, thumbnail: %v)", file.ID, needOrig, needThumb)

	var origPath, thumbPath string
	var err error
	if needOrig {
		origPath, err = n.api.DownloadFile(ctx, origURL, file.Filename)
		if err != nil {
			return err
		}
	}
	if needThumb {
		thumbPath, err = n.api.DownloadFile(ctx, thumbURL, "")
		if err != nil {
			return err
		}
	}

	return n.importer.Import(ctx, file, origPath, thumbPath, true)
}
