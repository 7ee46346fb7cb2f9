package domain

// File is a placeholder for a binary asset owned by exactly one post.
// It is created lazily, at most once per (post, remote order) pair, and
// tracks the original and thumbnail transfers independently so that
// repeated runs never re-download what is already imported.
type File struct {
	// ID is the local unique identifier.
	ID string

	// PostID is the owning post.
	PostID string

	// RemoteOrder orders files within a post. 0 for a single file or
	// cover thumbnail, otherwise the upstream numeric id of the asset.
	RemoteOrder int64

	// Filename is the remembered remote filename, if any.
	Filename string

	// Present records whether the original binary has been imported.
	Present bool

	// ThumbPresent records whether the thumbnail has been imported.
	ThumbPresent bool

	// LocalPath is where the import pipeline stored the original.
	LocalPath string

	// ThumbPath is where the import pipeline stored the thumbnail.
	ThumbPath string
}

// Needs is the asset resolution policy: it decides which binaries still
// have to be transferred for this placeholder. Preview mode fetches
// thumbnails only, never full assets.
func (f *File) Needs(preview bool) (needOriginal, needThumbnail bool) {
	needOriginal = !f.Present && !preview
	needThumbnail = !f.ThumbPresent
	return needOriginal, needThumbnail
}
