package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/kitsumori/fanvault/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/core/ports/driven"
)

// jsonNull is the JSON representation of null.
const jsonNull = "null"

// Store is a unified SQLite-based storage that provides access to
// all metadata store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.fanvault/data/metadata.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".fanvault", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "metadata.db")

	// WAL keeps readers unblocked while a download commit is in flight.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// PostStore returns a PostStore interface backed by this store.
func (s *Store) PostStore() driven.PostStore {
	return &postStore{store: s}
}

// TagStore returns a TagStore interface backed by this store.
func (s *Store) TagStore() driven.TagStore {
	return &tagStore{store: s}
}

// FileStore returns a FileStore interface backed by this store.
func (s *Store) FileStore() driven.FileStore {
	return &fileStore{store: s}
}

// SubscriptionStore returns a SubscriptionStore interface backed by this store.
func (s *Store) SubscriptionStore() driven.SubscriptionStore {
	return &subscriptionStore{store: s}
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}

		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Post Store ====================

// postStore implements driven.PostStore.
type postStore struct {
	store *Store
}

var _ driven.PostStore = (*postStore)(nil)

// Save stores or updates a post, keyed by id. The (source, original_id)
// pair is unique, so a conflicting insert of the same remote identity
// also resolves to an update.
func (s *postStore) Save(ctx context.Context, post *domain.Post) error {
	metadataJSON, err := json.Marshal(post.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	now := time.Now().UTC()
	if post.CreatedAt.IsZero() {
		post.CreatedAt = now
	}
	post.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO posts (id, source, original_id, url, title, comment, type, post_time, favorite, metadata, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			url = excluded.url,
			title = excluded.title,
			comment = excluded.comment,
			type = excluded.type,
			post_time = excluded.post_time,
			favorite = excluded.favorite,
			metadata = excluded.metadata,
			updated_at = excluded.updated_at
	`, post.ID, post.Source, post.OriginalID, post.URL, post.Title, post.Comment,
		string(post.Type), nullTime(post.PostTime), post.Favorite, string(metadataJSON),
		post.CreatedAt, post.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving post: %w", err)
	}
	return nil
}

// GetByOriginalID retrieves a post by its remote identity.
func (s *postStore) GetByOriginalID(ctx context.Context, source, originalID string) (*domain.Post, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, source, original_id, url, title, comment, type, post_time, favorite, metadata, created_at, updated_at
		FROM posts WHERE source = ? AND original_id = ?
	`, source, originalID)

	return scanPost(row)
}

// AttachTag links a tag to a post. Attaching the same tag twice is a no-op.
func (s *postStore) AttachTag(ctx context.Context, postID, tagID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO post_tags (post_id, tag_id) VALUES (?, ?)
		ON CONFLICT(post_id, tag_id) DO NOTHING
	`, postID, tagID)
	if err != nil {
		return fmt.Errorf("attaching tag: %w", err)
	}
	return nil
}

// ListTags returns all tags attached to a post.
func (s *postStore) ListTags(ctx context.Context, postID string) ([]domain.Tag, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT t.id, t.category, t.name, t.metadata
		FROM tags t JOIN post_tags pt ON pt.tag_id = t.id
		WHERE pt.post_id = ?
		ORDER BY t.category, t.name
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying post tags: %w", err)
	}
	defer rows.Close()

	return scanTags(rows)
}

// AddRelated links a related post. Duplicate links are no-ops.
func (s *postStore) AddRelated(ctx context.Context, postID, relatedID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO related_posts (post_id, related_id) VALUES (?, ?)
		ON CONFLICT(post_id, related_id) DO NOTHING
	`, postID, relatedID)
	if err != nil {
		return fmt.Errorf("adding related post: %w", err)
	}
	return nil
}

// ListRelated returns the ids of all posts related to a post.
func (s *postStore) ListRelated(ctx context.Context, postID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT related_id FROM related_posts WHERE post_id = ?
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying related posts: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning related post: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating related posts: %w", err)
	}

	return ids, nil
}

// ==================== Tag Store ====================

// tagStore implements driven.TagStore.
type tagStore struct {
	store *Store
}

var _ driven.TagStore = (*tagStore)(nil)

// GetOrCreate returns the tag with the given category and name,
// creating it when absent.
func (s *tagStore) GetOrCreate(ctx context.Context, category domain.TagCategory, name string) (*domain.Tag, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, category, name, metadata
		FROM tags WHERE category = ? AND name = ?
	`, string(category), name)

	tag, err := scanTag(row)
	if err == nil {
		return tag, nil
	}
	if err != domain.ErrNotFound {
		return nil, err
	}

	tag = &domain.Tag{
		ID:       uuid.New().String(),
		Category: category,
		Name:     name,
	}
	if err := s.Save(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}

// Save stores or updates a tag.
func (s *tagStore) Save(ctx context.Context, tag *domain.Tag) error {
	metadataJSON, err := json.Marshal(tag.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO tags (id, category, name, metadata)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			metadata = excluded.metadata
		ON CONFLICT(category, name) DO UPDATE SET
			metadata = excluded.metadata
	`, tag.ID, string(tag.Category), tag.Name, string(metadataJSON))

	if err != nil {
		return fmt.Errorf("saving tag: %w", err)
	}
	return nil
}

// ==================== File Store ====================

// fileStore implements driven.FileStore.
type fileStore struct {
	store *Store
}

var _ driven.FileStore = (*fileStore)(nil)

// Save stores or updates a file placeholder.
func (s *fileStore) Save(ctx context.Context, file *domain.File) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO files (id, post_id, remote_order, filename, present, thumb_present, local_path, thumb_path)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(post_id, remote_order) DO UPDATE SET
			filename = excluded.filename,
			present = excluded.present,
			thumb_present = excluded.thumb_present,
			local_path = excluded.local_path,
			thumb_path = excluded.thumb_path
	`, file.ID, file.PostID, file.RemoteOrder, file.Filename,
		file.Present, file.ThumbPresent, file.LocalPath, file.ThumbPath)

	if err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	return nil
}

// Get retrieves the file placeholder at a position within a post.
func (s *fileStore) Get(ctx context.Context, postID string, remoteOrder int64) (*domain.File, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, post_id, remote_order, filename, present, thumb_present, local_path, thumb_path
		FROM files WHERE post_id = ? AND remote_order = ?
	`, postID, remoteOrder)

	var file domain.File
	if err := row.Scan(&file.ID, &file.PostID, &file.RemoteOrder, &file.Filename,
		&file.Present, &file.ThumbPresent, &file.LocalPath, &file.ThumbPath); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning file: %w", err)
	}

	return &file, nil
}

// ListByPost returns all file placeholders of a post in remote order.
func (s *fileStore) ListByPost(ctx context.Context, postID string) ([]domain.File, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, post_id, remote_order, filename, present, thumb_present, local_path, thumb_path
		FROM files WHERE post_id = ?
		ORDER BY remote_order
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("querying files: %w", err)
	}
	defer rows.Close()

	var files []domain.File //nolint:prealloc // size unknown from query
	for rows.Next() {
		var file domain.File
		if err := rows.Scan(&file.ID, &file.PostID, &file.RemoteOrder, &file.Filename,
			&file.Present, &file.ThumbPresent, &file.LocalPath, &file.ThumbPath); err != nil {
			return nil, fmt.Errorf("scanning file: %w", err)
		}
		files = append(files, file)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating files: %w", err)
	}

	return files, nil
}

// ==================== Subscription Store ====================

// subscriptionStore implements driven.SubscriptionStore.
type subscriptionStore struct {
	store *Store
}

var _ driven.SubscriptionStore = (*subscriptionStore)(nil)

// Save stores or updates a subscription.
func (s *subscriptionStore) Save(ctx context.Context, sub *domain.Subscription) error {
	optionsJSON, err := json.Marshal(sub.Options)
	if err != nil {
		return fmt.Errorf("marshalling options: %w", err)
	}

	now := time.Now().UTC()
	if sub.CreatedAt.IsZero() {
		sub.CreatedAt = now
	}
	sub.UpdatedAt = now

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO subscriptions (id, name, source, options, state, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			source = excluded.source,
			options = excluded.options,
			state = excluded.state,
			updated_at = excluded.updated_at
	`, sub.ID, sub.Name, sub.Source, string(optionsJSON), sub.State,
		sub.CreatedAt, sub.UpdatedAt)

	if err != nil {
		return fmt.Errorf("saving subscription: %w", err)
	}
	return nil
}

// GetByName retrieves a subscription by its unique name.
func (s *subscriptionStore) GetByName(ctx context.Context, name string) (*domain.Subscription, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, source, options, state, created_at, updated_at
		FROM subscriptions WHERE name = ?
	`, name)

	return scanSubscription(row)
}

// List returns all subscriptions ordered by name.
func (s *subscriptionStore) List(ctx context.Context) ([]domain.Subscription, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, source, options, state, created_at, updated_at
		FROM subscriptions ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []domain.Subscription //nolint:prealloc // size unknown from query
	for rows.Next() {
		var sub domain.Subscription
		var optionsJSON string
		var createdAt, updatedAt sql.NullTime
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Source, &optionsJSON, &sub.State,
			&createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning subscription: %w", err)
		}

		if err := json.Unmarshal([]byte(optionsJSON), &sub.Options); err != nil {
			return nil, fmt.Errorf("unmarshaling options: %w", err)
		}
		if createdAt.Valid {
			sub.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			sub.UpdatedAt = updatedAt.Time
		}
		subs = append(subs, sub)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating subscriptions: %w", err)
	}

	return subs, nil
}

// AppendFeed appends a post to the end of a subscription feed.
// Appending a post already in the feed is a no-op that keeps its
// original position.
func (s *subscriptionStore) AppendFeed(ctx context.Context, subscriptionID, postID string) error {
	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO subscription_feed (subscription_id, post_id, position)
		SELECT ?, ?, COALESCE(MAX(position), 0) + 1
		FROM subscription_feed WHERE subscription_id = ?
		ON CONFLICT(subscription_id, post_id) DO NOTHING
	`, subscriptionID, postID, subscriptionID)
	if err != nil {
		return fmt.Errorf("appending to feed: %w", err)
	}
	return nil
}

// ListFeed returns the post ids of a subscription feed in append order.
func (s *subscriptionStore) ListFeed(ctx context.Context, subscriptionID string) ([]string, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT post_id FROM subscription_feed
		WHERE subscription_id = ?
		ORDER BY position
	`, subscriptionID)
	if err != nil {
		return nil, fmt.Errorf("querying feed: %w", err)
	}
	defer rows.Close()

	var ids []string //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning feed entry: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed: %w", err)
	}

	return ids, nil
}

// ==================== Helper Functions ====================

// nullTime converts a zero time to NULL for storage.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t
}

// scanPost scans a single post row.
func scanPost(row *sql.Row) (*domain.Post, error) {
	var post domain.Post
	var postType string
	var metadataJSON string
	var postTime, createdAt, updatedAt sql.NullTime

	if err := row.Scan(&post.ID, &post.Source, &post.OriginalID, &post.URL,
		&post.Title, &post.Comment, &postType, &postTime, &post.Favorite,
		&metadataJSON, &createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning post: %w", err)
	}

	post.Type = domain.PostType(postType)
	if postTime.Valid {
		post.PostTime = postTime.Time
	}
	if createdAt.Valid {
		post.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		post.UpdatedAt = updatedAt.Time
	}

	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &post.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &post, nil
}

// scanTag scans a single tag row.
func scanTag(row *sql.Row) (*domain.Tag, error) {
	var tag domain.Tag
	var category string
	var metadataJSON string

	if err := row.Scan(&tag.ID, &category, &tag.Name, &metadataJSON); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning tag: %w", err)
	}

	tag.Category = domain.TagCategory(category)
	if metadataJSON != "" && metadataJSON != jsonNull {
		if err := json.Unmarshal([]byte(metadataJSON), &tag.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}

	return &tag, nil
}

// scanTags scans multiple tag rows.
func scanTags(rows *sql.Rows) ([]domain.Tag, error) {
	var tags []domain.Tag //nolint:prealloc // size unknown from query
	for rows.Next() {
		var tag domain.Tag
		var category string
		var metadataJSON string
		if err := rows.Scan(&tag.ID, &category, &tag.Name, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scanning tag: %w", err)
		}

		tag.Category = domain.TagCategory(category)
		if metadataJSON != "" && metadataJSON != jsonNull {
			if err := json.Unmarshal([]byte(metadataJSON), &tag.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling metadata: %w", err)
			}
		}
		tags = append(tags, tag)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating tags: %w", err)
	}

	return tags, nil
}

// scanSubscription scans a single subscription row.
func scanSubscription(row *sql.Row) (*domain.Subscription, error) {
	var sub domain.Subscription
	var optionsJSON string
	var createdAt, updatedAt sql.NullTime

	if err := row.Scan(&sub.ID, &sub.Name, &sub.Source, &optionsJSON, &sub.State,
		&createdAt, &updatedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning subscription: %w", err)
	}

	if err := json.Unmarshal([]byte(optionsJSON), &sub.Options); err != nil {
		return nil, fmt.Errorf("unmarshaling options: %w", err)
	}
	if createdAt.Valid {
		sub.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		sub.UpdatedAt = updatedAt.Time
	}

	return &sub, nil
}
