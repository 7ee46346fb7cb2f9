package fantia

import (
	"context"

	"github.com/kitsumori/fanvault/internal/core/domain"
	"github.com/kitsumori/fanvault/internal/logger"
)

// API is the subset of the client consumed by the iterator and the
// normaliser. Tests substitute a fake.
type API interface {
	GetPost(ctx context.Context, id int64) (*RemotePost, error)
	GetFanclub(ctx context.Context, id int64) (*Fanclub, error)
	DownloadFile(ctx context.Context, url, filename string) (string, error)
	FileURL(uri string) string
}

var _ API = (*Client)(nil)

// CreatorIterator walks a creator's feed one record at a time, in a
// fixed direction, following the next/previous links embedded in each
// record. The remote API has no random-access pagination: resumption
// relies entirely on the cursor.
//
// The iterator mutates the cursor it was given as records are yielded;
// persisting it after each yield is the caller's responsibility.
type CreatorIterator struct {
	api       API
	creatorID int64
	cursor    *Cursor
	direction domain.FetchDirection
	limit     int

	nextID *int64
	primed bool
	done   bool
	count  int
}

// NewCreatorIterator creates an iterator over the creator's feed.
// A limit of 0 means unbounded; the sequence still terminates when a
// record has no link in the walking direction.
func NewCreatorIterator(api API, creatorID int64, cursor *Cursor, direction domain.FetchDirection, limit int) *CreatorIterator {
	return &CreatorIterator{
		api:       api,
		creatorID: creatorID,
		cursor:    cursor,
		direction: direction,
		limit:     limit,
	}
}

// Cursor returns the cursor the iterator advances.
func (it *CreatorIterator) Cursor() *Cursor {
	return it.cursor
}

// Next returns the next record, or (nil, nil) when the sequence is
// exhausted or the limit is reached.
//
// If the cursor points at a record that has been deleted upstream, the
// refetch fails and the run aborts with that error; the cursor is left
// untouched so the operator can clear the subscription state to force
// a re-seed. Resetting automatically would silently skip every record
// between the deleted one and a fresh seed.
func (it *CreatorIterator) Next(ctx context.Context) (*RemotePost, error) {
	if it.done || (it.limit > 0 && it.count >= it.limit) {
		return nil, nil
	}

	if !it.primed {
		if err := it.prime(ctx); err != nil {
			return nil, err
		}
		if it.done {
			return nil, nil
		}
	}

	record, err := it.api.GetPost(ctx, *it.nextID)
	if err != nil {
		return nil, err
	}
	logger.Debug("fetched record %d", record.ID)

	it.count++
	it.cursor.Advance(it.direction, record.ID)

	if next := record.Links.Neighbour(it.direction); next != nil {
		id := next.ID
		it.nextID = &id
	} else {
		it.done = true
	}

	return record, nil
}

// prime determines the first record id to fetch: resume from the
// cursor when one exists for the walking direction, otherwise seed
// both ends from the creator's most recent post.
func (it *CreatorIterator) prime(ctx context.Context) error {
	it.primed = true

	resumeID := it.cursor.IDFor(it.direction)
	if resumeID == nil {
		fanclub, err := it.api.GetFanclub(ctx, it.creatorID)
		if err != nil {
			return err
		}
		if len(fanclub.RecentPosts) == 0 {
			it.done = true
			return nil
		}

		seed := fanclub.RecentPosts[0].ID
		it.cursor.Seed(seed)
		it.nextID = &seed
		logger.Debug("seeded cursor for creator %d at record %d", it.creatorID, seed)
		return nil
	}

	// The cursor record itself was already processed: refetch it only
	// to follow its link in the walking direction.
	record, err := it.api.GetPost(ctx, *resumeID)
	if err != nil {
		return err
	}

	next := record.Links.Neighbour(it.direction)
	if next == nil {
		it.done = true
		return nil
	}

	id := next.ID
	it.nextID = &id
	return nil
}
