package fantia

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitsumori/fanvault/internal/core/domain"
)

func TestDecodeCursorEmpty(t *testing.T) {
	cursor, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, cursor.HeadID)
	assert.Nil(t, cursor.TailID)
}

func TestDecodeCursorInvalid(t *testing.T) {
	_, err := DecodeCursor("{not json")
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := &Cursor{}
	cursor.Seed(42)

	state, err := cursor.Encode()
	require.NoError(t, err)

	decoded, err := DecodeCursor(state)
	require.NoError(t, err)
	require.NotNil(t, decoded.HeadID)
	require.NotNil(t, decoded.TailID)
	assert.Equal(t, int64(42), *decoded.HeadID)
	assert.Equal(t, int64(42), *decoded.TailID)
}

func TestCursorSeedSetsBothEnds(t *testing.T) {
	cursor := &Cursor{}
	assert.Nil(t, cursor.IDFor(domain.DirectionNewer))
	assert.Nil(t, cursor.IDFor(domain.DirectionOlder))

	cursor.Seed(7)
	require.NotNil(t, cursor.IDFor(domain.DirectionNewer))
	require.NotNil(t, cursor.IDFor(domain.DirectionOlder))
	assert.Equal(t, int64(7), *cursor.IDFor(domain.DirectionNewer))
	assert.Equal(t, int64(7), *cursor.IDFor(domain.DirectionOlder))
}

func TestCursorAdvanceMovesOneEnd(t *testing.T) {
	cursor := &Cursor{}
	cursor.Seed(10)

	cursor.Advance(domain.DirectionOlder, 9)
	assert.Equal(t, int64(10), *cursor.HeadID)
	assert.Equal(t, int64(9), *cursor.TailID)

	cursor.Advance(domain.DirectionNewer, 11)
	assert.Equal(t, int64(11), *cursor.HeadID)
	assert.Equal(t, int64(9), *cursor.TailID)
}
