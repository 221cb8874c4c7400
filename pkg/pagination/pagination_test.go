package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeLimit(t *testing.T) {
	assert.Equal(t, DefaultLimit, NormalizeLimit(0))
	assert.Equal(t, MaxLimit, NormalizeLimit(500))
	assert.Equal(t, 10, NormalizeLimit(10))
	assert.Equal(t, 11, LimitWithBuffer(10))
}

func TestCursorRoundTrip(t *testing.T) {
	id := uuid.New()
	at := time.Date(2026, 5, 1, 10, 30, 0, 123, time.UTC)

	parsed, err := ParseCursor(EncodeCursor(Cursor{Key: TimeKey(at), ID: id}))
	require.NoError(t, err)
	require.NotNil(t, parsed)
	assert.Equal(t, id, parsed.ID)
	got, err := parsed.Time()
	require.NoError(t, err)
	assert.True(t, at.Equal(got))

	withPipe, err := ParseCursor(EncodeCursor(Cursor{Key: "Falcon | X", ID: id}))
	require.NoError(t, err)
	assert.Equal(t, "Falcon | X", withPipe.Key)
}

func TestParseCursorErrors(t *testing.T) {
	c, err := ParseCursor("  ")
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = ParseCursor("%%%")
	assert.Error(t, err)
	_, err = ParseCursor("bm9waXBl")
	assert.Error(t, err)
}

func TestTrim(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	keyOf := func(id uuid.UUID) Cursor { return Cursor{Key: "k", ID: id} }

	page, next := Trim(ids, 2, keyOf)
	assert.Len(t, page, 2)
	require.NotEmpty(t, next)
	c, err := ParseCursor(next)
	require.NoError(t, err)
	assert.Equal(t, ids[1], c.ID)

	page, next = Trim(ids[:2], 2, keyOf)
	assert.Len(t, page, 2)
	assert.Empty(t, next)
}
