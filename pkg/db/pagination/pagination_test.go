package pagination

import (
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2025, 3, 1, 10, 0, 0, 123, time.UTC)
	token := CursorFor("42", at)
	require.NotEmpty(t, token)

	cursor, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, "42", cursor.ID)
	assert.Equal(t, at.Format(time.RFC3339Nano), cursor.CreatedAt)

	_, err = DecodeCursor("%%%")
	assert.Error(t, err)
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, DefaultPageSize, Pagination{}.Normalize().PageSize)
	assert.Equal(t, MaxPageSize, Pagination{PageSize: 10_000}.Normalize().PageSize)
	assert.Equal(t, 5, Pagination{PageSize: 5}.Normalize().PageSize)
}

func TestTrim(t *testing.T) {
	rows := []int{1, 2, 3}
	key := func(v int) string { return strconv.Itoa(v) }

	page, info := Trim(rows, 2, key)
	assert.Equal(t, []int{1, 2}, page)
	assert.True(t, info.HasMore)
	assert.Equal(t, "2", info.NextPageToken)

	page, info = Trim(rows, 5, key)
	assert.Len(t, page, 3)
	assert.False(t, info.HasMore)
	assert.Empty(t, info.NextPageToken)
}
