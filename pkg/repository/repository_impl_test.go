package repository

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/smallbiznis/voltshop/pkg/db/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type widget struct {
	ID     int64 `gorm:"primaryKey"`
	Name   string
	Status string
}

func TestStore(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:repository_store?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&widget{}))

	ctx := context.Background()
	s := ProvideStore[widget](db)

	require.NoError(t, s.Create(ctx, &widget{ID: 1, Name: "a", Status: "sending"}))
	require.NoError(t, s.Create(ctx, &widget{ID: 2, Name: "b", Status: "completed"}))
	require.NoError(t, s.Create(ctx, &widget{ID: 3, Name: "c", Status: "completed"}))

	missing, err := s.FindOne(ctx, &widget{ID: 99})
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.Update(ctx, 1, map[string]any{"status": "completed"}))
	assert.ErrorIs(t, s.Update(ctx, 99, map[string]any{"status": "completed"}), ErrNoRows)
	got, err := s.FindOne(ctx, &widget{ID: 1})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "completed", got.Status)

	n, err := s.Count(ctx, &widget{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	rows, err := s.Find(ctx, &widget{}, option.WithOrder("id desc"), option.WithLimit(2))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(3), rows[0].ID)

	none, err := s.Find(ctx, &widget{Status: "archived"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err = s.Count(ctx, &widget{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}
