package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/storage"
)

// Tests run against a live database named by GALLERY_POSTGRES_DSN.
// The videos table is truncated before each test.
func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	dsn := os.Getenv("GALLERY_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("GALLERY_POSTGRES_DSN is not set")
	}

	s, err := New(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Stop() })

	require.NoError(t, s.Migrate())

	_, err = s.db.Exec(`TRUNCATE videos`)
	require.NoError(t, err)

	return s
}

func fakeVideoIn(category models.Category) models.VideoIn {
	return models.VideoIn{
		Name:        gofakeit.Sentence(3),
		Size:        int64(gofakeit.IntRange(1, 50<<20)),
		StoragePath: gofakeit.UUID() + ".mp4",
		Category:    category,
	}
}

func TestSaveAndList(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	first, err := s.SaveVideo(ctx, fakeVideoIn(models.CategoryBreathing))
	require.NoError(t, err)
	second, err := s.SaveVideo(ctx, fakeVideoIn(models.CategoryMeditation))
	require.NoError(t, err)

	assert.NotEmpty(t, first.ID)
	assert.False(t, first.CreatedAt.IsZero())

	videos, err := s.Videos(ctx, models.VideoFilter{})
	require.NoError(t, err)
	require.Len(t, videos, 2)
	assert.Equal(t, second.ID, videos[0].ID)
	assert.Equal(t, first.ID, videos[1].ID)

	videos, err = s.Videos(ctx, models.VideoFilter{Category: models.CategoryMeditation})
	require.NoError(t, err)
	require.Len(t, videos, 1)
	assert.Equal(t, second.ID, videos[0].ID)
}

func TestSaveDuplicatePath(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	in := fakeVideoIn(models.CategorySeniorYoga)
	_, err := s.SaveVideo(ctx, in)
	require.NoError(t, err)

	_, err = s.SaveVideo(ctx, in)
	require.ErrorIs(t, err, storage.ErrVideoExists)
}

func TestDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	v, err := s.SaveVideo(ctx, fakeVideoIn(models.CategoryRelaxationMusic))
	require.NoError(t, err)

	require.NoError(t, s.DeleteVideo(ctx, v.ID))
	require.ErrorIs(t, s.DeleteVideo(ctx, v.ID), storage.ErrVideoNotFound)
	require.ErrorIs(t, s.DeleteVideo(ctx, "not-a-uuid"), storage.ErrVideoNotFound)
}

func TestDeleteMalformedID(t *testing.T) {
	// rejected before the database is reached
	s := &Storage{}

	err := s.DeleteVideo(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, storage.ErrVideoNotFound)
}
