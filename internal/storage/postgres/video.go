package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/storage"
)

const uniqueViolation = "23505"

const videoColumns = `id::text AS id, name, size, storage_path, category, created_at, updated_at`

func (s *Storage) SaveVideo(ctx context.Context, in models.VideoIn) (models.Video, error) {
	const op = "storage.postgres.SaveVideo"

	const q = `
		INSERT INTO videos (name, size, storage_path, category)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + videoColumns

	var v models.Video
	if err := s.db.GetContext(ctx, &v, q, in.Name, in.Size, in.StoragePath, string(in.Category)); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return models.Video{}, fmt.Errorf("%s: %w", op, storage.ErrVideoExists)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Video{}, storage.ErrContextCancelled
		}
		return models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return normalize(v), nil
}

func (s *Storage) Videos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	const op = "storage.postgres.Videos"

	var (
		videos []models.Video
		err    error
	)
	if filter.All() {
		err = s.db.SelectContext(ctx, &videos,
			`SELECT `+videoColumns+` FROM videos ORDER BY created_at DESC, id DESC`)
	} else {
		err = s.db.SelectContext(ctx, &videos,
			`SELECT `+videoColumns+` FROM videos WHERE category = $1 ORDER BY created_at DESC, id DESC`,
			string(filter.Category))
	}
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return []models.Video{}, storage.ErrContextCancelled
		}
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	if videos == nil {
		videos = []models.Video{}
	}
	for i := range videos {
		videos[i] = normalize(videos[i])
	}

	return videos, nil
}

func (s *Storage) DeleteVideo(ctx context.Context, id string) error {
	const op = "storage.postgres.DeleteVideo"

	// malformed ids can not match any row
	uid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, storage.ErrVideoNotFound)
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM videos WHERE id = $1`, uid)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return storage.ErrContextCancelled
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrVideoNotFound)
	}

	return nil
}

func normalize(v models.Video) models.Video {
	v.CreatedAt = v.CreatedAt.UTC()
	v.UpdatedAt = v.UpdatedAt.UTC()
	return v
}
