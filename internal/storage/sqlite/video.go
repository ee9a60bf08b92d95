package sqlite

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/storage"
)

// SaveVideo inserts video row and returns it
// with id and timestamps filled in.
func (s *Storage) SaveVideo(ctx context.Context, in models.VideoIn) (models.Video, error) {
	const op = "storage.sqlite.SaveVideo"

	stmt, err := s.db.PrepareContext(ctx, `
		INSERT INTO videos(id, name, size, storage_path, category, created_at, updated_at)
		VALUES(?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return models.Video{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	id := uuid.NewString()
	// microseconds are what the column keeps
	now := s.now().UTC().Truncate(time.Microsecond)

	_, err = stmt.ExecContext(ctx,
		id,
		in.Name,
		in.Size,
		in.StoragePath,
		string(in.Category),
		now.UnixMicro(),
		now.UnixMicro(),
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) &&
			(sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
				sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey) {
			return models.Video{}, fmt.Errorf("%s: %w", op, storage.ErrVideoExists)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return models.Video{}, storage.ErrContextCancelled
		}

		return models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.Video{
		ID:          id,
		Name:        in.Name,
		Size:        in.Size,
		StoragePath: in.StoragePath,
		Category:    in.Category,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Videos returns videos matching filter, most recent first.
func (s *Storage) Videos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	const op = "storage.sqlite.Videos"

	query := "SELECT id, name, size, storage_path, category, created_at, updated_at FROM videos"
	args := make([]any, 0, 1)
	if !filter.All() {
		query += " WHERE category = ?"
		args = append(args, string(filter.Category))
	}
	// rowid breaks ties between rows inserted within one microsecond
	query += " ORDER BY created_at DESC, rowid DESC"

	stmt, err := s.db.PrepareContext(ctx, query)
	if err != nil {
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return []models.Video{}, storage.ErrContextCancelled
		}
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	videos := make([]models.Video, 0)
	var (
		video                models.Video
		category             string
		createdUs, updatedUs int64
	)
	for rows.Next() {
		if err = rows.Scan(
			&video.ID,
			&video.Name,
			&video.Size,
			&video.StoragePath,
			&category,
			&createdUs,
			&updatedUs,
		); err != nil {
			return []models.Video{}, fmt.Errorf("%s: %w", op, err)
		}
		video.Category = models.Category(category)
		video.CreatedAt = time.UnixMicro(createdUs).UTC()
		video.UpdatedAt = time.UnixMicro(updatedUs).UTC()

		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return []models.Video{}, fmt.Errorf("%s: %w", op, err)
	}

	return videos, nil
}

// DeleteVideo deletes video row by id.
func (s *Storage) DeleteVideo(ctx context.Context, id string) error {
	const op = "storage.sqlite.DeleteVideo"

	stmt, err := s.db.PrepareContext(ctx, "DELETE FROM videos WHERE id = ?")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return storage.ErrContextCancelled
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	affectedRows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affectedRows == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrVideoNotFound)
	}

	return nil
}
