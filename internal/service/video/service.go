package video

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/nurvideo/gallery/internal/lib/logger/sl"
	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/service"
	"github.com/nurvideo/gallery/internal/storage"
)

// rollback must outlive a cancelled upload request
const rollbackTimeout = 10 * time.Second

type Service struct {
	log     *slog.Logger
	blobs   BlobStore
	records RecordStore
	events  EventPublisher

	now    func() time.Time
	keyGen func(filename string, at time.Time) string
}

type BlobStore interface {
	// Put must not overwrite, storage.ErrBlobExists is returned for a taken key.
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Remove(ctx context.Context, keys ...string) error
	PublicURL(key string) string
	SignedURL(ctx context.Context, key string, ttl time.Duration, download bool) (string, error)
}

type RecordStore interface {
	SaveVideo(ctx context.Context, in models.VideoIn) (models.Video, error)
	Videos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error)
	DeleteVideo(ctx context.Context, id string) error
}

type EventPublisher interface {
	PublishVideoEvent(ctx context.Context, event models.VideoEvent) error
}

func New(
	log *slog.Logger,
	blobs BlobStore,
	records RecordStore,
	events EventPublisher,
) *Service {
	return &Service{
		log:     log,
		blobs:   blobs,
		records: records,
		events:  events,
		now:     time.Now,
		keyGen:  storageKey,
	}
}

// Upload stores blob and inserts its record.
//
// Blank name falls back to the file name, empty category to CategoryAll.
// If the record can't be inserted, the stored blob is removed once,
// removal failure is only logged.
func (s *Service) Upload(ctx context.Context, blob *models.Blob, name string, category models.Category) (models.Video, error) {
	const op = "Video.Upload"

	log := s.log.With(
		slog.String("op", op),
	)

	if blob == nil {
		return models.Video{}, fmt.Errorf("%s: %w: no file", op, service.ErrValidation)
	}
	if blob.Size < 0 {
		return models.Video{}, fmt.Errorf("%s: %w: negative size", op, service.ErrValidation)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = blob.Filename
	}
	if name == "" {
		return models.Video{}, fmt.Errorf("%s: %w: name required", op, service.ErrValidation)
	}

	if category == "" {
		category = models.CategoryAll
	}
	if !category.Valid() {
		return models.Video{}, fmt.Errorf("%s: %w (%w): %q", op, service.ErrValidation, service.ErrInvalidCategory, category)
	}

	key := s.keyGen(blob.Filename, s.now())

	log = log.With(slog.String("key", key))

	if err := s.blobs.Put(ctx, key, blob.Body, blob.Size, blob.ContentType); err != nil {
		log.Error("failed to store blob", sl.Err(err))

		return models.Video{}, fmt.Errorf("%s: %w (%w): %w", op, service.ErrUploadFailed, service.ErrStorage, err)
	}

	video, err := s.records.SaveVideo(ctx, models.VideoIn{
		Name:        name,
		Size:        blob.Size,
		StoragePath: key,
		Category:    category,
	})
	if err != nil {
		log.Error("failed to save record, removing blob", sl.Err(err))

		s.rollback(ctx, log, key)

		return models.Video{}, fmt.Errorf("%s: %w (%w): %w", op, service.ErrUploadFailed, service.ErrRecord, err)
	}

	log.Info("video uploaded", slog.String("id", video.ID))

	s.publish(ctx, log, models.NewVideoEvent(models.VideoUploaded, video, s.now().UTC()))

	return video, nil
}

// List returns videos of category, most recent first.
// Empty category and CategoryAll select everything.
func (s *Service) List(ctx context.Context, category models.Category) ([]models.Video, error) {
	const op = "Video.List"

	if category != "" && !category.Valid() {
		return nil, fmt.Errorf("%s: %w (%w): %q", op, service.ErrValidation, service.ErrInvalidCategory, category)
	}

	videos, err := s.records.Videos(ctx, models.VideoFilter{Category: category})
	if err != nil {
		s.log.Error("failed to list videos",
			slog.String("op", op),
			slog.String("category", string(category)),
			sl.Err(err),
		)

		if errors.Is(err, storage.ErrContextCancelled) {
			return nil, fmt.Errorf("%s: %w (%w)", op, service.ErrRecord, service.ErrTimeout)
		}
		return nil, fmt.Errorf("%s: %w: %w", op, service.ErrRecord, err)
	}

	return videos, nil
}

// Delete removes blob, then record. If blob removal
// fails the record is left untouched.
func (s *Service) Delete(ctx context.Context, id, storagePath string) error {
	const op = "Video.Delete"

	log := s.log.With(
		slog.String("op", op),
		slog.String("id", id),
		slog.String("key", storagePath),
	)

	if id == "" || storagePath == "" {
		return fmt.Errorf("%s: %w: id and storage path required", op, service.ErrValidation)
	}

	if err := s.blobs.Remove(ctx, storagePath); err != nil {
		log.Error("failed to remove blob", sl.Err(err))

		return fmt.Errorf("%s: %w: %w", op, service.ErrStorage, err)
	}

	if err := s.records.DeleteVideo(ctx, id); err != nil {
		if errors.Is(err, storage.ErrVideoNotFound) {
			log.Warn("record not found")

			return fmt.Errorf("%s: %w", op, service.ErrVideoNotFound)
		}
		log.Error("failed to delete record", sl.Err(err))

		return fmt.Errorf("%s: %w: %w", op, service.ErrRecord, err)
	}

	log.Info("video deleted")

	s.publish(ctx, log, models.NewVideoEvent(
		models.VideoDeleted,
		models.Video{ID: id, StoragePath: storagePath},
		s.now().UTC(),
	))

	return nil
}

// StreamingURL returns durable public URL of the blob.
func (s *Service) StreamingURL(storagePath string) string {
	return s.blobs.PublicURL(storagePath)
}

// DownloadURL returns URL that forces download
// and expires after models.DownloadURLTTL.
func (s *Service) DownloadURL(ctx context.Context, storagePath string) (string, error) {
	const op = "Video.DownloadURL"

	if storagePath == "" {
		return "", fmt.Errorf("%s: %w: storage path required", op, service.ErrValidation)
	}

	url, err := s.blobs.SignedURL(ctx, storagePath, models.DownloadURLTTL, true)
	if err != nil {
		s.log.Error("failed to sign url",
			slog.String("op", op),
			slog.String("key", storagePath),
			sl.Err(err),
		)

		return "", fmt.Errorf("%s: %w: %w", op, service.ErrURLGeneration, err)
	}
	if url == "" {
		return "", fmt.Errorf("%s: %w: empty url", op, service.ErrURLGeneration)
	}

	return url, nil
}

func (s *Service) rollback(ctx context.Context, log *slog.Logger, key string) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	if err := s.blobs.Remove(ctx, key); err != nil {
		log.Error("failed to remove orphan blob", sl.Err(err))
		return
	}

	log.Info("orphan blob removed")
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, event models.VideoEvent) {
	if err := s.events.PublishVideoEvent(ctx, event); err != nil {
		log.Warn("failed to publish event",
			slog.String("event", string(event.Type)),
			sl.Err(err),
		)
	}
}
