package video

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/nurvideo/gallery/internal/models"
)

type BlobStoreMock struct {
	mock.Mock
}

func (m *BlobStoreMock) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	args := m.Called(ctx, key, r, size, contentType)
	return args.Error(0)
}

func (m *BlobStoreMock) Remove(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *BlobStoreMock) PublicURL(key string) string {
	args := m.Called(key)
	return args.String(0)
}

func (m *BlobStoreMock) SignedURL(ctx context.Context, key string, ttl time.Duration, download bool) (string, error) {
	args := m.Called(ctx, key, ttl, download)
	return args.String(0), args.Error(1)
}

type RecordStoreMock struct {
	mock.Mock
}

func (m *RecordStoreMock) SaveVideo(ctx context.Context, in models.VideoIn) (models.Video, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Video), args.Error(1)
}

func (m *RecordStoreMock) Videos(ctx context.Context, filter models.VideoFilter) ([]models.Video, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]models.Video), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RecordStoreMock) DeleteVideo(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishVideoEvent(ctx context.Context, event models.VideoEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}
