package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	routerApp "github.com/nurvideo/gallery/internal/app/router"
	"github.com/nurvideo/gallery/internal/config"
	filesCtr "github.com/nurvideo/gallery/internal/controller/files"
	"github.com/nurvideo/gallery/internal/events"
	"github.com/nurvideo/gallery/internal/lib/logger/sl"
	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/service/credentials"
	"github.com/nurvideo/gallery/internal/service/session"
	videoSrv "github.com/nurvideo/gallery/internal/service/video"
	"github.com/nurvideo/gallery/internal/storage/blob/fs"
	"github.com/nurvideo/gallery/internal/storage/blob/s3"
	"github.com/nurvideo/gallery/internal/storage/kv"
	"github.com/nurvideo/gallery/internal/storage/postgres"
	"github.com/nurvideo/gallery/internal/storage/sqlite"
)

const connectTimeout = 10 * time.Second

type App struct {
	Router *routerApp.App
	Gate   *session.Gate
	Videos *videoSrv.Service

	closers []io.Closer
}

type Records interface {
	videoSrv.RecordStore
	Migrate() error
	Stop() error
}

type Blobs interface {
	videoSrv.BlobStore
}

type Publisher interface {
	videoSrv.EventPublisher
	Close() error
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// New builds backends chosen by cfg and
// restores persisted session.
func New(log *slog.Logger, cfg *config.Config) (*App, error) {
	const op = "app.New"

	a := &App{}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	records, err := newRecords(ctx, cfg.Records)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, closerFunc(records.Stop))

	if cfg.Records.AutoMigrate {
		if err := records.Migrate(); err != nil {
			a.Stop(log)
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	blobs, files, err := newBlobs(ctx, cfg.Blobs, []byte(cfg.JWTSecret))
	if err != nil {
		a.Stop(log)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	publisher, err := newPublisher(cfg.Events)
	if err != nil {
		a.Stop(log)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	a.closers = append(a.closers, publisher)

	store, err := kv.NewFile(cfg.Session.StorePath)
	if err != nil {
		a.Stop(log)
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	a.Gate = session.New(log, credentials.MustDefault(), store, models.AdminIdentity)
	a.Gate.Rehydrate()

	a.Videos = videoSrv.New(log, blobs, records, publisher)

	a.Router = routerApp.New(
		log,
		cfg.HTTPServer.Address,
		cfg.HTTPServer.Timeout,
		cfg.HTTPServer.IdleTimeout,
		cfg.HTTPServer.TokenTTL,
		[]byte(cfg.JWTSecret),
		a.Gate,
		a.Videos,
		files,
	)

	return a, nil
}

// Stop releases backends in reverse order.
func (a *App) Stop(log *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			log.Warn("failed to close backend", sl.Err(err))
		}
	}
	a.closers = nil
}

func newRecords(ctx context.Context, cfg config.Records) (Records, error) {
	switch cfg.Backend {
	case config.RecordsSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755); err != nil {
			return nil, err
		}
		return sqlite.New(cfg.SQLitePath)
	case config.RecordsPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	}
	return nil, fmt.Errorf("unknown records backend %q", cfg.Backend)
}

// newBlobs returns files store too when blobs are
// served by this process.
func newBlobs(ctx context.Context, cfg config.Blobs, secret []byte) (Blobs, filesCtr.Store, error) {
	switch cfg.Backend {
	case config.BlobsFS:
		store, err := fs.New(cfg.FS.Root, cfg.FS.BaseURL, secret)
		if err != nil {
			return nil, nil, err
		}
		return store, store, nil
	case config.BlobsS3:
		store, err := s3.NewClient(ctx, s3.Config{
			Bucket:    cfg.S3.Bucket,
			Region:    cfg.S3.Region,
			Endpoint:  cfg.S3.Endpoint,
			AccessKey: cfg.S3.AccessKey,
			SecretKey: cfg.S3.SecretKey,
			PathStyle: cfg.S3.PathStyle,
			PublicURL: cfg.S3.PublicURL,
		})
		if err != nil {
			return nil, nil, err
		}
		return store, nil, nil
	}
	return nil, nil, fmt.Errorf("unknown blobs backend %q", cfg.Backend)
}

func newPublisher(cfg config.Events) (Publisher, error) {
	if len(cfg.Brokers) == 0 {
		return events.Nop{}, nil
	}
	return events.NewProducer(cfg.Brokers, cfg.Topic, cfg.WriteTimeout)
}
