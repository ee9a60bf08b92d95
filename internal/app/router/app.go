package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nurvideo/gallery/internal/lib/logger/sl"

	authSrv "github.com/nurvideo/gallery/internal/service/auth"
	jwtSrv "github.com/nurvideo/gallery/internal/service/jwt"
	"github.com/nurvideo/gallery/internal/service/session"
	videoSrv "github.com/nurvideo/gallery/internal/service/video"

	authCtr "github.com/nurvideo/gallery/internal/controller/auth"
	categoryCtr "github.com/nurvideo/gallery/internal/controller/category"
	filesCtr "github.com/nurvideo/gallery/internal/controller/files"
	jwtCtr "github.com/nurvideo/gallery/internal/controller/jwt"
	videoCtr "github.com/nurvideo/gallery/internal/controller/video"
	"github.com/nurvideo/gallery/internal/models"
)

type App struct {
	log     *slog.Logger
	address string
	app     *fiber.App
}

// New returns configured router.App.
// files is nil unless blobs are kept on the local disk.
func New(
	log *slog.Logger,
	address string,
	timeout time.Duration,
	idleTimeout time.Duration,
	tokenTTL time.Duration,
	secret []byte,
	gate *session.Gate,
	videos *videoSrv.Service,
	files filesCtr.Store,
) *App {
	// Create sevices
	jwt := jwtSrv.New(secret)

	auth := authSrv.New(
		log,
		gate,
		jwt,
		tokenTTL,
	)

	// Create controller helper
	jwtCtr := jwtCtr.New(secret, gate)

	app := fiber.New(fiber.Config{
		// let upload handler report oversized files itself
		BodyLimit:   int(2 * models.MaxUploadSize),
		IdleTimeout: idleTimeout,
	})

	// Mount controllers to an app
	app.Mount("/", authCtr.New(timeout, auth, jwtCtr))
	app.Mount("/videos", videoCtr.New(timeout, videos, jwtCtr))
	app.Mount("/categories", categoryCtr.New())
	if files != nil {
		app.Mount("/files", filesCtr.New(files))
	}

	return &App{
		log:     log,
		address: address,
		app:     app,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	a.log.Info("http server started", slog.String("address", a.address))

	return a.app.Listen(a.address)
}

func (a *App) Stop() {
	if err := a.app.Shutdown(); err != nil {
		a.log.Warn("http server shutdown", sl.Err(err))
	}
}
