package files

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/nurvideo/gallery/internal/storage"
)

// New returns an fiber.App serving blobs of the local
// store: public playback and signed downloads.
func New(store Store) *fiber.App {
	filesCtr := filesController{
		store: store,
	}

	app := fiber.New()

	app.Get("/public/:key", filesCtr.public)
	app.Get("/download/:key", filesCtr.download)

	return app
}

type filesController struct {
	store Store
}

type Store interface {
	Path(key string) (string, error)
	Verify(token, key string) (bool, error)
}

func (filesCtr *filesController) public(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	path, err := filesCtr.store.Path(key)
	if err != nil {
		return filesCtr.pathError(c, err)
	}

	return c.SendFile(path)
}

func (filesCtr *filesController) download(c *fiber.Ctx) error {
	key, err := url.PathUnescape(c.Params("key"))
	if err != nil {
		return c.SendStatus(fiber.StatusBadRequest)
	}

	attachment, err := filesCtr.store.Verify(c.Query("token"), key)
	if err != nil {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "link expired or invalid",
		})
	}

	path, err := filesCtr.store.Path(key)
	if err != nil {
		return filesCtr.pathError(c, err)
	}

	if attachment {
		return c.Download(path, key)
	}
	return c.SendFile(path)
}

func (filesCtr *filesController) pathError(c *fiber.Ctx, err error) error {
	if errors.Is(err, storage.ErrBlobNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "file not found",
		})
	}
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": "invalid key",
	})
}
