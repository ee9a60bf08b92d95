package controller

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	jwtController "github.com/nurvideo/gallery/internal/controller/jwt"
	"github.com/nurvideo/gallery/internal/lib/upload"
	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/service"
)

func New(
	timeout time.Duration,
	srv Video,
	jwtC *jwtController.JWT,
) *fiber.App {
	videoCtr := videoController{
		timeout: timeout,
		srv:     srv,
	}

	app := fiber.New()

	// listing and links are open
	app.Get("/", videoCtr.list)
	app.Get("/stream-url", videoCtr.streamURL)
	app.Get("/download-url", videoCtr.downloadURL)

	// token validity -> open session -> handling request
	app.Post("/", jwtC.AuthRequired(), jwtC.SessionRequired(), videoCtr.upload)
	app.Delete("/:id", jwtC.AuthRequired(), jwtC.SessionRequired(), videoCtr.delete)

	return app
}

type videoController struct {
	timeout time.Duration
	srv     Video
}

type Video interface {
	Upload(ctx context.Context, blob *models.Blob, name string, category models.Category) (models.Video, error)
	List(ctx context.Context, category models.Category) ([]models.Video, error)
	Delete(ctx context.Context, id, storagePath string) error
	StreamingURL(storagePath string) string
	DownloadURL(ctx context.Context, storagePath string) (string, error)
}

type videoOut struct {
	models.Video
	CategoryLabel string `json:"category_label"`
	URL           string `json:"url"`
}

// list returns videos of the requested category, most recent first.
func (videoCtr *videoController) list(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), videoCtr.timeout)
	defer cancel()

	category, err := models.ParseCategory(c.Query("category"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	videos, err := videoCtr.srv.List(ctx, category)
	if err != nil {
		if errors.Is(err, service.ErrTimeout) {
			return c.Status(fiber.StatusGatewayTimeout).JSON(fiber.Map{
				"error": "timeout",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load videos",
		})
	}

	lang := models.LabelLanguage(c.Get(fiber.HeaderAcceptLanguage))

	out := make([]videoOut, 0, len(videos))
	for _, v := range videos {
		out = append(out, videoOut{
			Video:         v,
			CategoryLabel: v.Category.Label(lang),
			URL:           videoCtr.srv.StreamingURL(v.StoragePath),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"videos": out,
	})
}

// upload checks sent file and stores it as a new video
func (videoCtr *videoController) upload(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), videoCtr.timeout)
	defer cancel()

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file required",
		})
	}

	category, err := models.ParseCategory(c.FormValue("category"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	body, err := file.Open()
	if err != nil {
		return c.SendStatus(fiber.StatusInternalServerError)
	}
	defer body.Close()

	name := c.FormValue("name")

	contentType, err := upload.Check(name, file.Size, file.Header.Get(fiber.HeaderContentType), body)
	if err != nil {
		switch {
		case errors.Is(err, upload.ErrTooLarge):
			return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
				"error": err.Error(),
			})
		case errors.Is(err, upload.ErrNameRequired), errors.Is(err, upload.ErrNotVideo):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	video, err := videoCtr.srv.Upload(ctx, &models.Blob{
		Filename:    file.Filename,
		ContentType: contentType,
		Size:        file.Size,
		Body:        body,
	}, name, category)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid upload",
			})
		case errors.Is(err, service.ErrStorage):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "upload failed: storage failure",
			})
		case errors.Is(err, service.ErrRecord):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "upload failed: record failure",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	lang := models.LabelLanguage(c.Get(fiber.HeaderAcceptLanguage))

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"video": videoOut{
			Video:         video,
			CategoryLabel: video.Category.Label(lang),
			URL:           videoCtr.srv.StreamingURL(video.StoragePath),
		},
	})
}

// delete removes blob and record of the video
func (videoCtr *videoController) delete(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), videoCtr.timeout)
	defer cancel()

	id := c.Params("id")
	storagePath := c.Query("storage_path")
	if storagePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "storage_path required",
		})
	}

	if err := videoCtr.srv.Delete(ctx, id, storagePath); err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "id and storage_path required",
			})
		case errors.Is(err, service.ErrVideoNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "video not found",
			})
		case errors.Is(err, service.ErrStorage):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete file",
			})
		case errors.Is(err, service.ErrRecord):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to delete record",
			})
		}
		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.SendStatus(fiber.StatusOK)
}

func (videoCtr *videoController) streamURL(c *fiber.Ctx) error {
	storagePath := c.Query("storage_path")
	if storagePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "storage_path required",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url": videoCtr.srv.StreamingURL(storagePath),
	})
}

func (videoCtr *videoController) downloadURL(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), videoCtr.timeout)
	defer cancel()

	storagePath := c.Query("storage_path")
	if storagePath == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "storage_path required",
		})
	}

	url, err := videoCtr.srv.DownloadURL(ctx, storagePath)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to generate download url",
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"url":        url,
		"expires_in": int(models.DownloadURLTTL.Seconds()),
	})
}
