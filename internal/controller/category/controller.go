package category

import (
	"github.com/gofiber/fiber/v2"

	"github.com/nurvideo/gallery/internal/models"
)

// New returns an fiber.App listing categories
// with labels localized by Accept-Language.
func New() *fiber.App {
	app := fiber.New()

	app.Get("/", categories)

	return app
}

type categoryOut struct {
	Value models.Category `json:"value"`
	Label string          `json:"label"`
}

func categories(c *fiber.Ctx) error {
	lang := models.LabelLanguage(c.Get(fiber.HeaderAcceptLanguage))

	out := make([]categoryOut, 0, len(models.Categories))
	for _, cat := range models.Categories {
		out = append(out, categoryOut{
			Value: cat,
			Label: cat.Label(lang),
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"categories": out,
		"language":   lang.String(),
	})
}
