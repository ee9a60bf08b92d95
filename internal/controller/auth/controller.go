package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	jwtController "github.com/nurvideo/gallery/internal/controller/jwt"
	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/service"
)

// New returns an fiber.App that opens and
// closes the session and returns JWT
func New(
	timeout time.Duration,
	a Auth,
	jwtC *jwtController.JWT,
) *fiber.App {
	authCtr := authController{
		timeout: timeout,
		srv:     a,
	}

	app := fiber.New()

	app.Post("/login", authCtr.login)
	app.Get("/login/session", authCtr.session)
	app.Post("/logout", jwtC.AuthRequired(), authCtr.logout)

	return app
}

type authController struct {
	timeout time.Duration
	srv     Auth
}

type Auth interface {
	Login(ctx context.Context, identity, secret string) (string, error)
	Logout(ctx context.Context)
	Session(ctx context.Context) (string, error)
}

// login
func (authCtr *authController) login(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), authCtr.timeout)
	defer cancel()

	form := new(models.LoginIn)

	if err := c.BodyParser(form); err != nil {
		return fiber.ErrBadRequest
	}

	if form.Identity == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "identity required",
		})
	}

	if form.Secret == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "secret required",
		})
	}

	token, err := authCtr.srv.Login(ctx, form.Identity, form.Secret)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid credentials",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
	})
}

// logout never fails once the token is valid
func (authCtr *authController) logout(c *fiber.Ctx) error {
	authCtr.srv.Logout(c.UserContext())

	return c.SendStatus(fiber.StatusOK)
}

// session reports identity of the open session
func (authCtr *authController) session(c *fiber.Ctx) error {
	identity, err := authCtr.srv.Session(c.UserContext())
	if err != nil {
		if errors.Is(err, service.ErrUnauthorized) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not logged in",
			})
		}

		return c.SendStatus(fiber.StatusInternalServerError)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"identity": identity,
	})
}
