package jwtController

import (
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

type JWT struct {
	secret []byte
	gate   Gate
}

type Gate interface {
	Identity() (string, bool)
}

func New(secret []byte, gate Gate) *JWT {
	return &JWT{
		secret: secret,
		gate:   gate,
	}
}

func (jwtController *JWT) AuthRequired() func(*fiber.Ctx) error {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: jwtController.secret},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		},
	})
}

// SessionRequired lets request through only while the gate
// holds a session of the token owner. Must run after AuthRequired.
func (jwtController *JWT) SessionRequired() func(*fiber.Ctx) error {
	return func(c *fiber.Ctx) error {
		identity, ok := jwtController.gate.Identity()
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not logged in",
			})
		}

		token, ok := c.Locals("user").(*jwt.Token)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "authentication error",
			})
		}

		if uid, _ := claims["uid"].(string); uid != identity {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "not logged in",
			})
		}

		return c.Next()
	}
}
