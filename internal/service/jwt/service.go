package jwtService

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type JWT struct {
	secret []byte
	now    func() time.Time
}

func New(secret []byte) *JWT {
	return &JWT{
		secret: secret,
		now:    time.Now,
	}
}

// NewToken returns HS256 token with identity
// as "uid" claim, expiring after duration.
func (j *JWT) NewToken(identity string, duration time.Duration) (string, error) {
	const op = "JWT.NewToken"

	token := jwt.New(jwt.SigningMethodHS256)

	claims := token.Claims.(jwt.MapClaims)
	claims["uid"] = identity
	claims["exp"] = j.now().Add(duration).Unix()

	tokenString, err := token.SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return tokenString, nil
}
