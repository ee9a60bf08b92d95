package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nurvideo/gallery/internal/lib/logger/sl"
	"github.com/nurvideo/gallery/internal/service"
)

type Auth struct {
	log      *slog.Logger
	gate     Gate
	jwtMaker jwtMaker
	tokenTTL time.Duration
}

type jwtMaker interface {
	NewToken(identity string, duration time.Duration) (string, error)
}

type Gate interface {
	Login(identity, secret string) bool
	Logout()
	Identity() (string, bool)
}

// New returns new instance of authentication service
func New(
	log *slog.Logger,
	gate Gate,
	jwtMaker jwtMaker,
	tokenTTL time.Duration,
) *Auth {
	return &Auth{
		log:      log,
		gate:     gate,
		jwtMaker: jwtMaker,
		tokenTTL: tokenTTL,
	}
}

// Login opens session on the gate and returns access token.
func (a *Auth) Login(_ context.Context, identity, secret string) (string, error) {
	const op = "Auth.Login"

	log := a.log.With(
		slog.String("op", op),
		slog.String("identity", identity),
	)

	log.Info("attempting to login")

	if !a.gate.Login(identity, secret) {
		return "", fmt.Errorf("%s: %w", op, service.ErrInvalidCredentials)
	}

	token, err := a.jwtMaker.NewToken(identity, a.tokenTTL)
	if err != nil {
		log.Error("failed to generate token", sl.Err(err))

		// no token, no session
		a.gate.Logout()

		return "", fmt.Errorf("%s: %w", op, err)
	}

	return token, nil
}

// Logout closes session. Issued tokens stay
// valid but are useless until the next login.
func (a *Auth) Logout(_ context.Context) {
	a.gate.Logout()
}

// Session returns identity of the open session.
func (a *Auth) Session(_ context.Context) (string, error) {
	const op = "Auth.Session"

	identity, ok := a.gate.Identity()
	if !ok {
		return "", fmt.Errorf("%s: %w", op, service.ErrUnauthorized)
	}

	return identity, nil
}
