// Package session holds the process-wide authentication state
// and persists it across restarts through a key-value store.
package session

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/nurvideo/gallery/internal/lib/logger/sl"
	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/service/credentials"
)

type KV interface {
	Get(key string) ([]byte, bool, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

type Gate struct {
	log           *slog.Logger
	verifier      credentials.Verifier
	kv            KV
	validIdentity string
	now           func() time.Time

	mu            sync.RWMutex
	authenticated bool
	identity      string
}

// New returns logged out gate. Call Rehydrate
// once at startup to pick up persisted session.
func New(
	log *slog.Logger,
	verifier credentials.Verifier,
	kv KV,
	validIdentity string,
) *Gate {
	return &Gate{
		log:           log,
		verifier:      verifier,
		kv:            kv,
		validIdentity: validIdentity,
		now:           time.Now,
	}
}

// Login checks credentials and establishes session.
// Failed attempt leaves state untouched.
func (g *Gate) Login(identity, secret string) bool {
	const op = "Gate.Login"

	log := g.log.With(
		slog.String("op", op),
		slog.String("identity", identity),
	)

	if !g.verifier.Verify(identity, secret) {
		log.Info("invalid credentials")
		return false
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	marker, err := json.Marshal(models.SessionMarker{
		Identity:  identity,
		Timestamp: g.now().UTC(),
	})
	if err != nil {
		log.Error("failed to encode session marker", sl.Err(err))
	} else if err := g.kv.Set(models.SessionStorageKey, marker); err != nil {
		// session lives in memory anyway, it just won't survive restart
		log.Warn("failed to persist session marker", sl.Err(err))
	}

	g.authenticated = true
	g.identity = identity

	log.Info("logged in")

	return true
}

// Logout clears session and persisted marker.
func (g *Gate) Logout() {
	const op = "Gate.Logout"

	log := g.log.With(slog.String("op", op))

	g.mu.Lock()
	defer g.mu.Unlock()

	if err := g.kv.Delete(models.SessionStorageKey); err != nil {
		log.Warn("failed to erase session marker", sl.Err(err))
	}

	g.authenticated = false
	g.identity = ""

	log.Info("logged out")
}

// Rehydrate restores session from persisted marker.
//
// Marker is trusted by identity alone, the secret is not
// checked again. Malformed marker or marker of another
// identity is erased.
func (g *Gate) Rehydrate() {
	const op = "Gate.Rehydrate"

	log := g.log.With(slog.String("op", op))

	g.mu.Lock()
	defer g.mu.Unlock()

	raw, ok, err := g.kv.Get(models.SessionStorageKey)
	if err != nil {
		log.Warn("failed to read session marker", sl.Err(err))
		return
	}
	if !ok {
		log.Debug("no session marker")
		return
	}

	var marker models.SessionMarker
	if err := json.Unmarshal(raw, &marker); err != nil {
		log.Warn("malformed session marker, erasing", sl.Err(err))
		g.erase(log)
		return
	}

	if marker.Identity != g.validIdentity {
		log.Warn("session marker of unknown identity, erasing",
			slog.String("identity", marker.Identity),
		)
		g.erase(log)
		return
	}

	g.authenticated = true
	g.identity = marker.Identity

	log.Info("session restored",
		slog.String("identity", marker.Identity),
		slog.Time("since", marker.Timestamp),
	)
}

func (g *Gate) Authenticated() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.authenticated
}

// Identity returns identity of the logged in user.
func (g *Gate) Identity() (string, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	return g.identity, g.authenticated
}

func (g *Gate) erase(log *slog.Logger) {
	if err := g.kv.Delete(models.SessionStorageKey); err != nil {
		log.Warn("failed to erase session marker", sl.Err(err))
	}
}
