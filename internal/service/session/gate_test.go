package session

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurvideo/gallery/internal/lib/logger/handlers/slogdiscard"
	"github.com/nurvideo/gallery/internal/models"
	"github.com/nurvideo/gallery/internal/service/credentials"
	"github.com/nurvideo/gallery/internal/storage/kv"
)

var verifier = credentials.MustDefault()

func newFileKV(t *testing.T) *kv.File {
	t.Helper()

	store, err := kv.NewFile(filepath.Join(t.TempDir(), "session.json"))
	require.NoError(t, err)

	return store
}

func newGate(store KV) *Gate {
	return New(slogdiscard.NewDiscardLogger(), verifier, store, models.AdminIdentity)
}

// brokenKV fails every call.
type brokenKV struct{}

var errBroken = errors.New("disk on fire")

func (brokenKV) Get(string) ([]byte, bool, error) { return nil, false, errBroken }
func (brokenKV) Set(string, []byte) error         { return errBroken }
func (brokenKV) Delete(string) error              { return errBroken }

func TestLoginRehydrateAcrossRestart(t *testing.T) {
	store := newFileKV(t)

	g := newGate(store)
	at := time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC)
	g.now = func() time.Time { return at }

	require.True(t, g.Login(models.AdminIdentity, models.AdminSecret))
	assert.True(t, g.Authenticated())

	raw, ok, err := store.Get(models.SessionStorageKey)
	require.NoError(t, err)
	require.True(t, ok)

	var marker models.SessionMarker
	require.NoError(t, json.Unmarshal(raw, &marker))
	assert.Equal(t, models.AdminIdentity, marker.Identity)
	assert.True(t, at.Equal(marker.Timestamp))

	// new process
	restarted := newGate(store)
	assert.False(t, restarted.Authenticated())

	restarted.Rehydrate()
	assert.True(t, restarted.Authenticated())

	identity, ok := restarted.Identity()
	assert.True(t, ok)
	assert.Equal(t, models.AdminIdentity, identity)
}

func TestLoginWrongPair(t *testing.T) {
	store := newFileKV(t)
	g := newGate(store)

	assert.False(t, g.Login(models.AdminIdentity, gofakeit.Password(true, true, true, false, false, 10)))
	assert.False(t, g.Login(gofakeit.Email(), models.AdminSecret))
	assert.False(t, g.Authenticated())

	_, ok := g.Identity()
	assert.False(t, ok)

	_, ok, err := store.Get(models.SessionStorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFailedLoginKeepsSession(t *testing.T) {
	g := newGate(newFileKV(t))

	require.True(t, g.Login(models.AdminIdentity, models.AdminSecret))
	assert.False(t, g.Login(models.AdminIdentity, "wrong"))

	identity, ok := g.Identity()
	assert.True(t, ok)
	assert.Equal(t, models.AdminIdentity, identity)
}

func TestLogoutThenRehydrate(t *testing.T) {
	store := newFileKV(t)

	g := newGate(store)
	require.True(t, g.Login(models.AdminIdentity, models.AdminSecret))

	g.Logout()
	assert.False(t, g.Authenticated())
	identity, ok := g.Identity()
	assert.False(t, ok)
	assert.Empty(t, identity)

	restarted := newGate(store)
	restarted.Rehydrate()
	assert.False(t, restarted.Authenticated())
}

func TestRehydrateWithoutMarker(t *testing.T) {
	g := newGate(newFileKV(t))

	g.Rehydrate()
	assert.False(t, g.Authenticated())
}

func TestRehydrateMalformedMarker(t *testing.T) {
	store := newFileKV(t)
	require.NoError(t, store.Set(models.SessionStorageKey, []byte("{garbage")))

	g := newGate(store)
	g.Rehydrate()
	assert.False(t, g.Authenticated())

	_, ok, err := store.Get(models.SessionStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "malformed marker must be erased")
}

func TestRehydrateForeignIdentity(t *testing.T) {
	store := newFileKV(t)

	raw, err := json.Marshal(models.SessionMarker{
		Identity:  gofakeit.Email(),
		Timestamp: time.Now(),
	})
	require.NoError(t, err)
	require.NoError(t, store.Set(models.SessionStorageKey, raw))

	g := newGate(store)
	g.Rehydrate()
	assert.False(t, g.Authenticated())

	_, ok, err := store.Get(models.SessionStorageKey)
	require.NoError(t, err)
	assert.False(t, ok, "foreign marker must be erased")
}

func TestBrokenStore(t *testing.T) {
	g := newGate(brokenKV{})

	// in-memory session still established
	require.True(t, g.Login(models.AdminIdentity, models.AdminSecret))
	assert.True(t, g.Authenticated())

	g.Logout()
	assert.False(t, g.Authenticated())

	g.Rehydrate()
	assert.False(t, g.Authenticated())
}

func TestConcurrentAccess(t *testing.T) {
	g := newGate(newFileKV(t))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			g.Login(models.AdminIdentity, models.AdminSecret)
		}()
		go func() {
			defer wg.Done()
			identity, ok := g.Identity()
			if ok {
				assert.Equal(t, models.AdminIdentity, identity)
			}
		}()
	}
	wg.Wait()

	assert.True(t, g.Authenticated())
}
