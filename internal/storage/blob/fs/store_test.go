package fs

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nurvideo/gallery/internal/storage"
)

const baseURL = "http://localhost:8082/"

var secret = []byte("test-secret")

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "blobs"), baseURL, secret)
	require.NoError(t, err)

	return s
}

func TestPutNoOverwrite(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.mp4", strings.NewReader("first"), 5, "video/mp4"))

	err := s.Put(ctx, "a.mp4", strings.NewReader("second"), 6, "video/mp4")
	require.ErrorIs(t, err, storage.ErrBlobExists)

	path, err := s.Path("a.mp4")
	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "first", string(data))
}

func TestPutCancelled(t *testing.T) {
	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Put(ctx, "a.mp4", strings.NewReader("data"), 4, "video/mp4")
	require.ErrorIs(t, err, context.Canceled)

	_, err = s.Path("a.mp4")
	require.ErrorIs(t, err, storage.ErrBlobNotFound, "partial file must be removed")
}

func TestInvalidKeys(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, key := range []string{"", ".", "..", "../escape", "dir/file", `dir\file`} {
		err := s.Put(ctx, key, strings.NewReader("x"), 1, "")
		assert.ErrorIs(t, err, ErrInvalidKey, key)
	}
}

func TestRemove(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a.mp4", strings.NewReader("a"), 1, ""))
	require.NoError(t, s.Put(ctx, "b.mp4", strings.NewReader("b"), 1, ""))

	require.NoError(t, s.Remove(ctx, "a.mp4", "b.mp4", "missing.mp4"))

	_, err := s.Path("a.mp4")
	require.ErrorIs(t, err, storage.ErrBlobNotFound)
	_, err = s.Path("b.mp4")
	require.ErrorIs(t, err, storage.ErrBlobNotFound)

	require.Error(t, s.Remove(ctx, "../x"))
}

func TestPublicURL(t *testing.T) {
	s := newTestStore(t)

	assert.Equal(t, "http://localhost:8082/files/public/1700-ab.mp4", s.PublicURL("1700-ab.mp4"))
	assert.Equal(t, "http://localhost:8082/files/public/my%20clip.mp4", s.PublicURL("my clip.mp4"))
}

func TestSignedURL(t *testing.T) {
	s := newTestStore(t)
	now := time.Date(2024, 2, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	link, err := s.SignedURL(context.Background(), "a.mp4", time.Minute, true)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/files/download/a.mp4", u.Path)

	token := u.Query().Get("token")
	require.NotEmpty(t, token)

	download, err := s.Verify(token, "a.mp4")
	require.NoError(t, err)
	assert.True(t, download)

	// other key
	_, err = s.Verify(token, "b.mp4")
	require.ErrorIs(t, err, ErrInvalidToken)

	// expired
	now = now.Add(time.Minute + time.Second)
	_, err = s.Verify(token, "a.mp4")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyForeignSecret(t *testing.T) {
	s := newTestStore(t)
	other, err := New(t.TempDir(), baseURL, []byte("another-secret"))
	require.NoError(t, err)

	link, err := other.SignedURL(context.Background(), "a.mp4", time.Minute, false)
	require.NoError(t, err)

	u, err := url.Parse(link)
	require.NoError(t, err)

	_, err = s.Verify(u.Query().Get("token"), "a.mp4")
	require.ErrorIs(t, err, ErrInvalidToken)
}
