// Package fs keeps video blobs in a local directory and
// signs short-lived download links for them.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/nurvideo/gallery/internal/storage"
)

var (
	ErrInvalidKey   = errors.New("invalid key")
	ErrInvalidToken = errors.New("invalid download token")
)

const (
	PublicPrefix   = "/files/public/"
	DownloadPrefix = "/files/download/"
)

type Store struct {
	root    string
	baseURL string
	secret  []byte
	now     func() time.Time
}

// New returns store rooted at root. Links are built
// against baseURL, the address the files routes are served at.
func New(root, baseURL string, secret []byte) (*Store, error) {
	const op = "storage.blob.fs.New"

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Store{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
		secret:  secret,
		now:     time.Now,
	}, nil
}

// Put writes blob under key. Existing key is never overwritten.
func (s *Store) Put(ctx context.Context, key string, r io.Reader, _ int64, _ string) error {
	const op = "storage.blob.fs.Put"

	path, err := s.path(key)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s: %w", op, storage.ErrBlobExists)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if _, err := io.Copy(file, readerWithContext{ctx: ctx, r: r}); err != nil {
		file.Close()
		os.Remove(path)
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := file.Close(); err != nil {
		os.Remove(path)
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// Remove deletes blobs. Missing keys are skipped.
func (s *Store) Remove(ctx context.Context, keys ...string) error {
	const op = "storage.blob.fs.Remove"

	var errs []error
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		path, err := s.path(key)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Store) PublicURL(key string) string {
	return s.baseURL + PublicPrefix + url.PathEscape(key)
}

// SignedURL returns link valid for ttl,
// carrying token checked by Verify.
func (s *Store) SignedURL(_ context.Context, key string, ttl time.Duration, download bool) (string, error) {
	const op = "storage.blob.fs.SignedURL"

	if _, err := s.path(key); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"key":      key,
		"download": download,
		"exp":      s.now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.baseURL + DownloadPrefix + url.PathEscape(key) + "?token=" + url.QueryEscape(signed), nil
}

// Verify checks that token was issued for key and has not expired.
// It reports whether the link asks for attachment disposition.
func (s *Store) Verify(token, key string) (bool, error) {
	const op = "storage.blob.fs.Verify"

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", op, ErrInvalidToken, err)
	}

	if k, _ := claims["key"].(string); k != key {
		return false, fmt.Errorf("%s: %w: key mismatch", op, ErrInvalidToken)
	}

	download, _ := claims["download"].(bool)

	return download, nil
}

// Path returns file path of an existing blob.
func (s *Store) Path(key string) (string, error) {
	const op = "storage.blob.fs.Path"

	path, err := s.path(key)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", op, storage.ErrBlobNotFound)
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s: %w", op, storage.ErrBlobNotFound)
	}

	return path, nil
}

// path maps key to a file directly under root.
func (s *Store) path(key string) (string, error) {
	if key == "" || key == "." || key == ".." ||
		strings.ContainsAny(key, `/\`) || strings.ContainsRune(key, 0) {
		return "", ErrInvalidKey
	}
	return filepath.Join(s.root, key), nil
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
