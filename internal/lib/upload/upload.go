// Package upload holds pre-checks applied to a file
// before it is handed to the video service.
package upload

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/nurvideo/gallery/internal/models"
)

var (
	ErrNameRequired = errors.New("name required")
	ErrTooLarge     = fmt.Errorf("file exceeds %d MiB", models.MaxUploadSize>>20)
	ErrNotVideo     = errors.New("unsupported mime-type, video expected")
)

const octetStream = "application/octet-stream"

// Check validates upload name, size and media type and returns
// the content type to store the blob with.
//
// Declared type wins unless it is empty or octet-stream,
// then the body is sniffed and rewound.
func Check(name string, size int64, declaredType string, body io.ReadSeeker) (string, error) {
	const op = "upload.Check"

	if strings.TrimSpace(name) == "" {
		return "", ErrNameRequired
	}
	if size > models.MaxUploadSize {
		return "", ErrTooLarge
	}

	declaredType = strings.ToLower(strings.TrimSpace(declaredType))
	if declaredType != "" && declaredType != octetStream {
		if !isVideo(declaredType) {
			return "", ErrNotVideo
		}
		return declaredType, nil
	}

	mtype, err := mimetype.DetectReader(body)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if _, err := body.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	if !isVideo(mtype.String()) {
		return "", ErrNotVideo
	}

	return mtype.String(), nil
}

func isVideo(contentType string) bool {
	return strings.HasPrefix(contentType, "video/")
}
