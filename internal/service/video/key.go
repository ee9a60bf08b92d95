package video

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const suffixLen = 8

// storageKey builds "<unix-millis>-<random suffix><ext>".
// Extension is lower-cased and dropped unless it is plain alphanumeric.
func storageKey(filename string, at time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLen]

	return fmt.Sprintf("%d-%s%s", at.UnixMilli(), suffix, extension(filename))
}

func extension(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	if len(ext) < 2 {
		return ""
	}
	for _, r := range ext[1:] {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') {
			return ""
		}
	}
	return ext
}
