package models

import (
	"io"
	"time"

	"github.com/google/uuid"
)

const (
	// Single demo-grade credential pair.
	AdminIdentity = "admin@nurvideo.com"
	AdminSecret   = "nur123"

	// SessionStorageKey is the key-value entry holding the session marker.
	SessionStorageKey = "nur_video_auth"

	MaxUploadSize  int64 = 50 << 20
	DownloadURLTTL       = 60 * time.Second
)

// Video is a metadata row describing one stored blob.
type Video struct {
	ID          string    `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Size        int64     `json:"size" db:"size"`
	StoragePath string    `json:"storage_path" db:"storage_path"`
	Category    Category  `json:"category" db:"category"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// VideoIn is a row to be inserted. Id and
// timestamps are assigned by the record backend.
type VideoIn struct {
	Name        string
	Size        int64
	StoragePath string
	Category    Category
}

// VideoFilter selects rows on listing.
// Empty category or CategoryAll selects everything.
type VideoFilter struct {
	Category Category
}

// All reports whether filter selects every row.
func (f VideoFilter) All() bool {
	return f.Category == "" || f.Category == CategoryAll
}

// Blob is an uploaded file as seen by the video service.
type Blob struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type LoginIn struct {
	Identity string `json:"identity"`
	Secret   string `json:"secret"`
}

// SessionMarker is persisted on login and read back on startup.
type SessionMarker struct {
	Identity  string    `json:"identity"`
	Timestamp time.Time `json:"timestamp"`
}

type EventType string

const (
	VideoUploaded EventType = "VideoUploaded"
	VideoDeleted  EventType = "VideoDeleted"
)

// VideoEvent describes a finished lifecycle step of a video.
type VideoEvent struct {
	ID          uuid.UUID `json:"event_id"`
	Type        EventType `json:"event_type"`
	VideoID     string    `json:"video_id"`
	StoragePath string    `json:"storage_path"`
	Category    Category  `json:"category,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func NewVideoEvent(t EventType, video Video, at time.Time) VideoEvent {
	return VideoEvent{
		ID:          uuid.New(),
		Type:        t,
		VideoID:     video.ID,
		StoragePath: video.StoragePath,
		Category:    video.Category,
		OccurredAt:  at,
	}
}
