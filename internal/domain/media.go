package domain

import (
	"context"
	"errors"
	"time"
)

// ErrMediaNotFound is returned when a media row does not exist.
var ErrMediaNotFound = errors.New("media not found")

// Media is a file attachment bound to an event. The upload itself goes
// through object storage; this layer only authorizes and records the row.
// swagger:model Media
type Media struct {
	ID         string    `json:"id"`
	EventID    string    `json:"event_id"`
	MimeType   string    `json:"mime_type"`
	FileSize   int64     `json:"file_size"`
	StorageKey string    `json:"storage_key"`
	CreatedAt  time.Time `json:"created_at"`
}

// MediaRepository defines the interface for media storage.
type MediaRepository interface {
	Create(ctx context.Context, media *Media) error
	GetByID(ctx context.Context, id string) (*Media, error)
	ListByEventID(ctx context.Context, eventID string) ([]*Media, error)
	Delete(ctx context.Context, id string) error
}

// UploadURLSigner produces a pre-authorized upload URL for object storage.
type UploadURLSigner interface {
	SignUpload(ctx context.Context, key, mimeType string, size int64) (string, error)
}
