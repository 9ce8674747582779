package procedures

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"sponsorhub/internal/domain"
	"sponsorhub/internal/rpc"
)

// Mime type prefixes and values accepted for event media uploads.
var allowedMimeTypes = []string{"image/", "video/", "application/pdf"}

type generateUploadURLInput struct {
	EventID  string `json:"eventId"`
	MimeType string `json:"mimeType"`
	FileSize int64  `json:"fileSize"`
}

func (in *generateUploadURLInput) Validate() error {
	if strings.TrimSpace(in.EventID) == "" {
		return rpc.Invalid("eventId", "required")
	}
	if in.FileSize <= 0 {
		return rpc.Invalid("fileSize", "must be positive")
	}
	if !mimeTypeAllowed(in.MimeType) {
		return rpc.Invalid("mimeType", fmt.Sprintf("unsupported mime type %q", in.MimeType))
	}
	return nil
}

type generateUploadURLOutput struct {
	UploadURL string        `json:"upload_url"`
	Media     *domain.Media `json:"media"`
}

type deleteMediaInput struct {
	ID string `json:"id"`
}

func (in *deleteMediaInput) Validate() error {
	if strings.TrimSpace(in.ID) == "" {
		return rpc.Invalid("id", "required")
	}
	return nil
}

type deleteMediaOutput struct {
	Deleted bool `json:"deleted"`
}

// RegisterMediaProcedures registers media.generateUploadUrl and
// media.deleteMedia. maxBytes caps the declared upload size.
func RegisterMediaProcedures(r *rpc.Router, signer domain.UploadURLSigner, maxBytes int64) {
	r.Register(&rpc.Procedure{
		Name:   "media.generateUploadUrl",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in generateUploadURLInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			event, err := rc.Store.Events.GetByID(ctx, in.EventID)
			if err != nil {
				return "", err
			}
			return event.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in generateUploadURLInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			if in.FileSize > maxBytes {
				return nil, rpc.Invalid("fileSize", fmt.Sprintf("must not exceed %d bytes", maxBytes))
			}
			key := fmt.Sprintf("events/%s/media/%s", in.EventID, uuid.NewString())
			uploadURL, err := signer.SignUpload(ctx, key, in.MimeType, in.FileSize)
			if err != nil {
				return nil, fmt.Errorf("failed to sign upload: %w", err)
			}
			media := &domain.Media{
				EventID:    in.EventID,
				MimeType:   in.MimeType,
				FileSize:   in.FileSize,
				StorageKey: key,
				CreatedAt:  time.Now(),
			}
			if err := rc.Store.Media.Create(ctx, media); err != nil {
				return nil, fmt.Errorf("failed to record media: %w", err)
			}
			return &generateUploadURLOutput{UploadURL: uploadURL, Media: media}, nil
		},
	})

	r.Register(&rpc.Procedure{
		Name:   "media.deleteMedia",
		Access: rpc.RequireOrgMember,
		ResolveOrgID: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (string, error) {
			var in deleteMediaInput
			if err := rpc.Decode(raw, &in); err != nil {
				return "", err
			}
			media, err := rc.Store.Media.GetByID(ctx, in.ID)
			if err != nil {
				return "", err
			}
			event, err := rc.Store.Events.GetByID(ctx, media.EventID)
			if err != nil {
				return "", err
			}
			return event.OrganizationID, nil
		},
		Handle: func(ctx context.Context, rc *rpc.Context, raw json.RawMessage) (any, error) {
			var in deleteMediaInput
			if err := rpc.Decode(raw, &in); err != nil {
				return nil, err
			}
			if err := rc.Store.Media.Delete(ctx, in.ID); err != nil {
				return nil, err
			}
			return &deleteMediaOutput{Deleted: true}, nil
		},
	})
}

func mimeTypeAllowed(mimeType string) bool {
	for _, allowed := range allowedMimeTypes {
		if strings.HasSuffix(allowed, "/") {
			if strings.HasPrefix(mimeType, allowed) && len(mimeType) > len(allowed) {
				return true
			}
		} else if mimeType == allowed {
			return true
		}
	}
	return false
}
