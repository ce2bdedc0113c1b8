package repository

import (
	"context"
	"io"
	"time"

	"blog_chat_service/pkg/database"
)

// AvatarStore abstracts the object storage holding member avatars.
type AvatarStore interface {
	Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error
	// URL returns a fetchable URL for the object, or "" for an empty object name.
	URL(ctx context.Context, object string) (string, error)
}

type minioAvatarStore struct {
	client *database.MinIOClient
	expiry time.Duration
}

// NewMinIOAvatarStore serves avatars out of a MinIO bucket via presigned
// GET URLs.
func NewMinIOAvatarStore(client *database.MinIOClient, expiry time.Duration) AvatarStore {
	return &minioAvatarStore{client: client, expiry: expiry}
}

func (s *minioAvatarStore) Upload(ctx context.Context, object string, r io.Reader, size int64, contentType string) error {
	return s.client.UploadObject(ctx, object, r, size, contentType)
}

func (s *minioAvatarStore) URL(ctx context.Context, object string) (string, error) {
	if object == "" {
		return "", nil
	}
	return s.client.PresignGetURL(ctx, object, s.expiry)
}
