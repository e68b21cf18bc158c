package services

import "context"

// BlobStore abstracts the object storage holding attachment files.
type BlobStore interface {
	// PresignUploadURL issues a storage key and a presigned PUT URL the
	// client uploads the file to directly.
	PresignUploadURL(ctx context.Context, contentType string) (key string, url string, err error)
	Delete(ctx context.Context, key string) error
}
