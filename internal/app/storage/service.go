/*
Package storage stores avatar images in S3-compatible object storage.

Clients upload an avatar once, receive its reference, and put that reference in the
"pic" field of their login message. Peers fetch the image through a short-lived
presigned download URL.
*/
package storage

import (
	"context"
	"io"
	"time"
)

// ServiceConfig holds the configuration required to connect to the storage service.
type ServiceConfig struct {
	S3BucketName      string
	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// StorageService defines the public interface for avatar object storage.
type StorageService interface {
	// Upload stores body under key with the given content type.
	Upload(ctx context.Context, key string, contentType string, body io.Reader) error

	// PresignDownload generates a pre-signed URL for downloading key.
	PresignDownload(ctx context.Context, key string, duration time.Duration) (string, error)
}

// NewStorageService is the factory function for StorageService.
func NewStorageService(ctx context.Context, cfg ServiceConfig) (StorageService, error) {
	// Only S3 compatible implementations are supported.
	return newS3Client(ctx, cfg)
}
