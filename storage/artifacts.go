package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path"
	"path/filepath"

	"stickerbot/sticker"
)

// ArtifactStore publishes finished stickers to an S3 bucket so downstream
// consumers (bots, web clients) can fetch them by key.
type ArtifactStore struct {
	s3     *S3
	bucket string
	prefix string
}

// NewArtifactStore uploads under bucket/prefix. An empty prefix defaults to
// "stickers".
func NewArtifactStore(s3 *S3, bucket, prefix string) *ArtifactStore {
	if prefix == "" {
		prefix = "stickers"
	}
	return &ArtifactStore{s3: s3, bucket: bucket, prefix: prefix}
}

// Upload streams an encoded sticker to object storage and returns its key.
// Sticker artifacts are immutable per key, so a long cache lifetime is safe.
func (a *ArtifactStore) Upload(ctx context.Context, artifact sticker.EncodedArtifact, contentType string) (string, error) {
	f, err := os.Open(artifact.Path)
	if err != nil {
		return "", fmt.Errorf("failed to open artifact: %w", err)
	}
	defer f.Close()

	key := path.Join(a.prefix, filepath.Base(artifact.Path))
	if err := a.s3.Put(ctx, a.bucket, key, f, contentType, "public, max-age=31536000, immutable", ""); err != nil {
		return "", fmt.Errorf("failed to upload artifact %s: %w", key, err)
	}

	log.Printf("☁️  Uploaded %s (%d bytes) to s3://%s/%s", filepath.Base(artifact.Path), artifact.ByteSize, a.bucket, key)
	return key, nil
}

// Open streams a previously uploaded artifact. Caller must close it.
func (a *ArtifactStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	body, err := a.s3.Get(ctx, a.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact %s: %w", key, err)
	}
	return body, nil
}

// Has reports whether an artifact is still in the bucket.
func (a *ArtifactStore) Has(ctx context.Context, key string) (bool, error) {
	return a.s3.Exists(ctx, a.bucket, key)
}

// Remove deletes an uploaded artifact.
func (a *ArtifactStore) Remove(ctx context.Context, key string) error {
	if err := a.s3.Delete(ctx, a.bucket, key); err != nil {
		return fmt.Errorf("failed to delete artifact %s: %w", key, err)
	}
	return nil
}
