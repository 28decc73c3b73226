package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"

	// Registered bucket schemes selectable via -bucket.
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// DefaultDir returns the default local destination: an "illustrations"
// directory next to the running executable.
func DefaultDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("storage: locate executable: %w", err)
	}
	return filepath.Join(filepath.Dir(exe), "illustrations"), nil
}

// Open opens the destination bucket. An empty bucketURL selects local disk
// at DefaultDir, created on demand; anything else is treated as a gocloud
// bucket URL (s3://, gs://, file://, mem://).
func Open(ctx context.Context, bucketURL string) (*blob.Bucket, error) {
	if bucketURL == "" {
		dir, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("storage: create %s: %w", dir, err)
		}
		bucket, err := fileblob.OpenBucket(dir, &fileblob.Options{CreateDir: true})
		if err != nil {
			return nil, fmt.Errorf("storage: open %s: %w", dir, err)
		}
		return bucket, nil
	}

	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", bucketURL, err)
	}
	return bucket, nil
}
