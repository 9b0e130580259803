// Package objstore defines the interface for the object-storage backend
// uploads go to.
//
// All providers (MinIO, AWS S3, Cloudflare R2, …) are reachable through the
// Store interface. Callers depend only on this package — never on a specific
// provider package.
//
// Usage:
//
//	store, err := minio.New(cfg)
//	if err != nil { ... }
//	defer store.Close()
//
//	err = store.PutObject(ctx, "notes", "img/1700000000000_cat.png",
//		bytes.NewReader(data), int64(len(data)), "image/png")
package objstore

import (
	"context"
	"io"
)

// Store is the single interface all storage providers must implement.
// Scoped to what the upload flow needs: PUT plus a reachability probe for
// the settings surface's connection test. No list, head, or delete.
type Store interface {
	// Ping verifies the storage backend is reachable with the configured
	// credentials.
	Ping(ctx context.Context) error

	// Close releases any held resources.
	Close() error

	// PutObject uploads size bytes from body to bucket under key.
	// contentType is the declared MIME type of the payload.
	PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error
}

// Dialer constructs a Store from live settings. The pipeline takes a Dialer
// rather than a Store because the configuration is live-editable: each drop
// batch connects with whatever credentials are current.
type Dialer func(endpoint, accessKey, secretKey, region string) (Store, error)
