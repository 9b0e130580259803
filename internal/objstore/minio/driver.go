// Package minio provides a MinIO implementation of objstore.Store.
//
// It works against any S3-compatible endpoint (MinIO, AWS S3, Cloudflare R2,
// Backblaze B2, …) since only signature V4 PUT and bucket listing are used.
package minio

import (
	"context"
	"io"
	"strings"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/koustreak/markdrop/internal/errs"
	"github.com/koustreak/markdrop/internal/objstore"
)

// Driver is a MinIO implementation of objstore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

var _ objstore.Store = (*Driver)(nil)

// New connects to the given S3-compatible endpoint and returns a Driver.
// The endpoint may carry an http:// or https:// scheme; a bare host is
// treated as TLS. No network I/O happens here — a bad endpoint surfaces on
// the first operation.
func New(endpoint, accessKey, secretKey, region string) (objstore.Store, error) {
	host, secure := splitEndpoint(endpoint)

	client, err := miniogo.New(host, &miniogo.Options{
		Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
		Secure: secure,
		Region: region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindConnectionFailed, "failed to create minio client", err)
	}

	return &Driver{client: client}, nil
}

// splitEndpoint strips an optional URL scheme off endpoint and reports
// whether the connection should use TLS.
func splitEndpoint(endpoint string) (host string, secure bool) {
	switch {
	case strings.HasPrefix(endpoint, "https://"):
		return strings.TrimPrefix(endpoint, "https://"), true
	case strings.HasPrefix(endpoint, "http://"):
		return strings.TrimPrefix(endpoint, "http://"), false
	default:
		return endpoint, true
	}
}

// --- objstore.Store implementation ---

// Ping verifies the endpoint is reachable by listing buckets.
func (d *Driver) Ping(ctx context.Context) error {
	_, err := d.client.ListBuckets(ctx)
	if err != nil {
		return mapError(err, "ping failed")
	}
	return nil
}

// Close is a no-op for MinIO — the SDK client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// PutObject uploads size bytes from body to bucket under key.
func (d *Driver) PutObject(ctx context.Context, bucket, key string, body io.Reader, size int64, contentType string) error {
	_, err := d.client.PutObject(ctx, bucket, key, body, size, miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return mapError(err, "failed to put object "+key)
	}
	return nil
}
