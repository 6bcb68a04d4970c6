package helpers

import (
	"context"
	"errors"
	"io"
	"net/url"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/oksasatya/devcamper-api/config"
)

// photoCacheControl lets CDNs keep uploaded photos; every upload gets a new object name.
const photoCacheControl = "public, max-age=86400"

// NewGCSClient creates the photo bucket client. Without GCS_CREDENTIALS_JSON the
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, cfg *config.Config) (*storage.Client, error) {
	if cfg.GCSBucket == "" {
		return nil, errors.New("gcs: GCS_BUCKET is required when PHOTO_STORAGE=gcs")
	}
	opts := []option.ClientOption{option.WithUserAgent(cfg.AppName)}
	if cfg.GCSCredentialsJSONPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.GCSCredentialsJSONPath))
	}
	return storage.NewClient(ctx, opts...)
}

// UploadObject streams r into bucket/objectPath and returns the object's public URL.
func UploadObject(ctx context.Context, client *storage.Client, bucket, objectPath, contentType string, r io.Reader) (string, error) {
	wc := client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = contentType
	wc.CacheControl = photoCacheControl
	wc.ChunkSize = 0 // photos are capped by MAX_FILE_UPLOAD; send in one request
	if _, err := io.Copy(wc, r); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(bucket, objectPath), nil
}

// PublicURL builds the public URL for an object, escaping each path segment.
func PublicURL(bucket, objectPath string) string {
	segs := strings.Split(objectPath, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return "https://storage.googleapis.com/" + bucket + "/" + strings.Join(segs, "/")
}
