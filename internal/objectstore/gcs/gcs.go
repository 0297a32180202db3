// Package gcs implements objectstore.Client on Google Cloud Storage: a
// single bucket, content-type sniffed from the key's extension, a per-call
// context timeout, errors wrapped with %w so errs.Handler's substring
// classification still finds "network"/"service" keywords where relevant.
package gcs

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"

	"github.com/yungbote/recipe-notes-worker/internal/objectstore"
)

type Client struct {
	bucketName string
	cdnDomain  string
	st         *storage.Client
}

// New constructs a GCS-backed client for bucketName. cdnDomain, if set, is
// used to build public URLs instead of the raw GCS storage.googleapis.com
// host.
func New(ctx context.Context, bucketName, cdnDomain string) (*Client, error) {
	if bucketName == "" {
		return nil, fmt.Errorf("gcs: missing bucket name")
	}
	st, err := storage.NewClient(ctx, storage.WithJSONReads())
	if err != nil {
		return nil, fmt.Errorf("gcs: new client: %w", err)
	}
	return &Client{bucketName: bucketName, cdnDomain: cdnDomain, st: st}, nil
}

var _ objectstore.Client = (*Client)(nil)

func (c *Client) UploadFile(ctx context.Context, key string, localPath string) (objectstore.Uploaded, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return objectstore.Uploaded{}, fmt.Errorf("gcs: open %s: %w", localPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return objectstore.Uploaded{}, fmt.Errorf("gcs: stat %s: %w", localPath, err)
	}

	return c.upload(ctx, key, f, contentTypeForKey(key), info.Size())
}

func (c *Client) UploadBuffer(ctx context.Context, key string, data []byte, contentType string) (objectstore.Uploaded, error) {
	if contentType == "" {
		contentType = contentTypeForKey(key)
	}
	return c.upload(ctx, key, bytes.NewReader(data), contentType, int64(len(data)))
}

func (c *Client) upload(ctx context.Context, key string, r io.Reader, contentType string, size int64) (objectstore.Uploaded, error) {
	uctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	w := c.st.Bucket(c.bucketName).Object(key).NewWriter(uctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, r); err != nil {
		_ = w.Close()
		return objectstore.Uploaded{}, fmt.Errorf("gcs: write %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		return objectstore.Uploaded{}, fmt.Errorf("gcs: close %s: %w", key, err)
	}

	return objectstore.Uploaded{
		Key:  key,
		URL:  c.publicURL(key),
		Size: size,
		ETag: w.Attrs().Etag,
	}, nil
}

func (c *Client) publicURL(key string) string {
	if c.cdnDomain != "" {
		return "https://" + strings.TrimRight(c.cdnDomain, "/") + "/" + key
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", c.bucketName, key)
}

func (c *Client) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	opts := &storage.SignedURLOptions{
		Method:  "GET",
		Expires: time.Now().Add(ttl),
	}
	return c.st.Bucket(c.bucketName).SignedURL(key, opts)
}

func contentTypeForKey(key string) string {
	k := strings.ToLower(key)
	if i := strings.Index(k, "?"); i >= 0 {
		k = k[:i]
	}
	switch {
	case strings.HasSuffix(k, ".png"):
		return "image/png"
	case strings.HasSuffix(k, ".jpg"), strings.HasSuffix(k, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(k, ".webp"):
		return "image/webp"
	case strings.HasSuffix(k, ".gif"):
		return "image/gif"
	default:
		return ""
	}
}
