// Package storage holds the blob stores backing maintenance photos.
package storage

import (
	"context"
	"strings"
)

// AttachmentStore puts and removes blobs addressed by object path.
type AttachmentStore interface {
	// Put uploads data under path and returns the public URL of the object.
	Put(ctx context.Context, path string, data []byte, contentType string) (string, error)
	// Delete removes the object behind url. URLs that do not belong to the store are ignored.
	Delete(ctx context.Context, url string) error
}

// urlScheme maps object paths to public URLs of the form <base>/<bucket>/<path>.
type urlScheme struct {
	baseURL string
	bucket  string
}

func (u urlScheme) publicURL(path string) string {
	return u.prefix() + path
}

func (u urlScheme) prefix() string {
	return strings.TrimSuffix(u.baseURL, "/") + "/" + u.bucket + "/"
}

// objectPath returns the object path for url, or false when url is foreign to this store.
func (u urlScheme) objectPath(url string) (string, bool) {
	prefix := u.prefix()
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	path := strings.TrimPrefix(url, prefix)
	if path == "" {
		return "", false
	}
	return path, true
}
