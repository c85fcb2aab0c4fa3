package storage

import (
	"context"
	"errors"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/option"

	"maintenance-records-backend/internal/logging"
)

// GCSStore keeps photos in a Google Cloud Storage bucket.
type GCSStore struct {
	client *storage.Client
	bucket string
	urls   urlScheme
}

// NewGCSStore opens a storage client. credentialsFile may be empty to use application default credentials.
func NewGCSStore(ctx context.Context, bucket, publicBaseURL, credentialsFile string) (*GCSStore, error) {
	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	return &GCSStore{
		client: client,
		bucket: bucket,
		urls:   urlScheme{baseURL: publicBaseURL, bucket: bucket},
	}, nil
}

func (s *GCSStore) Put(ctx context.Context, path string, data []byte, contentType string) (string, error) {
	w := s.client.Bucket(s.bucket).Object(path).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", goerr.Wrap(err, "failed to write object", goerr.V("object", path))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize object", goerr.V("object", path))
	}
	return s.urls.publicURL(path), nil
}

func (s *GCSStore) Delete(ctx context.Context, url string) error {
	path, ok := s.urls.objectPath(url)
	if !ok {
		logging.From(ctx).Debug("ignoring delete for foreign url", "url", url)
		return nil
	}

	err := s.client.Bucket(s.bucket).Object(path).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return goerr.Wrap(err, "failed to delete object", goerr.V("object", path))
	}
	return nil
}

// Close releases the underlying client.
func (s *GCSStore) Close() error {
	return s.client.Close()
}
