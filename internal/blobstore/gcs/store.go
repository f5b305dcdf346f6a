// Package gcs stores each blob as one Google Cloud Storage object.
package gcs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/dvloznov/smsspend/internal/blobstore"
)

const contentType = "application/json"

// Config selects the bucket and object prefix.
type Config struct {
	Bucket string
	Prefix string // optional, e.g. "smsspend/"
	// CredentialsFile is a service account key file. When empty, Application
	// Default Credentials are used (gcloud auth application-default login).
	CredentialsFile string
}

// Store is a GCS-backed blobstore.Store.
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

// NewStore creates a storage client for cfg.Bucket.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("gcs store: bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}

	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs store: create storage client: %w", err)
	}

	return &Store{
		client: client,
		bucket: cfg.Bucket,
		prefix: strings.TrimPrefix(cfg.Prefix, "/"),
	}, nil
}

// ObjectName returns the object a key is stored in.
func (s *Store) ObjectName(key string) string {
	return objectName(s.prefix, key)
}

// URI returns the gs:// URI of a key.
func (s *Store) URI(key string) string {
	return fmt.Sprintf("gs://%s/%s", s.bucket, s.ObjectName(key))
}

// Get implements blobstore.Store.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := blobstore.ValidateKey(key); err != nil {
		return nil, err
	}

	rc, err := s.client.Bucket(s.bucket).Object(s.ObjectName(key)).NewReader(ctx)
	if errors.Is(err, storage.ErrObjectNotExist) {
		return nil, blobstore.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("gcs store: open reader for %s: %w", s.URI(key), err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("gcs store: read %s: %w", s.URI(key), err)
	}
	return data, nil
}

// Put implements blobstore.Store.
func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := blobstore.ValidateKey(key); err != nil {
		return err
	}

	w := s.client.Bucket(s.bucket).Object(s.ObjectName(key)).NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(value); err != nil {
		_ = w.Close()
		return fmt.Errorf("gcs store: write %s: %w", s.URI(key), err)
	}

	// Close finalizes the upload
	if err := w.Close(); err != nil {
		return fmt.Errorf("gcs store: finalize %s: %w", s.URI(key), err)
	}
	return nil
}

// Close implements blobstore.Store.
func (s *Store) Close() error {
	return s.client.Close()
}

func objectName(prefix, key string) string {
	if prefix == "" {
		return key + ".json"
	}
	return path.Join(prefix, key+".json")
}

var _ blobstore.Store = (*Store)(nil)
