// Package backend opens the blobstore.Store selected by configuration.
package backend

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smsspend/internal/blobstore"
	"github.com/dvloznov/smsspend/internal/blobstore/file"
	"github.com/dvloznov/smsspend/internal/blobstore/gcs"
	"github.com/dvloznov/smsspend/internal/blobstore/memory"
	"github.com/dvloznov/smsspend/internal/blobstore/sqlite"
	"github.com/dvloznov/smsspend/internal/config"
)

// Open creates the blob store for cfg.BlobBackend.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (blobstore.Store, error) {
	switch cfg.BlobBackend {
	case config.BackendFile:
		s, err := file.NewStore(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", cfg.BlobBackend).Str("path", s.Path(cfg.BlobKey)).Msg("Initialized blob store")
		return s, nil

	case config.BackendSQLite:
		s, err := sqlite.NewStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", cfg.BlobBackend).Str("db_path", cfg.SQLiteDBPath).Msg("Initialized blob store")
		return s, nil

	case config.BackendGCS:
		s, err := gcs.NewStore(ctx, gcs.Config{
			Bucket:          cfg.GCSBucket,
			Prefix:          cfg.GCSPrefix,
			CredentialsFile: cfg.GCSCredentialsFile,
		})
		if err != nil {
			return nil, err
		}
		log.Info().Str("backend", cfg.BlobBackend).Str("gcs_uri", s.URI(cfg.BlobKey)).Msg("Initialized blob store")
		return s, nil

	case config.BackendMemory:
		log.Warn().Str("backend", cfg.BlobBackend).Msg("Using in-memory blob store - data is lost on exit")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unsupported blob backend: %s", cfg.BlobBackend)
	}
}
