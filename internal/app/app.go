// Package app wires configuration into a ready Tracker for the commands.
package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smsspend/internal/blobstore"
	"github.com/dvloznov/smsspend/internal/blobstore/backend"
	"github.com/dvloznov/smsspend/internal/config"
	"github.com/dvloznov/smsspend/internal/extraction"
	"github.com/dvloznov/smsspend/internal/logger"
	"github.com/dvloznov/smsspend/internal/persistence"
	"github.com/dvloznov/smsspend/internal/tracker"
)

// App holds the tracker and the resources behind it.
type App struct {
	Tracker *tracker.Tracker
	store   blobstore.Store
}

// Open validates cfg, opens the blob store, loads the ledger and, when an API
// key is configured, attaches the Gemini extractor.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx = logger.WithContext(ctx, log)

	store, err := backend.Open(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("open blob store: %w", err)
	}

	var opts []tracker.Option
	if cfg.ExtractionEnabled() {
		gen, err := extraction.NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			store.Close()
			return nil, err
		}
		log.Info().Str("model", gen.Model()).Msg("SMS extraction enabled")
		opts = append(opts, tracker.WithExtractor(extraction.NewExtractor(gen)))
	} else {
		log.Warn().Msg("No Gemini API key configured - SMS import will be unavailable")
	}

	bridge := persistence.NewBridge(store, cfg.BlobKey)
	tr, err := tracker.Open(ctx, bridge, opts...)
	if err != nil {
		store.Close()
		return nil, err
	}
	log.Info().
		Str("backend", cfg.BlobBackend).
		Str("key", bridge.Key()).
		Int("transactions", len(tr.GetTransactions())).
		Msg("Ledger ready")

	return &App{Tracker: tr, store: store}, nil
}

// Close releases the blob store.
func (a *App) Close() error {
	return a.store.Close()
}
