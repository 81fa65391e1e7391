package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"PublicationIngest/internal/ports"
)

// AssetIngestor downloads an asset from its origin and stores it under a
// deterministic key. Re-ingesting the same key overwrites identical bytes,
// so retries are safe.
type AssetIngestor struct {
	fetcher ports.AssetFetcher
	store   ports.ObjectStore
	logger  *slog.Logger
}

// New wires the fetcher and object store.
func New(fetcher ports.AssetFetcher, store ports.ObjectStore, logger *slog.Logger) *AssetIngestor {
	return &AssetIngestor{fetcher: fetcher, store: store, logger: logger}
}

// EnsureStored fetches originURL and writes the bytes under targetKey. There
// is no existence check; overwrite semantics keep the operation idempotent.
func (a *AssetIngestor) EnsureStored(ctx context.Context, originURL, targetKey string) error {
	body, err := a.fetcher.Fetch(ctx, originURL)
	if err != nil {
		return fmt.Errorf("download %s: %w", originURL, err)
	}

	uri, err := a.store.Put(ctx, targetKey, body)
	if err != nil {
		return fmt.Errorf("store %s: %w", targetKey, err)
	}

	if a.logger != nil {
		a.logger.Info("asset stored", "key", targetKey, "uri", uri, "bytes", len(body))
	}
	return nil
}
