package services

import (
	"context"
	"encoding/json"

	"github.com/imovelscan/leilao-api/internal/models"
)

// CacheServiceInterface defines the interface for the result cache
type CacheServiceInterface interface {
	// Get retrieves a value from cache; ok is false when the key is absent or
	// its entry has expired (expired entries are evicted on read).
	Get(ctx context.Context, key string) (value string, ok bool)

	// Set stores a value in cache with the configured TTL
	Set(ctx context.Context, key string, value string) error

	// Delete removes a value from cache; a no-op when the key is absent
	Delete(ctx context.Context, key string) error

	// Clear clears all cache entries
	Clear(ctx context.Context) error

	// Cleanup proactively evicts all currently-expired entries
	Cleanup()

	// GetStats returns cache statistics
	GetStats(ctx context.Context) (map[string]interface{}, error)

	// Health returns cache service health status
	Health() map[string]interface{}

	// StartCleanupRoutine starts the periodic Cleanup sweep
	StartCleanupRoutine()
}

// ExtractionClientInterface issues the trigger request against the workflow
// engine and interprets its two possible response shapes.
type ExtractionClientInterface interface {
	// Trigger starts the remote extraction workflow for url
	Trigger(ctx context.Context, url string) (*TriggerResult, error)
}

// NormalizerInterface turns a raw extraction payload into the strict,
// fully-defaulted shape the rendering layer requires.
type NormalizerInterface interface {
	Normalize(url string, raw json.RawMessage) (*models.ImovelNormalizado, error)
}

// PollerInterface repeatedly queries the callback store until data appears or
// the attempt budget runs out.
type PollerInterface interface {
	Poll(ctx context.Context, url string) (json.RawMessage, error)
}

// CallbackStoreInterface holds extraction results POSTed by the workflow
// engine, keyed by URL, with delete-on-read semantics.
type CallbackStoreInterface interface {
	// Save stores payload under url, overwriting any previous payload
	Save(ctx context.Context, url string, payload string) error

	// Take retrieves and deletes the payload stored under url. A second Take
	// for the same url finds nothing: delivery is at most once.
	Take(ctx context.Context, url string) (payload string, ok bool)

	// Health returns callback store health status
	Health() map[string]interface{}
}

// AnalysisServiceInterface orchestrates one extraction attempt end to end.
type AnalysisServiceInterface interface {
	// Start begins an extraction attempt for url, superseding any attempt
	// still in flight. The returned attempt's event stream carries progress
	// updates followed by exactly one terminal event, unless superseded.
	Start(url string) *Attempt

	// Analyze runs an attempt synchronously and returns its terminal result.
	Analyze(ctx context.Context, url string) (*models.ImovelNormalizado, error)

	// Health returns service health status
	Health() map[string]interface{}
}
