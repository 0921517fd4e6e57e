// Package assets implements the content-hash-addressed image cache.
//
// A lookup resolves a name against a remote lookup service, compares the
// returned content hash with the locally cached entry, and refetches the
// binary payload from the CDN only when the hash changed. Resolved payloads
// are exposed to clients through display handles served at /api/blob/{token}.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/millennium-tools/banav/internal/services/nav/storage"
)

// tableKey is the fixed store key holding the whole image table as one JSON
// value. Concurrent lookups for different names read-modify-write this value
// without a transaction boundary; the second writer wins (see storage docs).
const tableKey = "image"

// Lookup result messages.
const (
	MessageCacheHit = "loaded from local cache"
	MessageUpdated  = "updated from server"
)

// Entry pairs a content hash with its binary payload. Hash is non-empty iff
// Payload is non-nil; the two are always reset and set together.
type Entry struct {
	Hash    string `json:"hash,omitempty"`
	Payload []byte `json:"payload,omitempty"`
}

// Result is the outcome of a successful Lookup. Exactly one of Handle or
// Candidates is populated: Handle for an exact match, Candidates when the
// lookup service asks the caller to disambiguate.
type Result struct {
	Handle     *Handle
	Message    string
	Candidates []string
}

// Cache orchestrates lookups against the remote services and the local store.
type Cache struct {
	store    storage.Store
	lookup   LookupGateway
	fetcher  AssetFetcher
	handles  *HandleRegistry
	progress ProgressReporter
	logger   *log.Logger
}

// NewCache returns a cache over the given collaborators. A nil progress
// reporter defaults to NopReporter; a nil logger defaults to log.Default.
func NewCache(store storage.Store, lookup LookupGateway, fetcher AssetFetcher, handles *HandleRegistry, progress ProgressReporter, logger *log.Logger) *Cache {
	if progress == nil {
		progress = NopReporter{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Cache{
		store:    store,
		lookup:   lookup,
		fetcher:  fetcher,
		handles:  handles,
		progress: progress,
		logger:   logger,
	}
}

// Handles exposes the handle registry so the HTTP layer can resolve blob
// tokens minted here.
func (c *Cache) Handles() *HandleRegistry {
	return c.handles
}

// Lookup resolves name to a display handle, or to a candidate list when the
// remote lookup is ambiguous. Failures are logged and reported as ok=false
// rather than returned; callers treat the absence of a result as the failure
// signal. The progress reporter always reaches Done, success or not.
func (c *Cache) Lookup(ctx context.Context, name string) (result Result, ok bool) {
	ctx, span := otel.Tracer("nav/assets").Start(ctx, "assets.Lookup")
	span.SetAttributes(attribute.String("asset.name", name))
	defer span.End()

	c.progress.Start()
	defer c.progress.Done()

	resp, err := c.lookup.Lookup(ctx, name)
	if err != nil {
		c.logger.Printf("nav/assets: lookup %q: %v", name, err)
		return Result{}, false
	}

	switch resp.Status {
	case StatusFuzzy:
		candidates := make([]string, 0, len(resp.Records))
		for _, record := range resp.Records {
			candidates = append(candidates, record.Name)
		}
		return Result{Candidates: candidates}, true
	case StatusExact:
	default:
		c.logger.Printf("nav/assets: lookup %q: unexpected status %d", name, resp.Status)
		return Result{}, false
	}

	if len(resp.Records) == 0 {
		c.logger.Printf("nav/assets: lookup %q: exact response with no record", name)
		return Result{}, false
	}
	record := resp.Records[0]

	c.progress.Set(0.4)

	table, err := c.loadTable(ctx)
	if err != nil {
		c.logger.Printf("nav/assets: load image table: %v", err)
		return Result{}, false
	}

	entry, cached := table[record.Name]
	fetched := false
	if !cached || entry.Hash != record.Hash {
		c.progress.Set(0.6)
		entry = Entry{}
		payload, err := c.fetcher.Fetch(ctx, record.Path)
		if err != nil {
			c.logger.Printf("nav/assets: fetch %q: %v", record.Path, err)
			return Result{}, false
		}
		c.progress.Set(0.8)
		entry = Entry{Hash: record.Hash, Payload: payload}
		fetched = true
	}
	table[record.Name] = entry

	handle := c.handles.Replace(record.Name, entry.Payload)

	if err := c.saveTable(ctx, table); err != nil {
		c.logger.Printf("nav/assets: persist image table: %v", err)
		return Result{}, false
	}
	c.progress.Set(1)

	message := MessageCacheHit
	if fetched {
		message = MessageUpdated
	}
	return Result{Handle: handle, Message: message}, true
}

func (c *Cache) loadTable(ctx context.Context) (map[string]Entry, error) {
	raw, err := c.store.GetOrInit(ctx, tableKey, []byte("{}"))
	if err != nil {
		return nil, err
	}
	table := make(map[string]Entry)
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, fmt.Errorf("decode image table: %w", err)
	}
	return table, nil
}

func (c *Cache) saveTable(ctx context.Context, table map[string]Entry) error {
	raw, err := json.Marshal(table)
	if err != nil {
		return fmt.Errorf("encode image table: %w", err)
	}
	return c.store.Put(ctx, tableKey, raw)
}
