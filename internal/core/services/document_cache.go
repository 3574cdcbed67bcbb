package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/custodia-labs/vectormind/internal/core/domain"
	"github.com/custodia-labs/vectormind/internal/core/ports/driven"
	"github.com/custodia-labs/vectormind/internal/core/ports/driving"
)

// Cache defaults
const (
	DefaultCacheMaxEntries = 100
	DefaultCacheTTL        = time.Hour
)

// Verify interface compliance
var _ driving.DocumentCache = (*DocumentCache)(nil)

// DocumentCache keeps recently read document bytes in memory.
// Entries expire TTL after their last read or are evicted once MaxEntries is
// exceeded, whichever comes first. Reads of one key are serialized so a miss
// is fetched once and access counts are never lost; different keys proceed
// in parallel.
type DocumentCache struct {
	documents   driven.DocumentStore
	blobs       driven.BlobStore
	drive       driven.DriveClient
	credentials driving.CredentialManager
	cache       *expirable.LRU[string, []byte]
	keys        *keyedMutex
	hits        atomic.Uint64
	misses      atomic.Uint64
	now         func() time.Time
	logger      *slog.Logger
}

// DocumentCacheConfig holds dependencies for DocumentCache.
type DocumentCacheConfig struct {
	Documents   driven.DocumentStore
	Blobs       driven.BlobStore
	Drive       driven.DriveClient
	Credentials driving.CredentialManager

	MaxEntries int           // default 100
	TTL        time.Duration // default 1h

	Logger *slog.Logger
}

// NewDocumentCache creates a new document cache.
func NewDocumentCache(cfg DocumentCacheConfig) *DocumentCache {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = DefaultCacheMaxEntries
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}

	return &DocumentCache{
		documents:   cfg.Documents,
		blobs:       cfg.Blobs,
		drive:       cfg.Drive,
		credentials: cfg.Credentials,
		cache:       expirable.NewLRU[string, []byte](maxEntries, nil, ttl),
		keys:        newKeyedMutex(),
		now:         time.Now,
		logger:      logger,
	}
}

func cacheKey(userID, docID string) string {
	return userID + "/" + docID
}

// Get returns the bytes of a document owned by userID.
func (c *DocumentCache) Get(ctx context.Context, userID, docID string) ([]byte, error) {
	if userID == "" || docID == "" {
		return nil, fmt.Errorf("%w: user id and document id are required", domain.ErrInvalidInput)
	}

	key := cacheKey(userID, docID)
	unlock := c.keys.Lock(key)
	defer unlock()

	if data, ok := c.cache.Get(key); ok {
		if err := c.recordAccess(ctx, docID); errors.Is(err, domain.ErrNotFound) {
			// Record deleted behind the cache
			c.cache.Remove(key)
			c.misses.Add(1)
			return nil, fmt.Errorf("%w: document %s", domain.ErrNotFound, docID)
		}
		c.hits.Add(1)
		// Re-adding restarts the entry's TTL
		c.cache.Add(key, data)
		return data, nil
	}
	c.misses.Add(1)

	doc, err := c.documents.GetForUser(ctx, docID, userID)
	if err != nil {
		return nil, err
	}
	data, err := c.fetch(ctx, doc)
	if err != nil {
		return nil, err
	}

	c.cache.Add(key, data)
	_ = c.recordAccess(ctx, docID)
	return data, nil
}

// fetch loads the bytes from wherever the document's source keeps them
func (c *DocumentCache) fetch(ctx context.Context, doc *domain.DocumentRecord) ([]byte, error) {
	switch doc.Source {
	case domain.SourceUpload, domain.SourceExternal:
		if doc.StorageKey == "" || c.blobs == nil {
			return nil, fmt.Errorf("%w: no stored bytes for %s", domain.ErrNotFound, doc.ID)
		}
		return c.blobs.Get(ctx, doc.StorageKey)
	case domain.SourceDrive:
		if doc.ExternalID == "" || c.drive == nil {
			return nil, fmt.Errorf("%w: no drive file for %s", domain.ErrNotFound, doc.ID)
		}
		return c.drive.Download(ctx, c.credentials.TokenProvider(doc.UserID), doc.ExternalID)
	default:
		return nil, fmt.Errorf("%w: unknown source %q", domain.ErrNotFound, doc.Source)
	}
}

// recordAccess updates the access metrics. Failures are logged and returned
// so a hit can notice a deleted record.
func (c *DocumentCache) recordAccess(ctx context.Context, docID string) error {
	err := c.documents.RecordAccess(ctx, docID, c.now().UTC())
	if err != nil {
		c.logger.Warn("failed to record document access", "doc_id", docID, "error", err)
	}
	return err
}

// Evict removes a cached entry.
func (c *DocumentCache) Evict(userID, docID string) {
	c.cache.Remove(cacheKey(userID, docID))
}

// Stats reports cache counters.
func (c *DocumentCache) Stats() driving.CacheStats {
	return driving.CacheStats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.Len(),
	}
}
