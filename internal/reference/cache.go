package reference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"pepco/internal"
	"pepco/internal/describe"
	"pepco/internal/pricing"
)

const DefaultTTL = 10 * time.Minute

// SnapshotStore keeps the last good copy of every table.
type SnapshotStore interface {
	SaveReferenceSnapshot(kind string, payload []byte) error
	LatestReferenceSnapshot(kind string) (*internal.ReferenceSnapshot, error)
}

type entry struct {
	value     any
	fetchedAt time.Time
	fallback  bool
}

// Cache memoizes decoded tables for ttl. Returned values are shared between
// callers and must be treated as read-only. When the source fails the last
// stored snapshot is served instead.
type Cache struct {
	source Source
	store  SnapshotStore
	ttl    time.Duration
	now    func() time.Time
	logger *slog.Logger

	mu      sync.Mutex
	entries map[Kind]entry
}

func NewCache(source Source, store SnapshotStore, ttl time.Duration, logger *slog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		source:  source,
		store:   store,
		ttl:     ttl,
		now:     time.Now,
		logger:  logger,
		entries: map[Kind]entry{},
	}
}

func (c *Cache) PriceLadder(ctx context.Context) (pricing.Ladder, error) {
	return load(ctx, c, KindPrices, DecodePriceLadder, nil)
}

func (c *Cache) Translations(ctx context.Context) ([]internal.TranslationRow, error) {
	rows, err := load(ctx, c, KindTranslations, DecodeTranslations, nil)
	if err == nil && len(rows) == 0 {
		return nil, fmt.Errorf("%w: translation table has no rows", ErrUnavailable)
	}
	return rows, err
}

// Materials falls back to the built-in Cotton rows as a last resort.
func (c *Cache) Materials(ctx context.Context) ([]internal.MaterialRow, error) {
	return load(ctx, c, KindMaterials, DecodeMaterials, describe.FallbackMaterials)
}

// Fallbacks lists the tables currently served from a stored or built-in copy.
func (c *Cache) Fallbacks() []Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []Kind
	for _, k := range Kinds {
		if e, ok := c.entries[k]; ok && e.fallback {
			out = append(out, k)
		}
	}
	return out
}

// Invalidate drops every memoized table.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[Kind]entry{}
}

func load[T any](ctx context.Context, c *Cache, kind Kind, decode func([][]string) (T, error), builtin func() T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	cached, ok := c.entries[kind]
	if ok && now.Sub(cached.fetchedAt) < c.ttl {
		return cached.value.(T), nil
	}

	value, err := fetchDecoded(ctx, c.source, kind, decode)
	if err == nil {
		c.entries[kind] = entry{value: value, fetchedAt: now}
		c.saveSnapshot(kind, value)
		return value, nil
	}
	c.logger.Warn("reference.fetch.failed", "kind", kind, "err", err)

	if ok {
		c.entries[kind] = entry{value: cached.value, fetchedAt: now, fallback: true}
		return cached.value.(T), nil
	}
	if stored, ok := c.loadSnapshot(kind, new(T)); ok {
		v := *stored.(*T)
		c.entries[kind] = entry{value: v, fetchedAt: now, fallback: true}
		c.logger.Info("reference.snapshot.used", "kind", kind)
		return v, nil
	}
	if builtin != nil {
		v := builtin()
		c.entries[kind] = entry{value: v, fetchedAt: now, fallback: true}
		c.logger.Info("reference.builtin.used", "kind", kind)
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("%w: %s: %v", ErrUnavailable, kind, err)
}

func fetchDecoded[T any](ctx context.Context, source Source, kind Kind, decode func([][]string) (T, error)) (T, error) {
	var zero T
	if source == nil {
		return zero, fmt.Errorf("no source for %s table", kind)
	}
	rows, err := source.Fetch(ctx, kind)
	if err != nil {
		return zero, err
	}
	return decode(rows)
}

func (c *Cache) saveSnapshot(kind Kind, value any) {
	if c.store == nil {
		return
	}
	payload, err := json.Marshal(value)
	if err == nil {
		err = ValidateSnapshot(kind, payload)
	}
	if err == nil {
		if last, lerr := c.store.LatestReferenceSnapshot(string(kind)); lerr == nil && last != nil && bytes.Equal(last.Payload, payload) {
			return
		}
		err = c.store.SaveReferenceSnapshot(string(kind), payload)
	}
	if err != nil {
		c.logger.Warn("reference.snapshot.save_failed", "kind", kind, "err", err)
	}
}

func (c *Cache) loadSnapshot(kind Kind, target any) (any, bool) {
	if c.store == nil {
		return nil, false
	}
	snap, err := c.store.LatestReferenceSnapshot(string(kind))
	if err != nil || snap == nil {
		return nil, false
	}
	if err := ValidateSnapshot(kind, snap.Payload); err != nil {
		c.logger.Warn("reference.snapshot.invalid", "kind", kind, "err", err)
		return nil, false
	}
	if err := json.Unmarshal(snap.Payload, target); err != nil {
		return nil, false
	}
	return target, true
}
