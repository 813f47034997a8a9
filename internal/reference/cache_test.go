package reference

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pepco/internal/describe"
	"pepco/internal/storage"
)

type fakeSource struct {
	tables map[Kind][][]string
	err    error
	calls  int
}

func (f *fakeSource) Fetch(_ context.Context, kind Kind) ([][]string, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	rows, ok := f.tables[kind]
	if !ok {
		return nil, errors.New("no table")
	}
	return rows, nil
}

func sampleTables() map[Kind][][]string {
	return map[Kind][][]string{
		KindPrices:       {{"PLN", "EUR"}, {"9.99", "2.5"}, {"12.99", "3"}},
		KindTranslations: {{"DEPARTMENT", "PRODUCT_NAME", "EN"}, {"Baby Boy", "T-shirt", "T-shirt"}},
		KindMaterials:    {{"Name", "AL", "MK"}, {"Cotton", "Pambuk", "Памук"}},
	}
}

func testStore(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestCacheMemoizesWithinTTL(t *testing.T) {
	src := &fakeSource{tables: sampleTables()}
	c := NewCache(src, nil, time.Minute, nil)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.PriceLadder(context.Background())
	require.NoError(t, err)
	_, err = c.PriceLadder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)

	now = now.Add(2 * time.Minute)
	_, err = c.PriceLadder(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCacheFallsBackToSnapshot(t *testing.T) {
	db := testStore(t)
	src := &fakeSource{tables: sampleTables()}
	warm := NewCache(src, db, time.Minute, nil)
	_, err := warm.Translations(context.Background())
	require.NoError(t, err)

	cold := NewCache(&fakeSource{err: errors.New("offline")}, db, time.Minute, nil)
	rows, err := cold.Translations(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "T-shirt", rows[0].Product)
	assert.Equal(t, []Kind{KindTranslations}, cold.Fallbacks())
}

func TestCacheUnavailableAndBuiltin(t *testing.T) {
	c := NewCache(&fakeSource{err: errors.New("offline")}, nil, time.Minute, nil)

	_, err := c.Translations(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = c.PriceLadder(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)

	materials, err := c.Materials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, describe.FallbackMaterials(), materials)
}

func TestCacheServesStaleCopyOnFailure(t *testing.T) {
	src := &fakeSource{tables: sampleTables()}
	c := NewCache(src, nil, time.Minute, nil)
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first, err := c.Materials(context.Background())
	require.NoError(t, err)

	src.err = errors.New("offline")
	now = now.Add(time.Hour)
	again, err := c.Materials(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, again)
	assert.Equal(t, []Kind{KindMaterials}, c.Fallbacks())

	c.Invalidate()
	assert.Empty(t, c.Fallbacks())
}

func TestSyncStoresSnapshots(t *testing.T) {
	db := testStore(t)
	svc := NewSyncService(db, &fakeSource{tables: sampleTables()}, nil)

	_, ok, err := svc.LastSync()
	require.NoError(t, err)
	assert.False(t, ok)

	res, err := svc.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, res.Counts[KindPrices])
	assert.Equal(t, 1, res.Counts[KindTranslations])
	assert.Equal(t, 2, res.Counts[KindMaterials])

	_, ok, err = svc.LastSync()
	require.NoError(t, err)
	assert.True(t, ok)

	for _, kind := range Kinds {
		snap, err := db.LatestReferenceSnapshot(string(kind))
		require.NoError(t, err)
		require.NotNil(t, snap, kind)
	}
}

func TestSyncStoresNothingOnPartialFailure(t *testing.T) {
	db := testStore(t)
	tables := sampleTables()
	delete(tables, KindMaterials)
	svc := NewSyncService(db, &fakeSource{tables: tables}, nil)

	_, err := svc.Sync(context.Background())
	require.Error(t, err)
	snap, err := db.LatestReferenceSnapshot(string(KindPrices))
	require.NoError(t, err)
	assert.Nil(t, snap)
}
