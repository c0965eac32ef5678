package spotprice

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"flickprice/lib/scrapers/flick"

	"github.com/stretchr/testify/require"
)

func TestPriceCacheRoundTrip(t *testing.T) {
	cache := priceCache{path: filepath.Join(t.TempDir(), ".price")}

	snap := flick.Snapshot{
		Price: 23.45,
		EndAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, cache.Store(snap))

	loaded, ok := cache.Load()
	require.True(t, ok)
	require.Equal(t, snap, loaded)

	info, err := os.Stat(cache.path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestPriceCacheFileFormat(t *testing.T) {
	// the on-disk format is shared with the original tooling
	cache := priceCache{path: filepath.Join(t.TempDir(), ".price")}
	require.NoError(t, cache.Store(flick.Snapshot{
		Price: 23.45,
		EndAt: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
	}))

	contents, err := os.ReadFile(cache.path)
	require.NoError(t, err)
	require.JSONEq(t, `{"current_price":23.45,"end_at":"2024-01-01T00:00:00Z"}`, string(contents))
}

func TestPriceCacheAbsent(t *testing.T) {
	cache := priceCache{path: filepath.Join(t.TempDir(), ".price")}
	_, ok := cache.Load()
	require.False(t, ok)
}

func TestPriceCacheCorrupt(t *testing.T) {
	for _, contents := range []string{
		"not json at all",
		`{"current_price":"nope","end_at":"2024-01-01T00:00:00Z"}`,
		`{"current_price":23.45,"end_at":"january-ish"}`,
	} {
		cache := priceCache{path: filepath.Join(t.TempDir(), ".price")}
		require.NoError(t, os.WriteFile(cache.path, []byte(contents), 0o600))

		_, ok := cache.Load()
		require.False(t, ok, "contents %q should read as a miss", contents)
	}
}
