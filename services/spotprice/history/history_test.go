package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPushAndRecent(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), ".price_history.db"))
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

	for i, price := range []float64{11.1, 22.2, 33.3} {
		fetchedAt := base.Add(time.Duration(i) * time.Hour)
		err := store.Push(ctx, fetchedAt, fetchedAt.Add(30*time.Minute), price)
		require.NoError(t, err)
	}

	fetches, err := store.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, fetches, 2)
	require.Equal(t, 33.3, fetches[0].Price)
	require.Equal(t, 22.2, fetches[1].Price)
	require.Equal(t, base.Add(2*time.Hour), fetches[0].FetchedAt)
	require.Equal(t, base.Add(2*time.Hour+30*time.Minute), fetches[0].PeriodEnd)
}

func TestRecentEmpty(t *testing.T) {
	store, err := Open(filepath.Join(t.TempDir(), ".price_history.db"))
	require.NoError(t, err)
	defer store.Close()

	fetches, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Empty(t, fetches)
}

func TestOpenExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".price_history.db")

	store, err := Open(path)
	require.NoError(t, err)
	err = store.Push(context.Background(), time.Now(), time.Now().Add(30*time.Minute), 9.9)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// reopening runs the schema again, which must be a no-op
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()

	fetches, err := store.Recent(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, fetches, 1)
}
