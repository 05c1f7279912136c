package sequence

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	id "warga/pkg/domain"
)

func TestInMemoryStore_StartsAtOnePerKey(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	first, err := store.Next(ctx, id.DocumentTypeDomicile, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, first)

	second, err := store.Next(ctx, id.DocumentTypeDomicile, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, second)

	// Different type and different year each start their own sequence.
	otherType, err := store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, otherType)

	otherYear, err := store.Next(ctx, id.DocumentTypeDomicile, 2027)
	require.NoError(t, err)
	assert.Equal(t, 1, otherYear)
}

func TestInMemoryStore_ConcurrentAllocationsAreGapless(t *testing.T) {
	const n = 100
	store := NewInMemoryStore()
	ctx := context.Background()

	var mu sync.Mutex
	ordinals := make([]int, 0, n)

	var g errgroup.Group
	for i := 0; i < n; i++ {
		g.Go(func() error {
			ordinal, err := store.Next(ctx, id.DocumentTypeDomicile, 2026)
			if err != nil {
				return err
			}
			mu.Lock()
			ordinals = append(ordinals, ordinal)
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	sort.Ints(ordinals)
	require.Len(t, ordinals, n)
	for i, ordinal := range ordinals {
		assert.Equal(t, i+1, ordinal, "expected gapless sequence from 1 with no duplicates")
	}
}

func TestInMemoryStore_SnapshotRestore(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	_, err := store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)

	snap := store.Snapshot()

	_, err = store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	_, err = store.Next(ctx, id.DocumentTypeBusiness, 2026)
	require.NoError(t, err)

	store.Restore(snap)

	next, err := store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	assert.Equal(t, 2, next, "restore should roll the counter back to the snapshot position")

	fresh, err := store.Next(ctx, id.DocumentTypeBusiness, 2026)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh, "counters created after the snapshot should reset")
}
