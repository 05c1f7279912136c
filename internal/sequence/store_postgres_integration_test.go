//go:build integration

package sequence_test

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"warga/internal/registry"
	"warga/internal/sequence"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/testutil/containers"
)

func newPostgres(t *testing.T) *containers.PostgresContainer {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	return containers.NewPostgresContainer(t, registry.Schema)
}

func TestPostgresNextStartsAtOne(t *testing.T) {
	pg := newPostgres(t)
	store := sequence.NewPostgresStore(pg.DB)
	ctx := context.Background()

	ordinal, err := store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	require.Equal(t, 1, ordinal)

	ordinal, err = store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	require.Equal(t, 2, ordinal)
}

func TestPostgresKeysAreIndependent(t *testing.T) {
	pg := newPostgres(t)
	store := sequence.NewPostgresStore(pg.DB)
	ctx := context.Background()

	_, err := store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	_, err = store.Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)

	ordinal, err := store.Next(ctx, id.DocumentTypeDomicile, 2026)
	require.NoError(t, err)
	require.Equal(t, 1, ordinal, "a different document type starts its own counter")

	ordinal, err = store.Next(ctx, id.DocumentTypeIncome, 2027)
	require.NoError(t, err)
	require.Equal(t, 1, ordinal, "a new year starts its own counter")
}

// TestPostgresConcurrentAllocation hammers one (type, year) key from many
// goroutines. Every ordinal must come back exactly once.
func TestPostgresConcurrentAllocation(t *testing.T) {
	pg := newPostgres(t)
	store := sequence.NewPostgresStore(pg.DB)
	ctx := context.Background()

	const n = 100
	var mu sync.Mutex
	ordinals := make([]int, 0, n)

	var g errgroup.Group
	for range n {
		g.Go(func() error {
			ordinal, err := store.Next(ctx, id.DocumentTypeBusiness, 2026)
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
	for i, ordinal := range ordinals {
		require.Equal(t, i+1, ordinal, "ordinals must be gapless and unique")
	}
}

// TestAllocationRollsBackWithTransaction verifies that an increment made
// inside a failed registry transaction does not consume an ordinal.
func TestAllocationRollsBackWithTransaction(t *testing.T) {
	pg := newPostgres(t)
	tx := registry.NewPostgresTx(pg.DB)
	ctx := context.Background()

	err := tx.RunInTx(ctx, func(st registry.Stores) error {
		ordinal, err := st.Sequences.Next(ctx, id.DocumentTypeDeath, 2026)
		require.NoError(t, err)
		require.Equal(t, 1, ordinal)
		return dErrors.New(dErrors.CodeConflict, "force rollback")
	})
	require.Error(t, err)

	store := sequence.NewPostgresStore(pg.DB)
	ordinal, err := store.Next(ctx, id.DocumentTypeDeath, 2026)
	require.NoError(t, err)
	require.Equal(t, 1, ordinal, "the rolled-back allocation must not leave a gap")
}
