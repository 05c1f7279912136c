package registry

import (
	"context"
	"time"

	dErrors "warga/pkg/domain-errors"
)

// defaultTxTimeout is the maximum duration for a registry transaction.
const defaultTxTimeout = 5 * time.Second

// snapshotter is implemented by the in-memory stores so MemoryTx can roll
// back a failed multi-store operation.
type snapshotter interface {
	Snapshot() any
	Restore(any)
}

// MemoryTx serializes registry operations with a coarse lock and rolls back
// via store snapshots. It backs tests and local development; PostgresTx is
// the production runner.
type MemoryTx struct {
	stores  Stores
	timeout time.Duration
	sem     chan struct{}
}

// NewMemoryTx builds a runner over in-memory stores. Stores that implement
// snapshotter participate in rollback.
func NewMemoryTx(stores Stores) *MemoryTx {
	return &MemoryTx{
		stores: stores,
		sem:    make(chan struct{}, 1),
	}
}

func (t *MemoryTx) RunInTx(ctx context.Context, fn func(s Stores) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}

	timeout := t.timeout
	if timeout == 0 {
		timeout = defaultTxTimeout
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	select {
	case t.sem <- struct{}{}:
	case <-ctx.Done():
		return dErrors.Wrap(ctx.Err(), dErrors.CodeTimeout, "transaction aborted: lock wait exceeded")
	}
	defer func() { <-t.sem }()

	snapshots := t.takeSnapshots()
	if err := fn(t.stores); err != nil {
		t.restoreSnapshots(snapshots)
		return err
	}
	return nil
}

func (t *MemoryTx) snapshotters() []snapshotter {
	var out []snapshotter
	for _, store := range []any{t.stores.Residents, t.stores.Households, t.stores.Events, t.stores.Documents, t.stores.Sequences} {
		if s, ok := store.(snapshotter); ok {
			out = append(out, s)
		}
	}
	return out
}

func (t *MemoryTx) takeSnapshots() map[snapshotter]any {
	snapshots := make(map[snapshotter]any)
	for _, s := range t.snapshotters() {
		snapshots[s] = s.Snapshot()
	}
	return snapshots
}

func (t *MemoryTx) restoreSnapshots(snapshots map[snapshotter]any) {
	for s, snap := range snapshots {
		s.Restore(snap)
	}
}
