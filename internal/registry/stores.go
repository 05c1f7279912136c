// Package registry defines the transaction boundary shared by the mutation
// engine and the document workflow. Every state-changing operation runs
// through TxRunner so cross-entity writes commit or roll back as one unit;
// nothing observes partially-applied state.
package registry

import (
	"context"

	"warga/internal/document"
	"warga/internal/household"
	"warga/internal/mutation"
	"warga/internal/resident"
	"warga/internal/sequence"
)

// Stores bundles every store a registry operation may touch. Inside RunInTx
// all of them are bound to the same transaction.
type Stores struct {
	Residents  resident.Store
	Households household.Store
	Events     mutation.Store
	Documents  document.Store
	Sequences  sequence.Store
}

// TxRunner executes fn against transaction-bound stores. If fn returns an
// error every write made through the stores is rolled back.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(s Stores) error) error
}
