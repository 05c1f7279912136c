// Package sequence allocates the unique, monotonically increasing ordinals
// stamped on approved certificates. Ordinals run from 1 per (document type,
// year) key; two successful allocations for the same key never return the
// same value, no matter how many approvals race.
//
// A read-compute-write of "last issued + 1" is not good enough here: two
// approvers finishing in the same instant would both read the same last value.
// Every implementation must make the read-increment-return atomic per key,
// while keeping distinct keys free of contention. The durable store is the
// only source of truth; nothing is cached across requests.
package sequence

import (
	"context"

	id "warga/pkg/domain"
)

// Store hands out the next ordinal for a (document type, year) key.
type Store interface {
	// Next atomically increments and returns the counter for the key,
	// starting at 1.
	Next(ctx context.Context, docType id.DocumentType, year int) (int, error)
}
