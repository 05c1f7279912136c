package service

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"warga/internal/document"
	"warga/internal/household"
	"warga/internal/mutation"
	"warga/internal/registry"
	"warga/internal/resident"
	"warga/internal/sequence"
	id "warga/pkg/domain"
	"warga/pkg/requestcontext"
)

// lockTrackingStore counts reads that take the row lock. Status transitions
// must go through FindByIDForUpdate; on the postgres backend an unlocked read
// would let two concurrent approvals both observe SUBMITTED and the second
// overwrite the first's document number.
type lockTrackingStore struct {
	*document.InMemoryStore
	lockedReads atomic.Int32
}

func (s *lockTrackingStore) FindByIDForUpdate(ctx context.Context, requestID id.DocumentRequestID) (*document.Request, error) {
	s.lockedReads.Add(1)
	return s.InMemoryStore.FindByIDForUpdate(ctx, requestID)
}

func TestTransitionsReadWithRowLock(t *testing.T) {
	residents := resident.NewInMemoryStore()
	documents := &lockTrackingStore{InMemoryStore: document.NewInMemoryStore()}
	tx := registry.NewMemoryTx(registry.Stores{
		Residents:  residents,
		Households: household.NewInMemoryStore(),
		Events:     mutation.NewInMemoryStore(),
		Documents:  documents,
		Sequences:  sequence.NewInMemoryStore(),
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := NewService(tx, documents, "DS-SUKAMAJU", logger, nil)

	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	subject := &resident.Resident{
		ID:         id.NewResidentID(),
		NationalID: id.NationalID("3201016666777788"),
		Name:       "Fitri",
		Status:     resident.StatusActive,
		Role:       resident.RoleOtherRelative,
	}
	require.NoError(t, residents.Create(ctx, subject))
	clerk := id.NewActorID()

	request, err := svc.Create(ctx, CreateRequest{
		Type:      id.DocumentTypeIncome,
		SubjectID: subject.ID,
		Payload:   document.IncomeParticulars{MonthlyIncome: 600_000, Purpose: "assistance"},
		ActorID:   clerk,
	})
	require.NoError(t, err)

	before := documents.lockedReads.Load()
	_, err = svc.Submit(ctx, request.ID, clerk)
	require.NoError(t, err)
	_, err = svc.Approve(ctx, request.ID, id.NewActorID())
	require.NoError(t, err)

	require.Equal(t, before+2, documents.lockedReads.Load(),
		"submit and approve must each read the request with the row locked")
}
