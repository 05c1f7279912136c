//go:build integration

package service_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"warga/internal/document"
	"warga/internal/document/service"
	"warga/internal/registry"
	"warga/internal/resident"
	"warga/internal/sequence"
	id "warga/pkg/domain"
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/requestcontext"
	"warga/pkg/testutil/containers"
)

func newWorkflow(t *testing.T) (*service.Service, *document.PostgresStore, *containers.PostgresContainer, context.Context) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.NewPostgresContainer(t, registry.Schema)
	documents := document.NewPostgresStore(pg.DB)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewService(registry.NewPostgresTx(pg.DB), documents, "DS-SUKAMAJU", logger, nil)
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC))
	return svc, documents, pg, ctx
}

func createActiveSubject(t *testing.T, pg *containers.PostgresContainer, ctx context.Context) id.ResidentID {
	t.Helper()
	store := resident.NewPostgresStore(pg.DB)
	res := &resident.Resident{
		ID:         id.NewResidentID(),
		NationalID: id.NationalID("3201018888999900"),
		Name:       "Siti Aminah",
		BirthDate:  time.Date(1990, 1, 5, 0, 0, 0, 0, time.UTC),
		Role:       resident.RoleOtherRelative,
		Status:     resident.StatusActive,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	require.NoError(t, store.Create(ctx, res))
	return res.ID
}

// TestConcurrentApprovalsOfOneRequest races two approvals of the same
// SUBMITTED request. The row lock taken by the transition read must let only
// one through; the loser sees APPROVED and conflicts, and the winning number
// is never overwritten.
func TestConcurrentApprovalsOfOneRequest(t *testing.T) {
	svc, documents, pg, ctx := newWorkflow(t)
	subjectID := createActiveSubject(t, pg, ctx)
	clerk := id.NewActorID()

	request, err := svc.Create(ctx, service.CreateRequest{
		Type:      id.DocumentTypeIncome,
		SubjectID: subjectID,
		Payload:   document.IncomeParticulars{MonthlyIncome: 700_000, Purpose: "assistance"},
		ActorID:   clerk,
	})
	require.NoError(t, err)
	_, err = svc.Submit(ctx, request.ID, clerk)
	require.NoError(t, err)

	errs := make([]error, 2)
	var g errgroup.Group
	for i := range errs {
		g.Go(func() error {
			_, errs[i] = svc.Approve(ctx, request.ID, id.NewActorID())
			return nil
		})
	}
	require.NoError(t, g.Wait())

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case dErrors.HasCode(err, dErrors.CodeConflict):
			conflicts++
		default:
			t.Fatalf("unexpected approval error: %v", err)
		}
	}
	require.Equal(t, 1, successes, "exactly one approval must win")
	require.Equal(t, 1, conflicts, "the loser must conflict, not overwrite")

	stored, err := documents.FindByID(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, document.StatusApproved, stored.Status)
	require.Equal(t, "001/SKTM/DS-SUKAMAJU/VIII/2026", stored.Number,
		"the first assigned number must stand")

	// The losing approval must not have consumed an ordinal.
	next, err := sequence.NewPostgresStore(pg.DB).Next(ctx, id.DocumentTypeIncome, 2026)
	require.NoError(t, err)
	require.Equal(t, 2, next)
}
