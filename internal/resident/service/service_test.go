package service

import (
	"context"
	"io"
	"log/slog"
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
	dErrors "warga/pkg/domain-errors"
	"warga/pkg/requestcontext"
	"warga/pkg/testutil"
)

func newService(t *testing.T) (*Service, *resident.InMemoryStore, *mutation.InMemoryStore, context.Context) {
	t.Helper()
	residents := resident.NewInMemoryStore()
	events := mutation.NewInMemoryStore()
	tx := registry.NewMemoryTx(registry.Stores{
		Residents:  residents,
		Households: household.NewInMemoryStore(),
		Events:     events,
		Documents:  document.NewInMemoryStore(),
		Sequences:  sequence.NewInMemoryStore(),
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	ctx := requestcontext.WithTime(context.Background(), time.Date(2026, 5, 2, 9, 0, 0, 0, time.UTC))
	return NewService(tx, residents, events, logger), residents, events, ctx
}

func TestRegister(t *testing.T) {
	svc, _, _, ctx := newService(t)

	testutil.Given(t, "an empty registry", func(t *testing.T) {
		testutil.When(t, "a resident is registered with a valid national id", func(t *testing.T) {
			res, err := svc.Register(ctx, RegisterRequest{
				NationalID: "3201015555666677",
				Name:       "Dewi Lestari",
				BirthPlace: "Bandung",
				BirthDate:  time.Date(1992, 6, 14, 0, 0, 0, 0, time.UTC),
			})
			require.NoError(t, err)

			testutil.Then(t, "the record is ACTIVE with the default role", func(t *testing.T) {
				require.Equal(t, resident.StatusActive, res.Status)
				require.Equal(t, resident.RoleOtherRelative, res.Role)
			})
		})

		testutil.When(t, "the same national id is registered again", func(t *testing.T) {
			_, err := svc.Register(ctx, RegisterRequest{NationalID: "3201015555666677", Name: "Impostor"})

			testutil.Then(t, "the registration conflicts", func(t *testing.T) {
				require.Error(t, err)
				require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
			})
		})
	})
}

func TestRegisterRejectsHeadRole(t *testing.T) {
	svc, _, _, ctx := newService(t)
	_, err := svc.Register(ctx, RegisterRequest{
		NationalID: "3201015555666688",
		Name:       "Calon Kepala",
		Role:       resident.RoleHead,
	})
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestRegisterRejectsMissingHousehold(t *testing.T) {
	svc, residents, _, ctx := newService(t)
	missing := id.NewHouseholdID()
	_, err := svc.Register(ctx, RegisterRequest{
		NationalID:  "3201015555666699",
		Name:        "Tanpa Rumah",
		HouseholdID: &missing,
	})
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))

	_, err = residents.FindByNationalID(ctx, id.NationalID("3201015555666699"))
	require.Error(t, err, "the failed registration must leave no record")
}

func TestEditOnlyWhileActive(t *testing.T) {
	svc, residents, _, ctx := newService(t)

	res, err := svc.Register(ctx, RegisterRequest{NationalID: "3201017777888899", Name: "Joko"})
	require.NoError(t, err)

	updated, err := svc.Edit(ctx, EditRequest{ResidentID: res.ID, Name: "Joko Susilo"})
	require.NoError(t, err)
	require.Equal(t, "Joko Susilo", updated.Name)

	res.Status = resident.StatusDeceased
	require.NoError(t, residents.Update(ctx, res))

	_, err = svc.Edit(ctx, EditRequest{ResidentID: res.ID, Name: "Posthumous Edit"})
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestHistory(t *testing.T) {
	svc, _, events, ctx := newService(t)

	res, err := svc.Register(ctx, RegisterRequest{NationalID: "3201010000111122", Name: "Sari"})
	require.NoError(t, err)

	for _, eventType := range []mutation.EventType{mutation.EventMigrateIn, mutation.EventMigrateOut} {
		require.NoError(t, events.Append(ctx, &mutation.Event{
			ID:        id.NewEventID(),
			SubjectID: res.ID,
			Type:      eventType,
			Date:      requestcontext.Now(ctx),
			ActorID:   id.NewActorID(),
			CreatedAt: requestcontext.Now(ctx),
		}))
	}

	log, err := svc.History(ctx, res.ID)
	require.NoError(t, err)
	require.Len(t, log, 2)
	require.Equal(t, mutation.EventMigrateIn, log[0].Type)

	_, err = svc.History(ctx, id.NewResidentID())
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}
