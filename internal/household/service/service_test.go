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
)

type fixture struct {
	svc        *Service
	residents  *resident.InMemoryStore
	households *household.InMemoryStore
	ctx        context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	residents := resident.NewInMemoryStore()
	households := household.NewInMemoryStore()

	tx := registry.NewMemoryTx(registry.Stores{
		Residents:  residents,
		Households: households,
		Events:     mutation.NewInMemoryStore(),
		Documents:  document.NewInMemoryStore(),
		Sequences:  sequence.NewInMemoryStore(),
	})
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	return &fixture{
		svc:        NewService(tx, households, logger),
		residents:  residents,
		households: households,
		ctx:        requestcontext.WithTime(context.Background(), time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)),
	}
}

func (f *fixture) addHousehold(t *testing.T, number string) *household.Household {
	t.Helper()
	hh, err := f.svc.Register(f.ctx, RegisterRequest{
		Number:  number,
		Address: "Jl. Melati No. 3",
		Hamlet:  "Dusun Krajan",
		RT:      "002",
		RW:      "001",
	})
	require.NoError(t, err)
	return hh
}

func (f *fixture) addMember(t *testing.T, nationalID string, householdID *id.HouseholdID, status resident.LifecycleStatus) *resident.Resident {
	t.Helper()
	res := &resident.Resident{
		ID:          id.NewResidentID(),
		NationalID:  id.NationalID(nationalID),
		Name:        "Warga Uji",
		Role:        resident.RoleOtherRelative,
		Status:      status,
		HouseholdID: householdID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	require.NoError(t, f.residents.Create(f.ctx, res))
	return res
}

func TestRegisterRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	f.addHousehold(t, "3201012222333344")

	_, err := f.svc.Register(f.ctx, RegisterRequest{Number: "3201012222333344", Address: "elsewhere"})
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRegisterRejectsMalformedNumber(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Register(f.ctx, RegisterRequest{Number: "not-a-number", Address: "Jl. Melati"})
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
}

func TestSetHead(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	res := f.addMember(t, "3201010101800001", &hh.ID, resident.StatusActive)

	require.NoError(t, f.svc.SetHead(f.ctx, hh.ID, res.ID))

	updated, err := f.households.FindByID(f.ctx, hh.ID)
	require.NoError(t, err)
	require.NotNil(t, updated.HeadID)
	require.Equal(t, res.ID, *updated.HeadID)

	member, err := f.residents.FindByID(f.ctx, res.ID)
	require.NoError(t, err)
	require.Equal(t, resident.RoleHead, member.Role)
}

func TestSetHeadRejectsSecondHead(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	first := f.addMember(t, "3201010101800001", &hh.ID, resident.StatusActive)
	second := f.addMember(t, "3201010101800002", &hh.ID, resident.StatusActive)

	require.NoError(t, f.svc.SetHead(f.ctx, hh.ID, first.ID))

	err := f.svc.SetHead(f.ctx, hh.ID, second.ID)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestSetHeadRejectsNonMember(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	outsider := f.addMember(t, "3201010101800003", nil, resident.StatusActive)

	err := f.svc.SetHead(f.ctx, hh.ID, outsider.ID)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestSetHeadRejectsInactiveResident(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	res := f.addMember(t, "3201010101800004", &hh.ID, resident.StatusDeceased)

	err := f.svc.SetHead(f.ctx, hh.ID, res.ID)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestRemoveMemberClearsHeadSlot(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	res := f.addMember(t, "3201010101800005", &hh.ID, resident.StatusActive)
	require.NoError(t, f.svc.SetHead(f.ctx, hh.ID, res.ID))

	require.NoError(t, f.svc.RemoveMember(f.ctx, hh.ID, res.ID))

	updated, err := f.households.FindByID(f.ctx, hh.ID)
	require.NoError(t, err)
	require.Nil(t, updated.HeadID)

	member, err := f.residents.FindByID(f.ctx, res.ID)
	require.NoError(t, err)
	require.Nil(t, member.HouseholdID)
}

func TestDeleteBlockedByActiveMembers(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	f.addMember(t, "3201010101800006", &hh.ID, resident.StatusActive)

	err := f.svc.Delete(f.ctx, hh.ID)
	require.Error(t, err)
	require.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
}

func TestDeleteAllowedWhenOnlyInactiveMembersRemain(t *testing.T) {
	f := newFixture(t)
	hh := f.addHousehold(t, "3201012222333344")
	f.addMember(t, "3201010101800007", &hh.ID, resident.StatusDeceased)
	f.addMember(t, "3201010101800008", &hh.ID, resident.StatusRelocated)

	require.NoError(t, f.svc.Delete(f.ctx, hh.ID))

	_, err := f.households.FindByID(f.ctx, hh.ID)
	require.Error(t, err)
}
