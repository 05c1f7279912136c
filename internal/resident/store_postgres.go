package resident

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	id "warga/pkg/domain"
	"warga/pkg/platform/sentinel"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the same store code runs
// standalone or inside a registry transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// uniqueViolation is the PostgreSQL error code for unique constraint failures.
const uniqueViolation = "23505"

// PostgresStore persists residents in PostgreSQL.
type PostgresStore struct {
	db DBTX
}

// NewPostgresStore constructs a PostgreSQL-backed resident store. The db
// argument may be a *sql.DB or a *sql.Tx bound to a registry transaction.
func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const residentColumns = `id, national_id, name, birth_place, birth_date, role, status, household_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, res *Resident) error {
	query := `
		INSERT INTO residents (` + residentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := s.db.ExecContext(ctx, query,
		res.ID.String(), res.NationalID.String(), res.Name, res.BirthPlace, res.BirthDate,
		string(res.Role), string(res.Status), householdIDValue(res.HouseholdID),
		res.CreatedAt, res.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create resident: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, residentID id.ResidentID) (*Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1`
	return s.scanResident(s.db.QueryRowContext(ctx, query, residentID.String()))
}

// FindByIDForUpdate locks the resident row until the transaction ends, so
// concurrent lifecycle mutations for the same subject serialize instead of
// both passing the ACTIVE precondition.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, residentID id.ResidentID) (*Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE id = $1 FOR UPDATE`
	return s.scanResident(s.db.QueryRowContext(ctx, query, residentID.String()))
}

func (s *PostgresStore) FindByNationalID(ctx context.Context, nationalID id.NationalID) (*Resident, error) {
	query := `SELECT ` + residentColumns + ` FROM residents WHERE national_id = $1`
	return s.scanResident(s.db.QueryRowContext(ctx, query, nationalID.String()))
}

func (s *PostgresStore) Update(ctx context.Context, res *Resident) error {
	query := `
		UPDATE residents
		SET name = $2, birth_place = $3, birth_date = $4, role = $5, status = $6,
			household_id = $7, updated_at = $8
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		res.ID.String(), res.Name, res.BirthPlace, res.BirthDate, string(res.Role),
		string(res.Status), householdIDValue(res.HouseholdID), res.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update resident: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update resident: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountActiveMembers(ctx context.Context, householdID id.HouseholdID) (int, error) {
	query := `SELECT COUNT(*) FROM residents WHERE household_id = $1 AND status = $2`
	var count int
	err := s.db.QueryRowContext(ctx, query, householdID.String(), string(StatusActive)).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count active members: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) scanResident(row *sql.Row) (*Resident, error) {
	var res Resident
	var residentID, nationalID, role, status string
	var householdID sql.NullString
	err := row.Scan(&residentID, &nationalID, &res.Name, &res.BirthPlace, &res.BirthDate,
		&role, &status, &householdID, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan resident: %w", err)
	}
	parsedID, err := id.ParseResidentID(residentID)
	if err != nil {
		return nil, fmt.Errorf("scan resident: %w", err)
	}
	res.ID = parsedID
	res.NationalID = id.NationalID(nationalID)
	res.Role = FamilyRole(role)
	res.Status = LifecycleStatus(status)
	if householdID.Valid {
		parsed, err := id.ParseHouseholdID(householdID.String)
		if err != nil {
			return nil, fmt.Errorf("scan resident: %w", err)
		}
		res.HouseholdID = &parsed
	}
	return &res, nil
}

func householdIDValue(householdID *id.HouseholdID) any {
	if householdID == nil {
		return nil
	}
	return householdID.String()
}
