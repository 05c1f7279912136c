package household

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

const uniqueViolation = "23505"

// PostgresStore persists households in PostgreSQL.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const householdColumns = `id, number, address, hamlet, rt, rw, head_id, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, hh *Household) error {
	query := `
		INSERT INTO households (` + householdColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		hh.ID.String(), hh.Number.String(), hh.Address, hh.Hamlet, hh.RT, hh.RW,
		headIDValue(hh.HeadID), hh.CreatedAt, hh.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("create household: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, householdID id.HouseholdID) (*Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households WHERE id = $1`
	return s.scanHousehold(s.db.QueryRowContext(ctx, query, householdID.String()))
}

// FindByIDForUpdate locks the household row until the transaction ends, so
// two concurrent head assignments cannot both observe an empty head slot.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, householdID id.HouseholdID) (*Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households WHERE id = $1 FOR UPDATE`
	return s.scanHousehold(s.db.QueryRowContext(ctx, query, householdID.String()))
}

func (s *PostgresStore) FindByNumber(ctx context.Context, number id.HouseholdNumber) (*Household, error) {
	query := `SELECT ` + householdColumns + ` FROM households WHERE number = $1`
	return s.scanHousehold(s.db.QueryRowContext(ctx, query, number.String()))
}

func (s *PostgresStore) Update(ctx context.Context, hh *Household) error {
	query := `
		UPDATE households
		SET address = $2, hamlet = $3, rt = $4, rw = $5, head_id = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		hh.ID.String(), hh.Address, hh.Hamlet, hh.RT, hh.RW, headIDValue(hh.HeadID), hh.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update household: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update household: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, householdID id.HouseholdID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM households WHERE id = $1`, householdID.String())
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) scanHousehold(row *sql.Row) (*Household, error) {
	var hh Household
	var householdID, number string
	var headID sql.NullString
	err := row.Scan(&householdID, &number, &hh.Address, &hh.Hamlet, &hh.RT, &hh.RW,
		&headID, &hh.CreatedAt, &hh.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan household: %w", err)
	}
	parsedID, err := id.ParseHouseholdID(householdID)
	if err != nil {
		return nil, fmt.Errorf("scan household: %w", err)
	}
	hh.ID = parsedID
	hh.Number = id.HouseholdNumber(number)
	if headID.Valid {
		parsed, err := id.ParseResidentID(headID.String)
		if err != nil {
			return nil, fmt.Errorf("scan household: %w", err)
		}
		hh.HeadID = &parsed
	}
	return &hh, nil
}

func headIDValue(headID *id.ResidentID) any {
	if headID == nil {
		return nil
	}
	return headID.String()
}
