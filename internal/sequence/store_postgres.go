package sequence

import (
	"context"
	"database/sql"
	"fmt"

	id "warga/pkg/domain"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx so the allocator can run
// inside the approval's registry transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// PostgresStore keeps one counter row per (document type, year). The
// increment happens in a single statement, so PostgreSQL's row lock
// serializes concurrent callers for the same key while leaving other keys
// untouched. When the allocation runs inside an approval transaction, a later
// rollback also rolls the counter back, keeping sequences gapless.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Next(ctx context.Context, docType id.DocumentType, year int) (int, error) {
	query := `
		INSERT INTO document_counters (document_type, year, last_ordinal)
		VALUES ($1, $2, 1)
		ON CONFLICT (document_type, year)
		DO UPDATE SET last_ordinal = document_counters.last_ordinal + 1
		RETURNING last_ordinal
	`
	var ordinal int
	err := s.db.QueryRowContext(ctx, query, docType.String(), year).Scan(&ordinal)
	if err != nil {
		return 0, fmt.Errorf("allocate ordinal for %s/%d: %w", docType, year, err)
	}
	return ordinal, nil
}
