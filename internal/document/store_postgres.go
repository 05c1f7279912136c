package document

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

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

// PostgresStore persists certificate requests in PostgreSQL. The payload is
// stored as JSONB tagged by the document_type column and decoded back into
// its typed variant on read.
type PostgresStore struct {
	db DBTX
}

func NewPostgresStore(db DBTX) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, document_type, subject_id, status, payload, number, rejection_reason,
	created_by, decided_by, created_at, updated_at, submitted_at, decided_at`

func (s *PostgresStore) Create(ctx context.Context, req *Request) error {
	payload, err := EncodePayload(req.Payload)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO document_requests (` + requestColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`
	_, err = s.db.ExecContext(ctx, query,
		req.ID.String(), req.Type.String(), req.SubjectID.String(), string(req.Status),
		payload, nullString(req.Number), nullString(req.RejectionReason),
		req.CreatedBy.String(), actorValue(req.DecidedBy),
		req.CreatedAt, req.UpdatedAt, req.SubmittedAt, req.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("create document request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.DocumentRequestID) (*Request, error) {
	return s.findByID(ctx, requestID, "")
}

// FindByIDForUpdate locks the request row until the transaction ends. Under
// READ COMMITTED an unlocked read would let two concurrent approvals both see
// SUBMITTED; the second would overwrite the first's document number.
func (s *PostgresStore) FindByIDForUpdate(ctx context.Context, requestID id.DocumentRequestID) (*Request, error) {
	return s.findByID(ctx, requestID, " FOR UPDATE")
}

func (s *PostgresStore) findByID(ctx context.Context, requestID id.DocumentRequestID, lock string) (*Request, error) {
	query := `SELECT ` + requestColumns + ` FROM document_requests WHERE id = $1` + lock
	row := s.db.QueryRowContext(ctx, query, requestID.String())

	var req Request
	var reqID, docType, subjectID, status, createdBy string
	var number, rejectionReason, decidedBy sql.NullString
	var payload []byte
	err := row.Scan(&reqID, &docType, &subjectID, &status, &payload, &number, &rejectionReason,
		&createdBy, &decidedBy, &req.CreatedAt, &req.UpdatedAt, &req.SubmittedAt, &req.DecidedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan document request: %w", err)
	}

	req.ID, err = id.ParseDocumentRequestID(reqID)
	if err != nil {
		return nil, fmt.Errorf("scan document request: %w", err)
	}
	req.Type, err = id.ParseDocumentType(docType)
	if err != nil {
		return nil, fmt.Errorf("scan document request: %w", err)
	}
	req.SubjectID, err = id.ParseResidentID(subjectID)
	if err != nil {
		return nil, fmt.Errorf("scan document request: %w", err)
	}
	req.CreatedBy, err = id.ParseActorID(createdBy)
	if err != nil {
		return nil, fmt.Errorf("scan document request: %w", err)
	}
	if decidedBy.Valid {
		req.DecidedBy, err = id.ParseActorID(decidedBy.String)
		if err != nil {
			return nil, fmt.Errorf("scan document request: %w", err)
		}
	}
	req.Status = Status(status)
	req.Number = number.String
	req.RejectionReason = rejectionReason.String

	req.Payload, err = DecodePayload(req.Type, payload)
	if err != nil {
		return nil, fmt.Errorf("decode stored payload: %w", err)
	}
	return &req, nil
}

func (s *PostgresStore) Update(ctx context.Context, req *Request) error {
	payload, err := EncodePayload(req.Payload)
	if err != nil {
		return err
	}
	query := `
		UPDATE document_requests
		SET status = $2, payload = $3, number = $4, rejection_reason = $5,
			decided_by = $6, updated_at = $7, submitted_at = $8, decided_at = $9
		WHERE id = $1
	`
	result, err := s.db.ExecContext(ctx, query,
		req.ID.String(), string(req.Status), payload, nullString(req.Number),
		nullString(req.RejectionReason), actorValue(req.DecidedBy),
		req.UpdatedAt, req.SubmittedAt, req.DecidedAt,
	)
	if err != nil {
		return fmt.Errorf("update document request: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document request: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func actorValue(actorID id.ActorID) any {
	if actorID.IsNil() {
		return nil
	}
	return actorID.String()
}
