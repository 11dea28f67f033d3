package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
)

// ClientRepo implements port.ClientRepository.
type ClientRepo struct {
	pool *pgxpool.Pool
}

// NewClientRepo creates a new PostgreSQL-backed client repository.
func NewClientRepo(pool *pgxpool.Pool) *ClientRepo {
	return &ClientRepo{pool: pool}
}

// Save persists a client under the same optimistic locking discipline as
// loans.
func (r *ClientRepo) Save(ctx context.Context, client model.Client) error {
	query := `
		INSERT INTO clients (
			id, company_id, full_name, document_number, phone,
			classification, version, created_at, updated_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET
			full_name       = EXCLUDED.full_name,
			document_number = EXCLUDED.document_number,
			phone           = EXCLUDED.phone,
			classification  = EXCLUDED.classification,
			version         = clients.version + 1,
			updated_at      = EXCLUDED.updated_at
		WHERE clients.version = $7
	`
	tag, err := r.pool.Exec(ctx, query,
		client.ID(), client.CompanyID(), client.FullName(), client.DocumentNumber(),
		nullableString(client.Phone()), client.Classification().String(),
		client.Version(), client.CreatedAt(), client.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Conflict("client %s was modified concurrently", client.ID())
	}
	return nil
}

// FindByID retrieves a client by ID.
func (r *ClientRepo) FindByID(ctx context.Context, companyID, id string) (model.Client, error) {
	query := `
		SELECT id, company_id, full_name, document_number, phone,
		       classification, version, created_at, updated_at
		FROM clients
		WHERE company_id = $1 AND id = $2
	`
	var (
		clientID, company, fullName, documentNumber string
		phone                                       *string
		classificationStr                           string
		version                                     int
		createdAt, updatedAt                        time.Time
	)
	err := r.pool.QueryRow(ctx, query, companyID, id).Scan(
		&clientID, &company, &fullName, &documentNumber, &phone,
		&classificationStr, &version, &createdAt, &updatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Client{}, fault.Validation("client %s not found", id)
	}
	if err != nil {
		return model.Client{}, fmt.Errorf("scan client: %w", err)
	}

	classification, err := valueobject.NewClassification(classificationStr)
	if err != nil {
		return model.Client{}, fmt.Errorf("parse classification: %w", err)
	}

	var phoneStr string
	if phone != nil {
		phoneStr = *phone
	}

	return model.ReconstructClient(
		clientID, company, fullName, documentNumber, phoneStr,
		classification, version, createdAt, updatedAt,
	), nil
}
