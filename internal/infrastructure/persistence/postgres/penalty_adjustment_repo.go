package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// PenaltyAdjustmentRepo implements port.PenaltyAdjustmentRepository.
// Adjustment records are append-only and written inside the loan save
// transaction via saveAdjustment.
type PenaltyAdjustmentRepo struct {
	pool *pgxpool.Pool
}

// NewPenaltyAdjustmentRepo creates a new PostgreSQL-backed adjustment repository.
func NewPenaltyAdjustmentRepo(pool *pgxpool.Pool) *PenaltyAdjustmentRepo {
	return &PenaltyAdjustmentRepo{pool: pool}
}

// saveAdjustment appends a penalty adjustment audit record within the given
// transaction.
func saveAdjustment(ctx context.Context, tx pgx.Tx, adjustment model.PenaltyAdjustment) error {
	query := `
		INSERT INTO penalty_adjustments (
			id, company_id, loan_id, adjustment_type,
			previous_amount, current_amount, currency,
			reason, actor, adjusted_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`
	_, err := tx.Exec(ctx, query,
		adjustment.ID(), adjustment.CompanyID(), adjustment.LoanID(),
		adjustment.AdjustmentType().String(),
		adjustment.Previous().Amount(), adjustment.Current().Amount(),
		adjustment.Current().Currency().Code(),
		adjustment.Reason(), adjustment.Actor(), adjustment.AdjustedAt(),
	)
	if err != nil {
		return fmt.Errorf("save penalty adjustment: %w", err)
	}
	return nil
}

// FindByLoanID retrieves a loan's adjustment history, oldest first.
func (r *PenaltyAdjustmentRepo) FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.PenaltyAdjustment, error) {
	query := `
		SELECT id, company_id, loan_id, adjustment_type,
		       previous_amount, current_amount, currency,
		       reason, actor, adjusted_at
		FROM penalty_adjustments
		WHERE company_id = $1 AND loan_id = $2
		ORDER BY adjusted_at
	`
	rows, err := r.pool.Query(ctx, query, companyID, loanID)
	if err != nil {
		return nil, fmt.Errorf("query penalty adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []model.PenaltyAdjustment
	for rows.Next() {
		var (
			id, company, loan, typeStr string
			previous, current          decimal.Decimal
			currencyStr, reason, actor string
			adjustedAt                 time.Time
		)
		if err := rows.Scan(
			&id, &company, &loan, &typeStr,
			&previous, &current, &currencyStr,
			&reason, &actor, &adjustedAt,
		); err != nil {
			return nil, fmt.Errorf("scan penalty adjustment: %w", err)
		}

		adjustmentType, err := valueobject.NewAdjustmentType(typeStr)
		if err != nil {
			return nil, fmt.Errorf("parse adjustment type: %w", err)
		}
		currency, err := money.NewCurrency(currencyStr)
		if err != nil {
			return nil, fmt.Errorf("parse adjustment currency: %w", err)
		}

		adjustments = append(adjustments, model.ReconstructPenaltyAdjustment(
			id, company, loan, adjustmentType,
			money.New(previous, currency), money.New(current, currency),
			reason, actor, adjustedAt,
		))
	}
	return adjustments, rows.Err()
}
