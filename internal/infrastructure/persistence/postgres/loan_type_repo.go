package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/model"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/money"
)

// LoanTypeRepo implements port.LoanTypeRepository. Loan products are
// write-once templates.
type LoanTypeRepo struct {
	pool *pgxpool.Pool
}

// NewLoanTypeRepo creates a new PostgreSQL-backed loan type repository.
func NewLoanTypeRepo(pool *pgxpool.Pool) *LoanTypeRepo {
	return &LoanTypeRepo{pool: pool}
}

// Save persists a loan product template.
func (r *LoanTypeRepo) Save(ctx context.Context, loanType model.LoanType) error {
	query := `
		INSERT INTO loan_types (
			id, company_id, name, periodicity, rate_percent, amortization,
			penalty_type, penalty_amount, penalty_rate, currency,
			overpayment_policy, suggested_installments, created_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (id) DO NOTHING
	`
	policy := loanType.PenaltyPolicy()
	_, err := r.pool.Exec(ctx, query,
		loanType.ID(), loanType.CompanyID(), loanType.Name(),
		loanType.Periodicity().String(), loanType.RatePercent(), loanType.Amortization().String(),
		policy.Type.String(), policy.Amount.Amount(), policy.Rate, policy.Amount.Currency().Code(),
		loanType.OverpaymentPolicy().String(), loanType.SuggestedInstallments(), loanType.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan type: %w", err)
	}
	return nil
}

// FindByID retrieves a loan product template by ID.
func (r *LoanTypeRepo) FindByID(ctx context.Context, companyID, id string) (model.LoanType, error) {
	query := `
		SELECT id, company_id, name, periodicity, rate_percent, amortization,
		       penalty_type, penalty_amount, penalty_rate, currency,
		       overpayment_policy, suggested_installments, created_at
		FROM loan_types
		WHERE company_id = $1 AND id = $2
	`
	var (
		typeID, company, name           string
		periodicityStr                  string
		ratePercent                     decimal.Decimal
		amortizationStr, penaltyTypeStr string
		penaltyAmount, penaltyRate      decimal.Decimal
		currencyStr, overpaymentStr     string
		suggestedInstallments           int
		createdAt                       time.Time
	)
	err := r.pool.QueryRow(ctx, query, companyID, id).Scan(
		&typeID, &company, &name, &periodicityStr, &ratePercent, &amortizationStr,
		&penaltyTypeStr, &penaltyAmount, &penaltyRate, &currencyStr,
		&overpaymentStr, &suggestedInstallments, &createdAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.LoanType{}, fault.Validation("loan type %s not found", id)
	}
	if err != nil {
		return model.LoanType{}, fmt.Errorf("scan loan type: %w", err)
	}

	periodicity, err := valueobject.NewPeriodicity(periodicityStr)
	if err != nil {
		return model.LoanType{}, fmt.Errorf("parse periodicity: %w", err)
	}
	amortization, err := valueobject.NewAmortizationPolicy(amortizationStr)
	if err != nil {
		return model.LoanType{}, fmt.Errorf("parse amortization: %w", err)
	}
	penaltyType, err := valueobject.NewPenaltyType(penaltyTypeStr)
	if err != nil {
		return model.LoanType{}, fmt.Errorf("parse penalty type: %w", err)
	}
	overpayment, err := valueobject.NewOverpaymentPolicy(overpaymentStr)
	if err != nil {
		return model.LoanType{}, fmt.Errorf("parse overpayment policy: %w", err)
	}
	currency, err := money.NewCurrency(currencyStr)
	if err != nil {
		return model.LoanType{}, fmt.Errorf("parse currency: %w", err)
	}

	return model.ReconstructLoanType(
		typeID, company, name, periodicity, ratePercent, amortization,
		valueobject.PenaltyPolicy{
			Type:   penaltyType,
			Amount: money.New(penaltyAmount, currency),
			Rate:   penaltyRate,
		},
		overpayment, suggestedInstallments, createdAt,
	), nil
}
