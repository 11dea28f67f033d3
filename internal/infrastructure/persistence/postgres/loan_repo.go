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
	pkgpostgres "github.com/witalo/prestoras/pkg/postgres"
)

const loanColumns = `
	id, company_id, client_id, loan_type_id,
	principal, currency, rate_percent, periodicity, amortization,
	penalty_type, penalty_amount, penalty_rate, overpayment_policy,
	start_date, end_date, status,
	penalty_accrued, penalty_baseline, baseline_date, credit_balance,
	original_loan_id, defaulted_at,
	version, created_at, updated_at`

// LoanRepo implements port.LoanRepository.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a new PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

// Save persists a loan and its installments under optimistic locking: the
// update only lands when the stored version matches the aggregate's, and a
// mismatch surfaces as a Conflict fault.
func (r *LoanRepo) Save(ctx context.Context, loan model.Loan) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		return saveLoan(ctx, tx, loan)
	})
}

// SaveAllocation persists the loan and the payment just applied to it in a
// single transaction. The version check on the loan still applies; a
// conflicting writer rolls back the payment as well.
func (r *LoanRepo) SaveAllocation(ctx context.Context, loan model.Loan, payment model.Payment) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := saveLoan(ctx, tx, loan); err != nil {
			return err
		}
		return savePayment(ctx, tx, payment)
	})
}

// SaveAdjustment persists the loan and the penalty override audit record in
// a single transaction.
func (r *LoanRepo) SaveAdjustment(ctx context.Context, loan model.Loan, record model.PenaltyAdjustment) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := saveLoan(ctx, tx, loan); err != nil {
			return err
		}
		return saveAdjustment(ctx, tx, record)
	})
}

// SaveRefinancing closes the original loan, creates its successor and
// records the lineage in a single transaction.
func (r *LoanRepo) SaveRefinancing(ctx context.Context, original, successor model.Loan, record model.Refinancing) error {
	return pkgpostgres.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		if err := saveLoan(ctx, tx, original); err != nil {
			return err
		}
		if err := saveLoan(ctx, tx, successor); err != nil {
			return err
		}

		query := `
			INSERT INTO refinancings (
				id, company_id, client_id, original_loan_id, new_loan_id,
				capitalized_balance, new_principal, rate_percent, currency,
				reason, refinanced_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		`
		_, err := tx.Exec(ctx, query,
			record.ID(), record.CompanyID(), record.ClientID(),
			record.OriginalLoanID(), record.NewLoanID(),
			record.CapitalizedBalance().Amount(), record.NewPrincipal().Amount(),
			record.RatePercent(), record.CapitalizedBalance().Currency().Code(),
			nullableString(record.Reason()), record.RefinancedAt(),
		)
		if err != nil {
			return fmt.Errorf("save refinancing: %w", err)
		}
		return nil
	})
}

// FindByID retrieves a loan and its installments by ID.
func (r *LoanRepo) FindByID(ctx context.Context, companyID, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE company_id = $1 AND id = $2`

	row, err := scanLoanRow(r.pool.QueryRow(ctx, query, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Loan{}, fault.Validation("loan %s not found", id)
	}
	if err != nil {
		return model.Loan{}, err
	}

	installments, err := r.loadInstallments(ctx, row.id, row.currency)
	if err != nil {
		return model.Loan{}, err
	}
	return row.toModel(installments)
}

// FindByClientID retrieves all loans for a client, newest first.
func (r *LoanRepo) FindByClientID(ctx context.Context, companyID, clientID string) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE company_id = $1 AND client_id = $2
		ORDER BY created_at DESC`

	return r.queryLoans(ctx, query, companyID, clientID)
}

// FindOverdue retrieves, across all companies, the loans past their end
// date that still accept payments.
func (r *LoanRepo) FindOverdue(ctx context.Context, asOf time.Time) ([]model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans
		WHERE status IN ('ACTIVE', 'DEFAULTING') AND end_date < $1
		ORDER BY end_date`

	return r.queryLoans(ctx, query, asOf)
}

// ---------------------------------------------------------------------------
// internal helpers
// ---------------------------------------------------------------------------

func saveLoan(ctx context.Context, tx pgx.Tx, loan model.Loan) error {
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25)
		ON CONFLICT (id) DO UPDATE SET
			status           = EXCLUDED.status,
			penalty_accrued  = EXCLUDED.penalty_accrued,
			penalty_baseline = EXCLUDED.penalty_baseline,
			baseline_date    = EXCLUDED.baseline_date,
			credit_balance   = EXCLUDED.credit_balance,
			defaulted_at     = EXCLUDED.defaulted_at,
			version          = loans.version + 1,
			updated_at       = EXCLUDED.updated_at
		WHERE loans.version = $23
	`
	policy := loan.PenaltyPolicy()
	tag, err := tx.Exec(ctx, query,
		loan.ID(), loan.CompanyID(), loan.ClientID(), loan.LoanTypeID(),
		loan.Principal().Amount(), loan.Principal().Currency().Code(),
		loan.RatePercent(), loan.Periodicity().String(), loan.Amortization().String(),
		policy.Type.String(), policy.Amount.Amount(), policy.Rate,
		loan.OverpaymentPolicy().String(),
		loan.StartDate(), loan.EndDate(), loan.Status().String(),
		loan.PenaltyAccrued().Amount(), loan.PenaltyBaseline().Amount(),
		loan.BaselineDate(), loan.CreditBalance().Amount(),
		nullableString(loan.OriginalLoanID()), loan.DefaultedAt(),
		loan.Version(), loan.CreatedAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save loan: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Conflict("loan %s was modified concurrently", loan.ID())
	}

	for _, ins := range loan.Installments() {
		insQuery := `
			INSERT INTO installments (loan_id, number, due_date, capital, interest, paid, paid_at, status)
			VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
			ON CONFLICT (loan_id, number) DO UPDATE SET
				paid    = EXCLUDED.paid,
				paid_at = EXCLUDED.paid_at,
				status  = EXCLUDED.status
		`
		_, err := tx.Exec(ctx, insQuery,
			loan.ID(), ins.Number, ins.DueDate,
			ins.Capital.Amount(), ins.Interest.Amount(), ins.Paid.Amount(),
			ins.PaidAt, ins.Status.String(),
		)
		if err != nil {
			return fmt.Errorf("save installment %d: %w", ins.Number, err)
		}
	}

	return nil
}

func (r *LoanRepo) queryLoans(ctx context.Context, query string, args ...any) ([]model.Loan, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query loans: %w", err)
	}
	defer rows.Close()

	var loanRows []loanRow
	for rows.Next() {
		row, err := scanLoanRow(rows)
		if err != nil {
			return nil, err
		}
		loanRows = append(loanRows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}

	loans := make([]model.Loan, 0, len(loanRows))
	for _, row := range loanRows {
		installments, err := r.loadInstallments(ctx, row.id, row.currency)
		if err != nil {
			return nil, err
		}
		loan, err := row.toModel(installments)
		if err != nil {
			return nil, err
		}
		loans = append(loans, loan)
	}
	return loans, nil
}

func (r *LoanRepo) loadInstallments(ctx context.Context, loanID string, currency money.Currency) ([]model.Installment, error) {
	query := `
		SELECT number, due_date, capital, interest, paid, paid_at, status
		FROM installments
		WHERE loan_id = $1
		ORDER BY number
	`
	rows, err := r.pool.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", err)
	}
	defer rows.Close()

	var installments []model.Installment
	for rows.Next() {
		var (
			number                  int
			dueDate                 time.Time
			capital, interest, paid decimal.Decimal
			paidAt                  *time.Time
			statusStr               string
		)
		if err := rows.Scan(&number, &dueDate, &capital, &interest, &paid, &paidAt, &statusStr); err != nil {
			return nil, fmt.Errorf("scan installment: %w", err)
		}
		status, err := valueobject.NewInstallmentStatus(statusStr)
		if err != nil {
			return nil, fmt.Errorf("parse installment status: %w", err)
		}
		installments = append(installments, model.Installment{
			Number:   number,
			DueDate:  dueDate,
			Capital:  money.New(capital, currency),
			Interest: money.New(interest, currency),
			Paid:     money.New(paid, currency),
			PaidAt:   paidAt,
			Status:   status,
		})
	}
	return installments, rows.Err()
}

// loanRow holds one scanned loans row before value objects are parsed into
// the aggregate.
type loanRow struct {
	id, companyID, clientID, loanTypeID string
	principal                           decimal.Decimal
	currency                            money.Currency
	ratePercent                         decimal.Decimal
	periodicityStr, amortizationStr     string
	penaltyTypeStr                      string
	penaltyAmount, penaltyRate          decimal.Decimal
	overpaymentStr                      string
	startDate, endDate                  time.Time
	statusStr                           string
	penaltyAccrued, penaltyBaseline     decimal.Decimal
	baselineDate                        time.Time
	creditBalance                       decimal.Decimal
	originalLoanID                      *string
	defaultedAt                         *time.Time
	version                             int
	createdAt, updatedAt                time.Time
}

func scanLoanRow(s scannable) (loanRow, error) {
	var (
		row         loanRow
		currencyStr string
	)
	err := s.Scan(
		&row.id, &row.companyID, &row.clientID, &row.loanTypeID,
		&row.principal, &currencyStr, &row.ratePercent, &row.periodicityStr, &row.amortizationStr,
		&row.penaltyTypeStr, &row.penaltyAmount, &row.penaltyRate, &row.overpaymentStr,
		&row.startDate, &row.endDate, &row.statusStr,
		&row.penaltyAccrued, &row.penaltyBaseline, &row.baselineDate, &row.creditBalance,
		&row.originalLoanID, &row.defaultedAt,
		&row.version, &row.createdAt, &row.updatedAt,
	)
	if err != nil {
		return loanRow{}, scanErr("loan", err)
	}

	currency, err := money.NewCurrency(currencyStr)
	if err != nil {
		return loanRow{}, fmt.Errorf("parse loan currency: %w", err)
	}
	row.currency = currency
	return row, nil
}

func (row loanRow) toModel(installments []model.Installment) (model.Loan, error) {
	periodicity, err := valueobject.NewPeriodicity(row.periodicityStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse periodicity: %w", err)
	}
	amortization, err := valueobject.NewAmortizationPolicy(row.amortizationStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse amortization: %w", err)
	}
	penaltyType, err := valueobject.NewPenaltyType(row.penaltyTypeStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse penalty type: %w", err)
	}
	overpayment, err := valueobject.NewOverpaymentPolicy(row.overpaymentStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse overpayment policy: %w", err)
	}
	status, err := valueobject.NewLoanStatus(row.statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	var originalLoanID string
	if row.originalLoanID != nil {
		originalLoanID = *row.originalLoanID
	}

	return model.ReconstructLoan(
		row.id, row.companyID, row.clientID, row.loanTypeID,
		money.New(row.principal, row.currency),
		row.ratePercent,
		periodicity, amortization,
		valueobject.PenaltyPolicy{
			Type:   penaltyType,
			Amount: money.New(row.penaltyAmount, row.currency),
			Rate:   row.penaltyRate,
		},
		overpayment,
		installments,
		row.startDate, row.endDate,
		status,
		money.New(row.penaltyAccrued, row.currency),
		money.New(row.penaltyBaseline, row.currency),
		row.baselineDate,
		money.New(row.creditBalance, row.currency),
		originalLoanID,
		row.defaultedAt,
		row.version,
		row.createdAt, row.updatedAt,
	), nil
}
