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

const paymentColumns = `
	id, company_id, loan_id, client_id,
	amount, currency, method, collector_id,
	reference, notes,
	received_at, overpayment, created_at`

// PaymentRepo implements port.PaymentRepository. Payments and their
// allocation lines are write-once; the writes happen inside the loan save
// transaction via savePayment.
type PaymentRepo struct {
	pool *pgxpool.Pool
}

// NewPaymentRepo creates a new PostgreSQL-backed payment repository.
func NewPaymentRepo(pool *pgxpool.Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// savePayment inserts a payment and its allocation lines within the given
// transaction. The payment ID is the idempotency key: inserting the same ID
// twice is an Integrity fault, since the use case is expected to check
// Exists first.
func savePayment(ctx context.Context, tx pgx.Tx, payment model.Payment) error {
	query := `
		INSERT INTO payments (` + paymentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
		ON CONFLICT (company_id, id) DO NOTHING
	`
	tag, err := tx.Exec(ctx, query,
		payment.ID(), payment.CompanyID(), payment.LoanID(), payment.ClientID(),
		payment.Amount().Amount(), payment.Amount().Currency().Code(),
		payment.Method().String(), nullableString(payment.CollectorID()),
		nullableString(payment.Reference()), nullableString(payment.Notes()),
		payment.ReceivedAt(), payment.Overpayment().Amount(), payment.CreatedAt(),
	)
	if err != nil {
		return fmt.Errorf("save payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Integrity("payment %s already recorded", payment.ID())
	}

	for _, line := range payment.Lines() {
		lineQuery := `
			INSERT INTO payment_lines (payment_id, company_id, installment_number, penalty, interest, capital)
			VALUES ($1,$2,$3,$4,$5,$6)
		`
		_, err := tx.Exec(ctx, lineQuery,
			payment.ID(), payment.CompanyID(), line.InstallmentNumber,
			line.Penalty.Amount(), line.Interest.Amount(), line.Capital.Amount(),
		)
		if err != nil {
			return fmt.Errorf("save payment line %d: %w", line.InstallmentNumber, err)
		}
	}
	return nil
}

// UpdateAnnotations rewrites the reference and notes on a recorded payment.
func (r *PaymentRepo) UpdateAnnotations(ctx context.Context, payment model.Payment) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE payments SET reference = $3, notes = $4 WHERE company_id = $1 AND id = $2`,
		payment.CompanyID(), payment.ID(),
		nullableString(payment.Reference()), nullableString(payment.Notes()),
	)
	if err != nil {
		return fmt.Errorf("update payment annotations: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fault.Validation("payment %s not found", payment.ID())
	}
	return nil
}

// Exists reports whether a payment with the given ID has been recorded.
func (r *PaymentRepo) Exists(ctx context.Context, companyID, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payments WHERE company_id = $1 AND id = $2)`,
		companyID, id,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check payment exists: %w", err)
	}
	return exists, nil
}

// FindByID retrieves a payment with its allocation lines.
func (r *PaymentRepo) FindByID(ctx context.Context, companyID, id string) (model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments WHERE company_id = $1 AND id = $2`

	payment, err := scanPaymentRow(r.pool.QueryRow(ctx, query, companyID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Payment{}, fault.Validation("payment %s not found", id)
	}
	if err != nil {
		return model.Payment{}, err
	}
	return r.withLines(ctx, payment)
}

// FindByLoanID retrieves all payments recorded against a loan, oldest first.
func (r *PaymentRepo) FindByLoanID(ctx context.Context, companyID, loanID string) ([]model.Payment, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments
		WHERE company_id = $1 AND loan_id = $2
		ORDER BY received_at`

	rows, err := r.pool.Query(ctx, query, companyID, loanID)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	var bare []model.Payment
	for rows.Next() {
		payment, err := scanPaymentRow(rows)
		if err != nil {
			return nil, err
		}
		bare = append(bare, payment)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}

	payments := make([]model.Payment, 0, len(bare))
	for _, payment := range bare {
		full, err := r.withLines(ctx, payment)
		if err != nil {
			return nil, err
		}
		payments = append(payments, full)
	}
	return payments, nil
}

func (r *PaymentRepo) withLines(ctx context.Context, payment model.Payment) (model.Payment, error) {
	query := `
		SELECT installment_number, penalty, interest, capital
		FROM payment_lines
		WHERE payment_id = $1 AND company_id = $2
		ORDER BY installment_number
	`
	rows, err := r.pool.Query(ctx, query, payment.ID(), payment.CompanyID())
	if err != nil {
		return model.Payment{}, fmt.Errorf("query payment lines: %w", err)
	}
	defer rows.Close()

	currency := payment.Amount().Currency()
	var lines []model.PaymentLine
	for rows.Next() {
		var (
			number                     int
			penalty, interest, capital decimal.Decimal
		)
		if err := rows.Scan(&number, &penalty, &interest, &capital); err != nil {
			return model.Payment{}, fmt.Errorf("scan payment line: %w", err)
		}
		lines = append(lines, model.PaymentLine{
			InstallmentNumber: number,
			Penalty:           money.New(penalty, currency),
			Interest:          money.New(interest, currency),
			Capital:           money.New(capital, currency),
		})
	}
	if err := rows.Err(); err != nil {
		return model.Payment{}, fmt.Errorf("iterate payment lines: %w", err)
	}

	return model.ReconstructPayment(
		payment.ID(), payment.CompanyID(), payment.LoanID(), payment.ClientID(),
		payment.Amount(), payment.Method(), payment.CollectorID(),
		payment.Reference(), payment.Notes(),
		payment.ReceivedAt(), payment.Overpayment(), lines, payment.CreatedAt(),
	), nil
}

func scanPaymentRow(s scannable) (model.Payment, error) {
	var (
		id, companyID, loanID, clientID string
		amount                          decimal.Decimal
		currencyStr, methodStr          string
		collectorID, reference, notes   *string
		receivedAt                      time.Time
		overpayment                     decimal.Decimal
		createdAt                       time.Time
	)
	err := s.Scan(
		&id, &companyID, &loanID, &clientID,
		&amount, &currencyStr, &methodStr, &collectorID,
		&reference, &notes,
		&receivedAt, &overpayment, &createdAt,
	)
	if err != nil {
		return model.Payment{}, scanErr("payment", err)
	}

	currency, err := money.NewCurrency(currencyStr)
	if err != nil {
		return model.Payment{}, fmt.Errorf("parse payment currency: %w", err)
	}
	method, err := valueobject.NewPaymentMethod(methodStr)
	if err != nil {
		return model.Payment{}, fmt.Errorf("parse payment method: %w", err)
	}

	deref := func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	}

	return model.ReconstructPayment(
		id, companyID, loanID, clientID,
		money.New(amount, currency), method, deref(collectorID),
		deref(reference), deref(notes),
		receivedAt, money.New(overpayment, currency), nil, createdAt,
	), nil
}
