package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/witalo/prestoras/internal/domain/event"
	"github.com/witalo/prestoras/internal/domain/fault"
	"github.com/witalo/prestoras/internal/domain/valueobject"
	"github.com/witalo/prestoras/pkg/events"
	"github.com/witalo/prestoras/pkg/money"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy.
//
// The accrued penalty is tracked at the loan level: penalty accrues only
// once the loan's end date has passed with a balance still outstanding,
// never per overdue installment. penaltyBaseline and baselineDate anchor
// the accrual so that payments and manual adjustments are not resurrected
// by a later recompute.
type Loan struct {
	id              string
	companyID       string
	clientID        string
	loanTypeID      string
	principal       money.Money
	ratePercent     decimal.Decimal
	periodicity     valueobject.Periodicity
	amortization    valueobject.AmortizationPolicy
	penaltyPolicy   valueobject.PenaltyPolicy
	overpayment     valueobject.OverpaymentPolicy
	installments    []Installment
	startDate       time.Time
	endDate         time.Time
	status          valueobject.LoanStatus
	penaltyAccrued  money.Money
	penaltyBaseline money.Money
	baselineDate    time.Time
	creditBalance   money.Money
	originalLoanID  string
	defaultedAt     *time.Time
	version         int
	createdAt       time.Time
	updatedAt       time.Time
	domainEvents    []events.DomainEvent
}

// ---------------------------------------------------------------------------
// Constructors
// ---------------------------------------------------------------------------

// NewLoan creates a loan, generates its installment schedule and emits
// LoanOpened. The loan starts in ACTIVE status. originalLoanID is empty for
// a fresh loan and set to the predecessor when the loan is created by a
// refinancing.
func NewLoan(
	companyID, clientID, loanTypeID string,
	principal money.Money,
	ratePercent decimal.Decimal,
	periodicity valueobject.Periodicity,
	installmentCount int,
	amortization valueobject.AmortizationPolicy,
	penaltyPolicy valueobject.PenaltyPolicy,
	overpayment valueobject.OverpaymentPolicy,
	startDate time.Time,
	originalLoanID string,
	now time.Time,
) (Loan, error) {
	if companyID == "" {
		return Loan{}, fault.Validation("company ID is required")
	}
	if clientID == "" {
		return Loan{}, fault.Validation("client ID is required")
	}
	if loanTypeID == "" {
		return Loan{}, fault.Validation("loan type ID is required")
	}
	if overpayment.IsZero() {
		return Loan{}, fault.Validation("overpayment policy is required")
	}
	if err := penaltyPolicy.Validate(); err != nil {
		return Loan{}, fault.Wrap(fault.KindValidation, err, "penalty policy")
	}

	schedule, err := GenerateSchedule(principal, ratePercent, periodicity, installmentCount, amortization, startDate)
	if err != nil {
		return Loan{}, err
	}

	id := uuid.New().String()
	endDate := schedule[len(schedule)-1].DueDate
	zero := money.Zero(principal.Currency())

	loan := Loan{
		id:              id,
		companyID:       companyID,
		clientID:        clientID,
		loanTypeID:      loanTypeID,
		principal:       principal,
		ratePercent:     ratePercent,
		periodicity:     periodicity,
		amortization:    amortization,
		penaltyPolicy:   penaltyPolicy,
		overpayment:     overpayment,
		installments:    schedule,
		startDate:       startDate,
		endDate:         endDate,
		status:          valueobject.LoanStatusActive,
		penaltyAccrued:  zero,
		penaltyBaseline: zero,
		baselineDate:    startDate,
		creditBalance:   zero,
		originalLoanID:  originalLoanID,
		version:         1,
		createdAt:       now,
		updatedAt:       now,
	}

	loan.domainEvents = append(loan.domainEvents, event.NewLoanOpened(
		id, companyID, clientID,
		principal.Amount().StringFixed(money.Scale), principal.Currency().Code(),
		installmentCount, periodicity.String(), startDate, endDate,
	))

	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, companyID, clientID, loanTypeID string,
	principal money.Money,
	ratePercent decimal.Decimal,
	periodicity valueobject.Periodicity,
	amortization valueobject.AmortizationPolicy,
	penaltyPolicy valueobject.PenaltyPolicy,
	overpayment valueobject.OverpaymentPolicy,
	installments []Installment,
	startDate, endDate time.Time,
	status valueobject.LoanStatus,
	penaltyAccrued, penaltyBaseline money.Money,
	baselineDate time.Time,
	creditBalance money.Money,
	originalLoanID string,
	defaultedAt *time.Time,
	version int,
	createdAt, updatedAt time.Time,
) Loan {
	return Loan{
		id:              id,
		companyID:       companyID,
		clientID:        clientID,
		loanTypeID:      loanTypeID,
		principal:       principal,
		ratePercent:     ratePercent,
		periodicity:     periodicity,
		amortization:    amortization,
		penaltyPolicy:   penaltyPolicy,
		overpayment:     overpayment,
		installments:    installments,
		startDate:       startDate,
		endDate:         endDate,
		status:          status,
		penaltyAccrued:  penaltyAccrued,
		penaltyBaseline: penaltyBaseline,
		baselineDate:    baselineDate,
		creditBalance:   creditBalance,
		originalLoanID:  originalLoanID,
		defaultedAt:     defaultedAt,
		version:         version,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

// ---------------------------------------------------------------------------
// Derived amounts
// ---------------------------------------------------------------------------

// ScheduledOutstanding returns the unpaid capital+interest across all
// installments, excluding penalty.
func (l Loan) ScheduledOutstanding() money.Money {
	total := money.Zero(l.principal.Currency())
	for _, ins := range l.installments {
		total = total.MustAdd(ins.Outstanding())
	}
	return total
}

// PendingBalance returns everything still owed on the loan: unpaid
// capital+interest plus accrued penalty. Always recomputed, never stored.
func (l Loan) PendingBalance() money.Money {
	return l.ScheduledOutstanding().MustAdd(l.penaltyAccrued)
}

// ---------------------------------------------------------------------------
// Penalty accrual
// ---------------------------------------------------------------------------

// RefreshPenalty recomputes the accrued penalty and overdue statuses as of
// now. Penalty accrues one policy charge per whole periodicity step elapsed
// since the later of the loan end date and the last baseline anchor; an
// installment overdue before the loan's end date accrues nothing. The
// recompute is idempotent for a fixed now.
//
// An ACTIVE loan past its end date with a balance outstanding transitions
// to DEFAULTING here.
func (l Loan) RefreshPenalty(now time.Time) Loan {
	if !l.status.AcceptsPayments() {
		return l
	}

	next := l
	next.installments = copyInstallments(l.installments)
	next.domainEvents = copyEvents(l.domainEvents)

	for i, ins := range next.installments {
		if ins.Status.Outstanding() && now.After(ins.DueDate) && !ins.Status.Equal(valueobject.InstallmentStatusOverdue) {
			next.installments[i].Status = valueobject.InstallmentStatusOverdue
		}
	}

	outstanding := next.ScheduledOutstanding()

	if now.After(l.endDate) && outstanding.IsPositive() && l.status.Equal(valueobject.LoanStatusActive) {
		defaulted := now
		next.status = valueobject.LoanStatusDefaulting
		next.defaultedAt = &defaulted
		next.updatedAt = now
		next.domainEvents = append(next.domainEvents, event.NewLoanDefaulting(
			l.id, l.companyID, l.clientID,
			next.PendingBalance().Amount().StringFixed(money.Scale),
			l.principal.Currency().Code(),
		))
	}

	anchor := l.endDate
	if l.baselineDate.After(anchor) {
		anchor = l.baselineDate
	}
	periods := l.periodicity.StepsBetween(anchor, now)
	recomputed := l.penaltyBaseline.MustAdd(l.penaltyPolicy.Accrue(outstanding, periods))

	if recomputed.GreaterThan(l.penaltyAccrued) {
		next.domainEvents = append(next.domainEvents, event.NewPenaltyAccrued(
			l.id, l.companyID,
			l.penaltyAccrued.Amount().StringFixed(money.Scale),
			recomputed.Amount().StringFixed(money.Scale),
			l.principal.Currency().Code(),
			periods,
		))
		next.penaltyAccrued = recomputed
		next.updatedAt = now
	}

	return next
}

// AdjustPenalty applies a manual override to the accrued penalty and
// returns the updated loan plus the append-only audit record. REDUCE
// subtracts value, ELIMINATE zeroes the penalty, MODIFY sets it to value.
// The result may never be negative.
func (l Loan) AdjustPenalty(
	adjustmentType valueobject.AdjustmentType,
	value money.Money,
	reason, actor string,
	now time.Time,
) (Loan, PenaltyAdjustment, error) {
	if !l.status.AcceptsPayments() {
		return l, PenaltyAdjustment{}, fault.State("cannot adjust penalty on a %s loan", l.status)
	}
	if reason == "" {
		return l, PenaltyAdjustment{}, fault.Validation("adjustment reason is required")
	}
	if actor == "" {
		return l, PenaltyAdjustment{}, fault.Validation("adjustment actor is required")
	}

	var adjusted money.Money
	switch adjustmentType {
	case valueobject.AdjustmentReduce:
		if !value.IsPositive() {
			return l, PenaltyAdjustment{}, fault.Validation("reduction amount must be positive")
		}
		if value.GreaterThan(l.penaltyAccrued) {
			return l, PenaltyAdjustment{}, fault.Validation("reduction %s exceeds accrued penalty %s", value, l.penaltyAccrued)
		}
		adjusted = l.penaltyAccrued.MustSubtract(value)
	case valueobject.AdjustmentEliminate:
		adjusted = money.Zero(l.principal.Currency())
	case valueobject.AdjustmentModify:
		if value.IsNegative() {
			return l, PenaltyAdjustment{}, fault.Validation("penalty cannot be set to a negative value")
		}
		adjusted = value
	default:
		return l, PenaltyAdjustment{}, fault.Validation("invalid adjustment type")
	}

	record := PenaltyAdjustment{
		id:             uuid.New().String(),
		companyID:      l.companyID,
		loanID:         l.id,
		adjustmentType: adjustmentType,
		previous:       l.penaltyAccrued,
		current:        adjusted,
		reason:         reason,
		actor:          actor,
		adjustedAt:     now,
	}

	next := l
	next.penaltyAccrued = adjusted
	next.penaltyBaseline = adjusted
	next.baselineDate = now
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewPenaltyAdjusted(
		l.id, l.companyID, record.id, adjustmentType.String(),
		record.previous.Amount().StringFixed(money.Scale),
		record.current.Amount().StringFixed(money.Scale),
		l.principal.Currency().Code(), reason,
	))
	return next, record, nil
}

// ---------------------------------------------------------------------------
// Payment allocation
// ---------------------------------------------------------------------------

// ApplyPayment allocates a payment across the loan, oldest obligation
// first: accrued penalty is paid before any installment, then each
// outstanding installment in sequence order absorbs funds into interest
// before capital. The paymentID is the caller-supplied idempotency key and
// becomes the Payment record's identity.
//
// A remainder beyond everything owed is rejected under the STRICT policy
// and credited to the loan under ALLOWED. When the allocation clears the
// last outstanding amount the loan transitions to COMPLETED.
func (l Loan) ApplyPayment(
	paymentID string,
	amount money.Money,
	method valueobject.PaymentMethod,
	collectorID string,
	now time.Time,
) (Loan, Payment, error) {
	if !l.status.AcceptsPayments() {
		return l, Payment{}, fault.State("cannot pay a %s loan", l.status)
	}
	if paymentID == "" {
		return l, Payment{}, fault.Validation("payment ID is required")
	}
	if !amount.IsPositive() {
		return l, Payment{}, fault.Validation("payment amount must be positive, got %s", amount)
	}
	if amount.Currency() != l.principal.Currency() {
		return l, Payment{}, fault.Validation("payment currency %s does not match loan currency %s",
			amount.Currency(), l.principal.Currency())
	}
	if method.IsZero() {
		return l, Payment{}, fault.Validation("payment method is required")
	}

	owed := l.PendingBalance()
	if amount.GreaterThan(owed) && l.overpayment.Equal(valueobject.OverpaymentStrict) {
		return l, Payment{}, fault.Validation("payment %s exceeds amount owed %s", amount, owed)
	}

	zero := money.Zero(l.principal.Currency())
	next := l
	next.installments = copyInstallments(l.installments)
	next.domainEvents = copyEvents(l.domainEvents)

	remaining := amount
	penaltyPaid := remaining.Min(l.penaltyAccrued)
	if penaltyPaid.IsPositive() {
		remaining = remaining.MustSubtract(penaltyPaid)
		next.penaltyAccrued = l.penaltyAccrued.MustSubtract(penaltyPaid)
		next.penaltyBaseline = next.penaltyAccrued
		next.baselineDate = now
	}

	var lines []PaymentLine
	for i := range next.installments {
		ins := &next.installments[i]
		if !ins.Status.Outstanding() {
			continue
		}
		if !remaining.IsPositive() && !penaltyPaid.IsPositive() {
			break
		}

		interestPart := remaining.Min(ins.InterestOutstanding())
		remaining = remaining.MustSubtract(interestPart)
		capitalPart := remaining.Min(ins.Outstanding().MustSubtract(interestPart))
		remaining = remaining.MustSubtract(capitalPart)

		applied := interestPart.MustAdd(capitalPart)
		if applied.IsPositive() {
			ins.Paid = ins.Paid.MustAdd(applied)
			if ins.Outstanding().IsZero() {
				paidAt := now
				ins.Status = valueobject.InstallmentStatusPaid
				ins.PaidAt = &paidAt
			} else {
				ins.Status = valueobject.InstallmentStatusPartial
			}
		}

		// The loan-level penalty payment is attributed to the oldest
		// outstanding installment's breakdown line.
		line := PaymentLine{
			InstallmentNumber: ins.Number,
			Penalty:           penaltyPaid,
			Interest:          interestPart,
			Capital:           capitalPart,
		}
		penaltyPaid = zero
		if line.Total().IsPositive() {
			lines = append(lines, line)
		}
	}

	overpaid := zero
	if remaining.IsPositive() {
		overpaid = remaining
		next.creditBalance = l.creditBalance.MustAdd(overpaid)
	}

	next.updatedAt = now
	payment := Payment{
		id:          paymentID,
		companyID:   l.companyID,
		loanID:      l.id,
		clientID:    l.clientID,
		amount:      amount,
		method:      method,
		collectorID: collectorID,
		receivedAt:  now,
		overpayment: overpaid,
		lines:       lines,
		createdAt:   now,
	}

	next.domainEvents = append(next.domainEvents, event.NewPaymentApplied(
		l.id, l.companyID, paymentID, l.clientID,
		amount.Amount().StringFixed(money.Scale), amount.Currency().Code(), method.String(),
		payment.PenaltyPaid().Amount().StringFixed(money.Scale),
		payment.InterestPaid().Amount().StringFixed(money.Scale),
		payment.CapitalPaid().Amount().StringFixed(money.Scale),
		overpaid.Amount().StringFixed(money.Scale),
		next.PendingBalance().Amount().StringFixed(money.Scale),
	))

	if next.PendingBalance().IsZero() {
		next.status = valueobject.LoanStatusCompleted
		next.domainEvents = append(next.domainEvents, event.NewLoanCompleted(l.id, l.companyID, l.clientID))
	}

	return next, payment, nil
}

// ---------------------------------------------------------------------------
// Refinancing and cancellation
// ---------------------------------------------------------------------------

// MarkRefinanced closes the loan in favour of its successor. The status
// becomes REFINANCED, terminal: no further payments are accepted. Unpaid
// installments stay untouched as the historical record of what was
// outstanding.
func (l Loan) MarkRefinanced(newLoanID string, now time.Time) (Loan, error) {
	if !l.status.AcceptsPayments() {
		return l, fault.State("cannot refinance a %s loan", l.status)
	}
	if newLoanID == "" {
		return l, fault.Validation("new loan ID is required")
	}

	next := l
	next.status = valueobject.LoanStatusRefinanced
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanRefinanced(
		l.id, l.companyID, l.clientID, newLoanID,
		l.PendingBalance().Amount().StringFixed(money.Scale),
		l.principal.Currency().Code(),
	))
	return next, nil
}

// Cancel voids a loan that has received no funds.
func (l Loan) Cancel(now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusActive) {
		return l, fault.State("cannot cancel a %s loan", l.status)
	}
	for _, ins := range l.installments {
		if ins.Paid.IsPositive() {
			return l, fault.State("cannot cancel a loan with payments applied")
		}
	}

	next := l
	next.status = valueobject.LoanStatusCancelled
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                                       { return l.id }
func (l Loan) CompanyID() string                                { return l.companyID }
func (l Loan) ClientID() string                                 { return l.clientID }
func (l Loan) LoanTypeID() string                               { return l.loanTypeID }
func (l Loan) Principal() money.Money                           { return l.principal }
func (l Loan) RatePercent() decimal.Decimal                     { return l.ratePercent }
func (l Loan) Periodicity() valueobject.Periodicity             { return l.periodicity }
func (l Loan) Amortization() valueobject.AmortizationPolicy     { return l.amortization }
func (l Loan) PenaltyPolicy() valueobject.PenaltyPolicy         { return l.penaltyPolicy }
func (l Loan) OverpaymentPolicy() valueobject.OverpaymentPolicy { return l.overpayment }
func (l Loan) StartDate() time.Time                             { return l.startDate }
func (l Loan) EndDate() time.Time                               { return l.endDate }
func (l Loan) Status() valueobject.LoanStatus                   { return l.status }
func (l Loan) PenaltyAccrued() money.Money                      { return l.penaltyAccrued }
func (l Loan) PenaltyBaseline() money.Money                     { return l.penaltyBaseline }
func (l Loan) BaselineDate() time.Time                          { return l.baselineDate }
func (l Loan) CreditBalance() money.Money                       { return l.creditBalance }
func (l Loan) OriginalLoanID() string                           { return l.originalLoanID }
func (l Loan) DefaultedAt() *time.Time                          { return l.defaultedAt }
func (l Loan) Version() int                                     { return l.version }
func (l Loan) CreatedAt() time.Time                             { return l.createdAt }
func (l Loan) UpdatedAt() time.Time                             { return l.updatedAt }
func (l Loan) DomainEvents() []events.DomainEvent               { return l.domainEvents }

// Installments returns a defensive copy of the schedule.
func (l Loan) Installments() []Installment {
	return copyInstallments(l.installments)
}

// EverDefaulted reports whether the loan has ever entered DEFAULTING.
func (l Loan) EverDefaulted() bool { return l.defaultedAt != nil }

// HasLateInstallment reports whether any installment was settled after its
// due date, or is still carrying an unpaid balance past it as of the given
// instant.
func (l Loan) HasLateInstallment(asOf time.Time) bool {
	for _, ins := range l.installments {
		if ins.PaidAt != nil && ins.PaidAt.After(ins.DueDate) {
			return true
		}
		if ins.Outstanding().IsPositive() && asOf.After(ins.DueDate) {
			return true
		}
	}
	return false
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copyEvents(in []events.DomainEvent) []events.DomainEvent {
	if in == nil {
		return nil
	}
	out := make([]events.DomainEvent, len(in))
	copy(out, in)
	return out
}
