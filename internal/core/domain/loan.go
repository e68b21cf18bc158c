package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanDirection indicates whether the user owes the counterparty or lent to them.
type LoanDirection string

const (
	Owed LoanDirection = "OWED"
	Lent LoanDirection = "LENT"
)

// LoanSubjectType indicates what is owed: a money amount or an item quantity.
type LoanSubjectType string

const (
	SubjectMoney LoanSubjectType = "MONEY"
	SubjectItem  LoanSubjectType = "ITEM"
)

// LoanStatus is the derived settlement state of a loan. It is never persisted;
// it is recomputed from the repayment history on every read.
type LoanStatus string

const (
	Unpaid  LoanStatus = "UNPAID"
	Partial LoanStatus = "PARTIAL"
	Settled LoanStatus = "SETTLED"
)

// Loan represents a single informal debt. Exactly one subject is populated:
// Amount for money loans, the ItemName/ItemQuantity/ItemUnit triple for item
// loans. The inactive subject's fields are always nil.
type Loan struct {
	LoanID           string           `json:"loanID"`
	UserID           string           `json:"userID"`
	Direction        LoanDirection    `json:"direction"`
	SubjectType      LoanSubjectType  `json:"subjectType"`
	CounterpartyName string           `json:"counterpartyName"`
	Amount           *decimal.Decimal `json:"amount,omitempty"`
	ItemName         *string          `json:"itemName,omitempty"`
	ItemQuantity     *decimal.Decimal `json:"itemQuantity,omitempty"`
	ItemUnit         *string          `json:"itemUnit,omitempty"`
	OccurredAt       time.Time        `json:"occurredAt"`
	Notes            string           `json:"notes"`
	Attachment       Attachment       `json:"attachment"`
	AuditFields
}

// Due returns the originally owed value regardless of subject type.
func (l *Loan) Due() decimal.Decimal {
	if l.SubjectType == SubjectMoney {
		if l.Amount != nil {
			return *l.Amount
		}
		return decimal.Zero
	}
	if l.ItemQuantity != nil {
		return *l.ItemQuantity
	}
	return decimal.Zero
}

// LoanRepayment is one repayment event against a loan. The populated value
// field follows the parent loan's subject type.
type LoanRepayment struct {
	RepaymentID    string           `json:"repaymentID"`
	LoanID         string           `json:"loanID"`
	RepaidAmount   *decimal.Decimal `json:"repaidAmount,omitempty"`
	RepaidQuantity *decimal.Decimal `json:"repaidQuantity,omitempty"`
	RepaidAt       time.Time        `json:"repaidAt"`
	Notes          string           `json:"notes"`
	Attachment     Attachment       `json:"attachment"`
	AuditFields
}

// Value returns the repaid value, whichever field carries it.
func (r *LoanRepayment) Value() decimal.Decimal {
	if r.RepaidAmount != nil {
		return *r.RepaidAmount
	}
	if r.RepaidQuantity != nil {
		return *r.RepaidQuantity
	}
	return decimal.Zero
}

// LoanAggregate is the derived read view over a loan and its repayment rows.
type LoanAggregate struct {
	Loan
	RepaidTotal    decimal.Decimal `json:"repaidTotal"`
	Remaining      decimal.Decimal `json:"remaining"`
	Status         LoanStatus      `json:"status"`
	RepaymentCount int             `json:"repaymentCount"`
}

// ComputeLoanStatus derives the settlement status from the due value and the
// sum of repayments. Deleting a repayment can legitimately move the status
// backward (SETTLED -> PARTIAL -> UNPAID).
func ComputeLoanStatus(due, repaidTotal decimal.Decimal) LoanStatus {
	if repaidTotal.LessThanOrEqual(decimal.Zero) {
		return Unpaid
	}
	if repaidTotal.GreaterThanOrEqual(due) {
		return Settled
	}
	return Partial
}

// ComputeRemaining returns max(due - repaidTotal, 0).
func ComputeRemaining(due, repaidTotal decimal.Decimal) decimal.Decimal {
	remaining := due.Sub(repaidTotal)
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// NewLoanAggregate assembles the derived view for a loan.
func NewLoanAggregate(loan Loan, repaidTotal decimal.Decimal, repaymentCount int) LoanAggregate {
	due := loan.Due()
	return LoanAggregate{
		Loan:           loan,
		RepaidTotal:    repaidTotal,
		Remaining:      ComputeRemaining(due, repaidTotal),
		Status:         ComputeLoanStatus(due, repaidTotal),
		RepaymentCount: repaymentCount,
	}
}
