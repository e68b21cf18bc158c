package models

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

// LoanSubjectType indicates what is owed: money or an item quantity.
type LoanSubjectType string

const (
	SubjectMoney LoanSubjectType = "MONEY"
	SubjectItem  LoanSubjectType = "ITEM"
)

// Loan is the row model for the loans table. Only the active subject's
// columns are non-NULL.
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
	AttachmentKey    *string          `json:"attachmentKey,omitempty"`
	AttachmentName   *string          `json:"attachmentName,omitempty"`
	AttachmentType   *string          `json:"attachmentType,omitempty"`
	AuditFields
}

// LoanRepayment is the row model for the loan_repayments table.
type LoanRepayment struct {
	RepaymentID    string           `json:"repaymentID"`
	LoanID         string           `json:"loanID"`
	RepaidAmount   *decimal.Decimal `json:"repaidAmount,omitempty"`
	RepaidQuantity *decimal.Decimal `json:"repaidQuantity,omitempty"`
	RepaidAt       time.Time        `json:"repaidAt"`
	Notes          string           `json:"notes"`
	AttachmentKey  *string          `json:"attachmentKey,omitempty"`
	AttachmentName *string          `json:"attachmentName,omitempty"`
	AttachmentType *string          `json:"attachmentType,omitempty"`
	AuditFields
}

// LoanWithTotals carries one loans row plus the aggregated repayment columns
// produced by the list query's LEFT JOIN.
type LoanWithTotals struct {
	Loan
	RepaidAmountTotal   decimal.Decimal
	RepaidQuantityTotal decimal.Decimal
	RepaymentCount      int
}
