package dto

import (
	"time"

	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateLoanRequest defines the data needed to record a new loan.
// Exactly one subject must be supplied: amount for MONEY loans, the
// itemName/itemQuantity/itemUnit triple for ITEM loans.
type CreateLoanRequest struct {
	Direction        domain.LoanDirection   `json:"direction" binding:"required,oneof=OWED LENT"`
	SubjectType      domain.LoanSubjectType `json:"subjectType" binding:"required,oneof=MONEY ITEM"`
	CounterpartyName string                 `json:"counterpartyName" binding:"required"`
	OccurredAt       time.Time              `json:"occurredAt" binding:"required"`
	Amount           *decimal.Decimal       `json:"amount"`
	ItemName         *string                `json:"itemName"`
	ItemQuantity     *decimal.Decimal       `json:"itemQuantity"`
	ItemUnit         *string                `json:"itemUnit"`
	Notes            string                 `json:"notes"`
	AttachmentKey    *string                `json:"attachmentKey"`
	AttachmentName   *string                `json:"attachmentName"`
	AttachmentType   *string                `json:"attachmentType"`
}

// UpdateLoanRequest defines the fields a PATCH may change. Pointers
// distinguish "not provided" from zero values; attachment fields use the
// tri-state Optional so an explicit null clears the attachment.
type UpdateLoanRequest struct {
	Direction        *domain.LoanDirection   `json:"direction" binding:"omitempty,oneof=OWED LENT"`
	SubjectType      *domain.LoanSubjectType `json:"subjectType" binding:"omitempty,oneof=MONEY ITEM"`
	CounterpartyName *string                 `json:"counterpartyName"`
	OccurredAt       *time.Time              `json:"occurredAt"`
	Amount           *decimal.Decimal        `json:"amount"`
	ItemName         *string                 `json:"itemName"`
	ItemQuantity     *decimal.Decimal        `json:"itemQuantity"`
	ItemUnit         *string                 `json:"itemUnit"`
	Notes            *string                 `json:"notes"`
	AttachmentKey    Optional[string]        `json:"attachmentKey"`
	AttachmentName   Optional[string]        `json:"attachmentName"`
	AttachmentType   Optional[string]        `json:"attachmentType"`
}

// CreateRepaymentRequest defines the data for one repayment event. Which
// value field is honored follows the parent loan's subject type, not the
// caller's choice.
type CreateRepaymentRequest struct {
	RepaidAt       time.Time        `json:"repaidAt" binding:"required"`
	RepaidAmount   *decimal.Decimal `json:"repaidAmount"`
	RepaidQuantity *decimal.Decimal `json:"repaidQuantity"`
	Notes          string           `json:"notes"`
	AttachmentKey  *string          `json:"attachmentKey"`
	AttachmentName *string          `json:"attachmentName"`
	AttachmentType *string          `json:"attachmentType"`
}

// UpdateRepaymentRequest defines the fields a repayment PATCH may change.
type UpdateRepaymentRequest struct {
	RepaidAt       *time.Time       `json:"repaidAt"`
	RepaidAmount   *decimal.Decimal `json:"repaidAmount"`
	RepaidQuantity *decimal.Decimal `json:"repaidQuantity"`
	Notes          *string          `json:"notes"`
	AttachmentKey  Optional[string] `json:"attachmentKey"`
	AttachmentName Optional[string] `json:"attachmentName"`
	AttachmentType Optional[string] `json:"attachmentType"`
}

// AttachmentResponse is the attachment triple as returned to callers.
type AttachmentResponse struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// LoanResponse defines the data returned for a loan row.
type LoanResponse struct {
	LoanID           string                 `json:"loanID"`
	Direction        domain.LoanDirection   `json:"direction"`
	SubjectType      domain.LoanSubjectType `json:"subjectType"`
	CounterpartyName string                 `json:"counterpartyName"`
	Amount           *decimal.Decimal       `json:"amount,omitempty"`
	ItemName         *string                `json:"itemName,omitempty"`
	ItemQuantity     *decimal.Decimal       `json:"itemQuantity,omitempty"`
	ItemUnit         *string                `json:"itemUnit,omitempty"`
	OccurredAt       time.Time              `json:"occurredAt"`
	Notes            string                 `json:"notes"`
	Attachment       *AttachmentResponse    `json:"attachment,omitempty"`
	CreatedAt        time.Time              `json:"createdAt"`
}

// LoanAggregateResponse is a loan plus its derived repayment aggregate.
// The total/remaining field pair matches the loan's subject type.
type LoanAggregateResponse struct {
	LoanResponse
	RepaidAmountTotal   *decimal.Decimal  `json:"repaidAmountTotal,omitempty"`
	RepaidQuantityTotal *decimal.Decimal  `json:"repaidQuantityTotal,omitempty"`
	RemainingAmount     *decimal.Decimal  `json:"remainingAmount,omitempty"`
	RemainingQuantity   *decimal.Decimal  `json:"remainingQuantity,omitempty"`
	Status              domain.LoanStatus `json:"status"`
	RepaymentCount      int               `json:"repaymentCount"`
}

// ListLoansParams holds query parameters for listing loans.
type ListLoansParams struct {
	Limit     int     `form:"limit"`
	NextToken *string `form:"nextToken"`
}

// ListLoansResponse is the paginated loan list.
type ListLoansResponse struct {
	Loans     []LoanAggregateResponse `json:"loans"`
	NextToken *string                 `json:"nextToken,omitempty"`
}

// RepaymentResponse defines the data returned for a repayment row.
type RepaymentResponse struct {
	RepaymentID    string              `json:"repaymentID"`
	LoanID         string              `json:"loanID"`
	RepaidAmount   *decimal.Decimal    `json:"repaidAmount,omitempty"`
	RepaidQuantity *decimal.Decimal    `json:"repaidQuantity,omitempty"`
	RepaidAt       time.Time           `json:"repaidAt"`
	Notes          string              `json:"notes"`
	Attachment     *AttachmentResponse `json:"attachment,omitempty"`
	CreatedAt      time.Time           `json:"createdAt"`
}

func toAttachmentResponse(a domain.Attachment) *AttachmentResponse {
	if a.IsZero() {
		return nil
	}
	return &AttachmentResponse{Key: a.Key, Name: a.Name, Type: a.Type}
}

// ToLoanResponse converts a domain.Loan to LoanResponse DTO.
func ToLoanResponse(l *domain.Loan) LoanResponse {
	return LoanResponse{
		LoanID:           l.LoanID,
		Direction:        l.Direction,
		SubjectType:      l.SubjectType,
		CounterpartyName: l.CounterpartyName,
		Amount:           l.Amount,
		ItemName:         l.ItemName,
		ItemQuantity:     l.ItemQuantity,
		ItemUnit:         l.ItemUnit,
		OccurredAt:       l.OccurredAt,
		Notes:            l.Notes,
		Attachment:       toAttachmentResponse(l.Attachment),
		CreatedAt:        l.CreatedAt,
	}
}

// ToLoanAggregateResponse converts a derived aggregate, picking the
// amount or quantity field pair by subject type.
func ToLoanAggregateResponse(agg *domain.LoanAggregate) LoanAggregateResponse {
	resp := LoanAggregateResponse{
		LoanResponse:   ToLoanResponse(&agg.Loan),
		Status:         agg.Status,
		RepaymentCount: agg.RepaymentCount,
	}
	repaid := agg.RepaidTotal
	remaining := agg.Remaining
	if agg.SubjectType == domain.SubjectMoney {
		resp.RepaidAmountTotal = &repaid
		resp.RemainingAmount = &remaining
	} else {
		resp.RepaidQuantityTotal = &repaid
		resp.RemainingQuantity = &remaining
	}
	return resp
}

// ToRepaymentResponse converts a domain.LoanRepayment to RepaymentResponse DTO.
func ToRepaymentResponse(r *domain.LoanRepayment) RepaymentResponse {
	return RepaymentResponse{
		RepaymentID:    r.RepaymentID,
		LoanID:         r.LoanID,
		RepaidAmount:   r.RepaidAmount,
		RepaidQuantity: r.RepaidQuantity,
		RepaidAt:       r.RepaidAt,
		Notes:          r.Notes,
		Attachment:     toAttachmentResponse(r.Attachment),
		CreatedAt:      r.CreatedAt,
	}
}
