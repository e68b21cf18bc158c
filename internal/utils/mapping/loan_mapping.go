package mapping

import (
	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/gastrodia/homeledger/internal/models"
)

// ToModelLoan converts a domain Loan to a model Loan
func ToModelLoan(d domain.Loan) models.Loan {
	m := models.Loan{
		LoanID:           d.LoanID,
		UserID:           d.UserID,
		Direction:        models.LoanDirection(d.Direction),
		SubjectType:      models.LoanSubjectType(d.SubjectType),
		CounterpartyName: d.CounterpartyName,
		Amount:           d.Amount,
		ItemName:         d.ItemName,
		ItemQuantity:     d.ItemQuantity,
		ItemUnit:         d.ItemUnit,
		OccurredAt:       d.OccurredAt,
		Notes:            d.Notes,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
	m.AttachmentKey, m.AttachmentName, m.AttachmentType = toModelAttachment(d.Attachment)
	return m
}

// ToDomainLoan converts a model Loan to a domain Loan
func ToDomainLoan(m models.Loan) domain.Loan {
	return domain.Loan{
		LoanID:           m.LoanID,
		UserID:           m.UserID,
		Direction:        domain.LoanDirection(m.Direction),
		SubjectType:      domain.LoanSubjectType(m.SubjectType),
		CounterpartyName: m.CounterpartyName,
		Amount:           m.Amount,
		ItemName:         m.ItemName,
		ItemQuantity:     m.ItemQuantity,
		ItemUnit:         m.ItemUnit,
		OccurredAt:       m.OccurredAt,
		Notes:            m.Notes,
		Attachment:       toDomainAttachment(m.AttachmentKey, m.AttachmentName, m.AttachmentType),
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelLoanRepayment converts a domain LoanRepayment to a model LoanRepayment
func ToModelLoanRepayment(d domain.LoanRepayment) models.LoanRepayment {
	m := models.LoanRepayment{
		RepaymentID:    d.RepaymentID,
		LoanID:         d.LoanID,
		RepaidAmount:   d.RepaidAmount,
		RepaidQuantity: d.RepaidQuantity,
		RepaidAt:       d.RepaidAt,
		Notes:          d.Notes,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	m.AttachmentKey, m.AttachmentName, m.AttachmentType = toModelAttachment(d.Attachment)
	return m
}

// ToDomainLoanRepayment converts a model LoanRepayment to a domain LoanRepayment
func ToDomainLoanRepayment(m models.LoanRepayment) domain.LoanRepayment {
	return domain.LoanRepayment{
		RepaymentID:    m.RepaymentID,
		LoanID:         m.LoanID,
		RepaidAmount:   m.RepaidAmount,
		RepaidQuantity: m.RepaidQuantity,
		RepaidAt:       m.RepaidAt,
		Notes:          m.Notes,
		Attachment:     toDomainAttachment(m.AttachmentKey, m.AttachmentName, m.AttachmentType),
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainLoanRepaymentSlice converts a slice of model repayments to domain repayments
func ToDomainLoanRepaymentSlice(ms []models.LoanRepayment) []domain.LoanRepayment {
	out := make([]domain.LoanRepayment, len(ms))
	for i, m := range ms {
		out[i] = ToDomainLoanRepayment(m)
	}
	return out
}

func toModelAttachment(a domain.Attachment) (key, name, typ *string) {
	if a.IsZero() {
		return nil, nil, nil
	}
	k, n, t := a.Key, a.Name, a.Type
	return &k, &n, &t
}

func toDomainAttachment(key, name, typ *string) domain.Attachment {
	if key == nil || *key == "" {
		return domain.Attachment{}
	}
	a := domain.Attachment{Key: *key}
	if name != nil {
		a.Name = *name
	}
	if typ != nil {
		a.Type = *typ
	}
	return a
}
