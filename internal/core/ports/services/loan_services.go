package services

import (
	"context"

	"github.com/gastrodia/homeledger/internal/core/domain"
	"github.com/gastrodia/homeledger/internal/dto"
)

// LoanSvcFacade defines the loan aggregate engine's operations.
type LoanSvcFacade interface {
	CreateLoan(ctx context.Context, userID string, req dto.CreateLoanRequest) (*domain.Loan, error)
	ListLoans(ctx context.Context, userID string, params dto.ListLoansParams) (*dto.ListLoansResponse, error)
	UpdateLoan(ctx context.Context, userID string, loanID string, req dto.UpdateLoanRequest) (*domain.Loan, error)
	DeleteLoan(ctx context.Context, userID string, loanID string) error

	AddRepayment(ctx context.Context, userID string, loanID string, req dto.CreateRepaymentRequest) (*domain.LoanRepayment, error)
	UpdateRepayment(ctx context.Context, userID string, repaymentID string, req dto.UpdateRepaymentRequest) (*domain.LoanRepayment, error)
	DeleteRepayment(ctx context.Context, userID string, repaymentID string) error
}
