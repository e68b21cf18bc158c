package repositories

import (
	"context"

	"github.com/gastrodia/homeledger/internal/core/domain"
)

// LoanRepositoryFacade defines persistence operations for loans and their
// repayment rows. All reads and mutations are scoped to the owning user.
type LoanRepositoryFacade interface {
	SaveLoan(ctx context.Context, loan domain.Loan) error
	FindLoanByID(ctx context.Context, loanID string, userID string) (*domain.Loan, error)
	// ListLoanAggregates left-joins repayments and returns derived aggregates
	// ordered by (occurred_at desc, created_at desc), cursor-paginated.
	ListLoanAggregates(ctx context.Context, userID string, limit int, nextToken *string) ([]domain.LoanAggregate, *string, error)
	UpdateLoan(ctx context.Context, loan domain.Loan) error
	// DeleteLoan removes the loan row; repayment rows cascade via foreign key.
	DeleteLoan(ctx context.Context, loanID string, userID string) error

	CountRepayments(ctx context.Context, loanID string) (int, error)
	ListRepaymentsByLoanID(ctx context.Context, loanID string, userID string) ([]domain.LoanRepayment, error)
	SaveRepayment(ctx context.Context, repayment domain.LoanRepayment) error
	FindRepaymentByID(ctx context.Context, repaymentID string, userID string) (*domain.LoanRepayment, error)
	UpdateRepayment(ctx context.Context, repayment domain.LoanRepayment) error
	DeleteRepayment(ctx context.Context, repaymentID string, userID string) error
}
