package pgsql

import (
	portsrepo "github.com/gastrodia/homeledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	loanRepo := newPgxLoanRepository(dbPool)
	giftRepo := newPgxGiftRepository(dbPool)

	return portsrepo.RepositoryProvider{
		LoanRepo: loanRepo,
		GiftRepo: giftRepo,
	}
}
