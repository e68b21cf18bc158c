package services

import (
	portsrepo "github.com/gastrodia/homeledger/internal/core/ports/repositories"
	portssvc "github.com/gastrodia/homeledger/internal/core/ports/services"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(repos portsrepo.RepositoryProvider, blob portssvc.BlobStore) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Loan = NewLoanService(repos.LoanRepo, blob)
	container.Gift = NewGiftService(repos.GiftRepo, blob)
	container.Blob = blob

	return container
}
