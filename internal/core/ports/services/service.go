package services

// ServiceContainer aggregates all service facades for dependency injection.
type ServiceContainer struct {
	Loan LoanSvcFacade
	Gift GiftSvcFacade
	Blob BlobStore
}
