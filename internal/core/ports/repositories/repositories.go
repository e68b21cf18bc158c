package repositories

// RepositoryProvider aggregates all repository facades for dependency injection.
type RepositoryProvider struct {
	LoanRepo LoanRepositoryFacade
	GiftRepo GiftRepositoryFacade
}
