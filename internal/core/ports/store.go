package ports

// StateStore defines the job-scoped key/value store shared by the two phases.
//
//go:generate go run go.uber.org/mock/mockgen -source=store.go -destination=mocks/mock_store.go -package=mocks
type StateStore interface {
	// Set records value under name for the remainder of the job.
	Set(name, value string) error

	// Get returns the value recorded under name.
	// Returns "", nil if nothing was recorded.
	Get(name string) (string, error)

	// Clear drops every value recorded so far.
	// Clearing an empty store is not an error.
	Clear() error
}
