package interfaces

// Session is one unit of work against a storage backend.
type Session interface {
	Begin() error
	Close() error
	Commit() error
	Rollback() error
}
