package constant

// =============================================
// Storage backend constants
// =============================================

// StorageBackend selects which repository implementation backs the service.
type StorageBackend string

const (
	// StorageBackendMemory keeps everything in process memory.
	StorageBackendMemory StorageBackend = "memory"
	// StorageBackendPostgres persists to PostgreSQL with pgvector search.
	StorageBackendPostgres StorageBackend = "postgres"
)

// String returns the backend as a string.
func (s StorageBackend) String() string {
	return string(s)
}

// IsValid reports whether the backend is one of the known implementations.
func (s StorageBackend) IsValid() bool {
	switch s {
	case StorageBackendMemory, StorageBackendPostgres:
		return true
	}
	return false
}
