package confirmation

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RepositoryConfig contains configuration for creating a confirmation repository
type RepositoryConfig struct {
	// Pool is required for PostgreSQL repositories
	Pool *pgxpool.Pool
	// SQLitePath is required for SQLite repositories
	SQLitePath string
	// DataDir is required for file-based repositories
	DataDir string
	// MaxTxAttempts bounds serialization retries for PostgreSQL; zero keeps the default
	MaxTxAttempts int
}

// NewConfirmationRepository creates a confirmation repository based on the persistence type
func NewConfirmationRepository(persistenceType string, config RepositoryConfig) (ConfirmationRepository, error) {
	switch persistenceType {
	case "postgres", "postgresql":
		if config.Pool == nil {
			return nil, fmt.Errorf("pool required for postgres repository")
		}
		return NewPostgresConfirmationRepository(config.Pool, WithMaxTxAttempts(config.MaxTxAttempts)), nil
	case "sqlite":
		if config.SQLitePath == "" {
			return nil, fmt.Errorf("sqlitePath required for sqlite repository")
		}
		return OpenSQLiteConfirmationRepository(config.SQLitePath)
	case "file":
		if config.DataDir == "" {
			return nil, fmt.Errorf("dataDir required for file repository")
		}
		return NewFileConfirmationRepository(config.DataDir)
	case "memory", "inmem":
		return NewInMemoryConfirmationRepository(), nil
	default:
		return nil, fmt.Errorf("unsupported persistence type: %s (supported: postgres, sqlite, file, memory)", persistenceType)
	}
}
