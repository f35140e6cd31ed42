package confirmation

import (
	"context"

	"github.com/google/uuid"
)

// Tx is the set of store operations available inside one transaction.
// Record and account operations share the transaction so that the
// check-then-write in Confirm cannot interleave with a competing confirm.
type Tx interface {
	CreateRecord(ctx context.Context, rec Record) error
	// GetRecordByKey matches keys case-insensitively and locks the row where the store supports it
	GetRecordByKey(ctx context.Context, key string) (Record, error)
	ListRecordsByUser(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]Record, error)
	UpdateRecord(ctx context.Context, rec Record) error
	DeleteRecords(ctx context.Context, filter DeleteFilter) (int64, error)

	GetAccount(ctx context.Context, userID uuid.UUID) (Account, error)
	EmailInUse(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error)
	SetAccountEmail(ctx context.Context, userID uuid.UUID, email string) error
}

// ConfirmationRepository runs fn inside a transaction; returning an error from fn rolls back
type ConfirmationRepository interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Close() error
}
