package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgUniqueViolation      = "23505"

	defaultMaxTxAttempts = 5
)

// PostgresConfirmationRepository stores confirmations in PostgreSQL.
// Every transaction runs at SERIALIZABLE isolation and is retried on
// serialization failures, which is what keeps two concurrent confirms of
// the same email from both committing.
type PostgresConfirmationRepository struct {
	db            *pgxpool.Pool
	maxTxAttempts int
}

// PostgresOption configures a PostgresConfirmationRepository
type PostgresOption func(*PostgresConfirmationRepository)

// WithMaxTxAttempts bounds how many times a transaction is retried after a serialization failure
func WithMaxTxAttempts(n int) PostgresOption {
	return func(r *PostgresConfirmationRepository) {
		if n > 0 {
			r.maxTxAttempts = n
		}
	}
}

// NewPostgresConfirmationRepository creates a repository on an existing pool; the caller owns the pool
func NewPostgresConfirmationRepository(db *pgxpool.Pool, opts ...PostgresOption) *PostgresConfirmationRepository {
	r := &PostgresConfirmationRepository{
		db:            db,
		maxTxAttempts: defaultMaxTxAttempts,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// InTx runs fn in a serializable transaction, retrying on serialization failures
func (r *PostgresConfirmationRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	var err error
	for attempt := 1; attempt <= r.maxTxAttempts; attempt++ {
		err = r.runTx(ctx, fn)
		if !isRetryable(err) {
			return err
		}
		slog.Warn("Retrying confirmation transaction", "attempt", attempt, "err", err)
	}
	return fmt.Errorf("transaction failed after %d attempts: %w", r.maxTxAttempts, err)
}

func (r *PostgresConfirmationRepository) runTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := fn(ctx, &pgTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Close is a no-op; the pool belongs to the caller
func (r *PostgresConfirmationRepository) Close() error {
	return nil
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type pgTx struct {
	tx pgx.Tx
}

const recordColumns = `id, user_id, email, issued_at, confirmation_key, is_verified`

func scanRecord(row pgx.Row) (Record, error) {
	var rec Record
	err := row.Scan(&rec.ID, &rec.UserID, &rec.Email, &rec.IssuedAt, &rec.Key, &rec.Verified)
	if err != nil {
		return Record{}, err
	}
	rec.IssuedAt = rec.IssuedAt.UTC()
	return rec, nil
}

func (t *pgTx) CreateRecord(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	query := `
		INSERT INTO email_confirmations (` + recordColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	// savepoint so a key collision leaves the outer transaction usable for a retry
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("savepoint: %w", err)
	}
	defer func() {
		_ = sp.Rollback(ctx)
	}()

	_, err = sp.Exec(ctx, query, rec.ID, rec.UserID, rec.Email, rec.IssuedAt, normalizeKey(rec.Key), rec.Verified)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert confirmation: %w", err)
	}
	return sp.Commit(ctx)
}

func (t *pgTx) GetRecordByKey(ctx context.Context, key string) (Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM email_confirmations
		WHERE lower(confirmation_key) = $1
		FOR UPDATE
	`
	rec, err := scanRecord(t.tx.QueryRow(ctx, query, normalizeKey(key)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get confirmation: %w", err)
	}
	return rec, nil
}

func (t *pgTx) ListRecordsByUser(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]Record, error) {
	query := `
		SELECT ` + recordColumns + `
		FROM email_confirmations
		WHERE user_id = $1
		AND ($2::boolean IS NULL OR is_verified = $2)
		ORDER BY issued_at DESC
	`
	rows, err := t.tx.Query(ctx, query, userID, filter.Verified)
	if err != nil {
		return nil, fmt.Errorf("list confirmations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan confirmation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *pgTx) UpdateRecord(ctx context.Context, rec Record) error {
	query := `
		UPDATE email_confirmations
		SET email = $2, issued_at = $3, confirmation_key = $4, is_verified = $5
		WHERE id = $1
	`
	tag, err := t.tx.Exec(ctx, query, rec.ID, rec.Email, rec.IssuedAt, normalizeKey(rec.Key), rec.Verified)
	if err != nil {
		return fmt.Errorf("update confirmation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *pgTx) DeleteRecords(ctx context.Context, filter DeleteFilter) (int64, error) {
	where, args := deleteWhere(filter,
		func(n int) string { return "$" + strconv.Itoa(n) },
		func(ts time.Time) any { return ts },
	)
	tag, err := t.tx.Exec(ctx, `DELETE FROM email_confirmations WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete confirmations: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (t *pgTx) GetAccount(ctx context.Context, userID uuid.UUID) (Account, error) {
	var a Account
	err := t.tx.QueryRow(ctx, `SELECT id, email FROM users WHERE id = $1`, userID).Scan(&a.ID, &a.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (t *pgTx) EmailInUse(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE lower(email) = lower($1)
			AND id <> $2
		)
	`
	var inUse bool
	if err := t.tx.QueryRow(ctx, query, email, excludeUserID).Scan(&inUse); err != nil {
		return false, fmt.Errorf("check email in use: %w", err)
	}
	return inUse, nil
}

func (t *pgTx) SetAccountEmail(ctx context.Context, userID uuid.UUID, email string) error {
	tag, err := t.tx.Exec(ctx, `UPDATE users SET email = $2 WHERE id = $1`, userID, email)
	if err != nil {
		return fmt.Errorf("set account email: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}
