package confirmation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS users_email_idx ON users (email COLLATE NOCASE);
CREATE TABLE IF NOT EXISTS email_confirmations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	email TEXT NOT NULL,
	issued_at INTEGER NOT NULL,
	confirmation_key TEXT NOT NULL,
	is_verified INTEGER NOT NULL DEFAULT 0
);
CREATE UNIQUE INDEX IF NOT EXISTS email_confirmations_key_idx ON email_confirmations (confirmation_key);
CREATE INDEX IF NOT EXISTS email_confirmations_user_idx ON email_confirmations (user_id, issued_at DESC)
`

// toMillis normalizes timestamps into millisecond precision for storage
func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// SQLiteConfirmationRepository stores confirmations in a single SQLite file.
// One connection and immediate transactions make every transaction a
// serialized writer, so confirm's check-then-write cannot interleave.
type SQLiteConfirmationRepository struct {
	db *sql.DB
}

// OpenSQLiteConfirmationRepository opens (creating if needed) the database at path and applies the schema
func OpenSQLiteConfirmationRepository(path string) (*SQLiteConfirmationRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("sqlite path is required")
	}

	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_txlock=immediate"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	for _, stmt := range strings.Split(sqliteSchema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.Exec(stmt); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}

	return &SQLiteConfirmationRepository{db: db}, nil
}

// DB returns the raw database handle
func (r *SQLiteConfirmationRepository) DB() *sql.DB {
	return r.db
}

// Close releases the underlying database
func (r *SQLiteConfirmationRepository) Close() error {
	return r.db.Close()
}

// InTx runs fn inside an immediate transaction
func (r *SQLiteConfirmationRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("start transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(ctx, &sqliteTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// PutAccount inserts or replaces an account row
func (r *SQLiteConfirmationRepository) PutAccount(ctx context.Context, account Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email) VALUES (?1, ?2)
		ON CONFLICT (id) DO UPDATE SET email = excluded.email
	`, account.ID, account.Email)
	if err != nil {
		return fmt.Errorf("put account: %w", err)
	}
	return nil
}

type sqliteTx struct {
	tx *sql.Tx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRecord(row rowScanner) (Record, error) {
	var (
		rec      Record
		issuedAt int64
	)
	if err := row.Scan(&rec.ID, &rec.UserID, &rec.Email, &issuedAt, &rec.Key, &rec.Verified); err != nil {
		return Record{}, err
	}
	rec.IssuedAt = fromMillis(issuedAt)
	return rec, nil
}

func isSQLiteConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (t *sqliteTx) CreateRecord(ctx context.Context, rec Record) error {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	_, err := t.tx.ExecContext(ctx, `
		INSERT INTO email_confirmations (`+recordColumns+`)
		VALUES (?1, ?2, ?3, ?4, ?5, ?6)
	`, rec.ID, rec.UserID, rec.Email, toMillis(rec.IssuedAt), normalizeKey(rec.Key), rec.Verified)
	if err != nil {
		if isSQLiteConstraint(err) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("insert confirmation: %w", err)
	}
	return nil
}

func (t *sqliteTx) GetRecordByKey(ctx context.Context, key string) (Record, error) {
	row := t.tx.QueryRowContext(ctx, `
		SELECT `+recordColumns+`
		FROM email_confirmations
		WHERE confirmation_key = ?1
	`, normalizeKey(key))
	rec, err := scanSQLiteRecord(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, fmt.Errorf("get confirmation: %w", err)
	}
	return rec, nil
}

func (t *sqliteTx) ListRecordsByUser(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]Record, error) {
	rows, err := t.tx.QueryContext(ctx, `
		SELECT `+recordColumns+`
		FROM email_confirmations
		WHERE user_id = ?1
		AND (?2 IS NULL OR is_verified = ?2)
		ORDER BY issued_at DESC
	`, userID, filter.Verified)
	if err != nil {
		return nil, fmt.Errorf("list confirmations: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		rec, err := scanSQLiteRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan confirmation: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *sqliteTx) UpdateRecord(ctx context.Context, rec Record) error {
	res, err := t.tx.ExecContext(ctx, `
		UPDATE email_confirmations
		SET email = ?2, issued_at = ?3, confirmation_key = ?4, is_verified = ?5
		WHERE id = ?1
	`, rec.ID, rec.Email, toMillis(rec.IssuedAt), normalizeKey(rec.Key), rec.Verified)
	if err != nil {
		return fmt.Errorf("update confirmation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (t *sqliteTx) DeleteRecords(ctx context.Context, filter DeleteFilter) (int64, error) {
	where, args := deleteWhere(filter,
		func(n int) string { return "?" + strconv.Itoa(n) },
		func(ts time.Time) any { return toMillis(ts) },
	)
	res, err := t.tx.ExecContext(ctx, `DELETE FROM email_confirmations WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("delete confirmations: %w", err)
	}
	return res.RowsAffected()
}

func (t *sqliteTx) GetAccount(ctx context.Context, userID uuid.UUID) (Account, error) {
	var a Account
	err := t.tx.QueryRowContext(ctx, `SELECT id, email FROM users WHERE id = ?1`, userID).Scan(&a.ID, &a.Email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, fmt.Errorf("get account: %w", err)
	}
	return a, nil
}

func (t *sqliteTx) EmailInUse(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error) {
	var inUse bool
	err := t.tx.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users
			WHERE email = ?1 COLLATE NOCASE
			AND id <> ?2
		)
	`, strings.TrimSpace(email), excludeUserID).Scan(&inUse)
	if err != nil {
		return false, fmt.Errorf("check email in use: %w", err)
	}
	return inUse, nil
}

func (t *sqliteTx) SetAccountEmail(ctx context.Context, userID uuid.UUID, email string) error {
	res, err := t.tx.ExecContext(ctx, `UPDATE users SET email = ?2 WHERE id = ?1`, userID, email)
	if err != nil {
		return fmt.Errorf("set account email: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrAccountNotFound
	}
	return nil
}
