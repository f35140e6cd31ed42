package confirmation

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// repoFactory builds an empty repository holding the given accounts
type repoFactory func(t *testing.T, accounts ...Account) ConfirmationRepository

var errRollback = errors.New("rollback")

func mustTx(t *testing.T, repo ConfirmationRepository, fn func(ctx context.Context, tx Tx) error) {
	t.Helper()
	require.NoError(t, repo.InTx(context.Background(), fn))
}

func testRecord(userID uuid.UUID, email string, issuedAt time.Time) Record {
	return Record{
		ID:       uuid.New(),
		UserID:   userID,
		Email:    email,
		IssuedAt: issuedAt,
		Key:      GenerateKey(email),
	}
}

// runRepositoryTests exercises the Tx contract every store must honor
func runRepositoryTests(t *testing.T, newRepo repoFactory) {
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("CreateAndGetByKey", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		repo := newRepo(t, alice)
		rec := testRecord(alice.ID, "alice.new@example.com", base)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			return tx.CreateRecord(ctx, rec)
		})

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			got, err := tx.GetRecordByKey(ctx, rec.Key)
			require.NoError(t, err)
			assert.Equal(t, rec.ID, got.ID)
			assert.Equal(t, rec.UserID, got.UserID)
			assert.Equal(t, rec.Email, got.Email)
			assert.True(t, rec.IssuedAt.Equal(got.IssuedAt), "issued_at %s != %s", got.IssuedAt, rec.IssuedAt)
			assert.False(t, got.Verified)
			return nil
		})
	})

	t.Run("DuplicateKey", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		repo := newRepo(t, alice)
		rec := testRecord(alice.ID, "alice.new@example.com", base)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			return tx.CreateRecord(ctx, rec)
		})

		dup := testRecord(alice.ID, "other@example.com", base)
		dup.Key = rec.Key
		err := repo.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
			return tx.CreateRecord(ctx, dup)
		})
		assert.ErrorIs(t, err, ErrDuplicateKey)
	})

	t.Run("GetMissingKey", func(t *testing.T) {
		repo := newRepo(t)
		err := repo.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
			_, err := tx.GetRecordByKey(ctx, "missing")
			return err
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("ListRecordsByUser", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		bob := Account{ID: uuid.New(), Email: "bob@example.com"}
		repo := newRepo(t, alice, bob)

		older := testRecord(alice.ID, "a1@example.com", base)
		newer := testRecord(alice.ID, "a2@example.com", base.Add(time.Hour))
		verified := testRecord(alice.ID, "a3@example.com", base.Add(2*time.Hour))
		verified.Verified = true
		other := testRecord(bob.ID, "b1@example.com", base)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			for _, r := range []Record{older, newer, verified, other} {
				if err := tx.CreateRecord(ctx, r); err != nil {
					return err
				}
			}
			return nil
		})

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			all, err := tx.ListRecordsByUser(ctx, alice.ID, RecordFilter{})
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.Equal(t, verified.ID, all[0].ID)
			assert.Equal(t, newer.ID, all[1].ID)
			assert.Equal(t, older.ID, all[2].ID)

			pending, err := tx.ListRecordsByUser(ctx, alice.ID, RecordFilter{Verified: boolPtr(false)})
			require.NoError(t, err)
			require.Len(t, pending, 2)
			assert.Equal(t, newer.ID, pending[0].ID)

			done, err := tx.ListRecordsByUser(ctx, alice.ID, RecordFilter{Verified: boolPtr(true)})
			require.NoError(t, err)
			require.Len(t, done, 1)
			assert.Equal(t, verified.ID, done[0].ID)
			return nil
		})
	})

	t.Run("UpdateRecord", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		repo := newRepo(t, alice)
		rec := testRecord(alice.ID, "alice.new@example.com", base)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			if err := tx.CreateRecord(ctx, rec); err != nil {
				return err
			}
			rec.Verified = true
			return tx.UpdateRecord(ctx, rec)
		})

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			got, err := tx.GetRecordByKey(ctx, rec.Key)
			require.NoError(t, err)
			assert.True(t, got.Verified)
			return nil
		})

		err := repo.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
			return tx.UpdateRecord(ctx, testRecord(alice.ID, "x@example.com", base))
		})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteRecords", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		bob := Account{ID: uuid.New(), Email: "bob@example.com"}
		repo := newRepo(t, alice, bob)

		stale := testRecord(alice.ID, "a1@example.com", base.Add(-35*24*time.Hour))
		fresh := testRecord(alice.ID, "a2@example.com", base)
		staleVerified := testRecord(alice.ID, "a3@example.com", base.Add(-35*24*time.Hour))
		staleVerified.Verified = true
		bobFresh := testRecord(bob.ID, "b1@example.com", base)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			for _, r := range []Record{stale, fresh, staleVerified, bobFresh} {
				if err := tx.CreateRecord(ctx, r); err != nil {
					return err
				}
			}
			return nil
		})

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			n, err := tx.DeleteRecords(ctx, DeleteFilter{OnlyUnverified: true, IssuedBefore: base.Add(-3 * 24 * time.Hour)})
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)

			n, err = tx.DeleteRecords(ctx, DeleteFilter{UserID: alice.ID, OnlyUnverified: true, ExceptID: fresh.ID})
			require.NoError(t, err)
			assert.Equal(t, int64(0), n)

			n, err = tx.DeleteRecords(ctx, DeleteFilter{UserID: bob.ID, OnlyUnverified: true})
			require.NoError(t, err)
			assert.Equal(t, int64(1), n)
			return nil
		})

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			left, err := tx.ListRecordsByUser(ctx, alice.ID, RecordFilter{})
			require.NoError(t, err)
			ids := []uuid.UUID{}
			for _, r := range left {
				ids = append(ids, r.ID)
			}
			assert.ElementsMatch(t, []uuid.UUID{fresh.ID, staleVerified.ID}, ids)
			return nil
		})
	})

	t.Run("Accounts", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		bob := Account{ID: uuid.New(), Email: "Bob@Example.com"}
		repo := newRepo(t, alice, bob)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			got, err := tx.GetAccount(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, alice, got)

			_, err = tx.GetAccount(ctx, uuid.New())
			assert.ErrorIs(t, err, ErrAccountNotFound)

			inUse, err := tx.EmailInUse(ctx, "bob@example.com", alice.ID)
			require.NoError(t, err)
			assert.True(t, inUse)

			inUse, err = tx.EmailInUse(ctx, "bob@example.com", bob.ID)
			require.NoError(t, err)
			assert.False(t, inUse)

			require.NoError(t, tx.SetAccountEmail(ctx, alice.ID, "alice.new@example.com"))
			assert.ErrorIs(t, tx.SetAccountEmail(ctx, uuid.New(), "x@example.com"), ErrAccountNotFound)
			return nil
		})

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			got, err := tx.GetAccount(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice.new@example.com", got.Email)
			return nil
		})
	})

	t.Run("Rollback", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		repo := newRepo(t, alice)
		rec := testRecord(alice.ID, "alice.new@example.com", base)

		err := repo.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
			if err := tx.CreateRecord(ctx, rec); err != nil {
				return err
			}
			if err := tx.SetAccountEmail(ctx, alice.ID, "changed@example.com"); err != nil {
				return err
			}
			return errRollback
		})
		require.ErrorIs(t, err, errRollback)

		mustTx(t, repo, func(ctx context.Context, tx Tx) error {
			_, err := tx.GetRecordByKey(ctx, rec.Key)
			assert.ErrorIs(t, err, ErrNotFound)
			got, err := tx.GetAccount(ctx, alice.ID)
			require.NoError(t, err)
			assert.Equal(t, "alice@example.com", got.Email)
			return nil
		})
	})

	t.Run("ServiceRoundTrip", func(t *testing.T) {
		alice := Account{ID: uuid.New(), Email: "alice@example.com"}
		repo := newRepo(t, alice)
		service := NewConfirmationService(repo)

		rec, err := service.Request(context.Background(), "alice.new@example.com", alice.ID)
		require.NoError(t, err)

		confirmed, err := service.Confirm(context.Background(), rec.Key)
		require.NoError(t, err)
		assert.True(t, confirmed.Verified)

		account, err := service.Account(context.Background(), alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice.new@example.com", account.Email)

		_, err = service.Confirm(context.Background(), rec.Key)
		assert.ErrorIs(t, err, ErrAlreadyVerified)
	})
}
