package confirmation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultTTL is how long a confirmation key stays valid
	DefaultTTL = 3 * 24 * time.Hour

	maxKeyAttempts = 3
)

// ConfirmationService implements the confirmation state machine
type ConfirmationService struct {
	repo        ConfirmationRepository
	notifier    Notifier
	observers   []Observer
	ttl         time.Duration
	uniqueEmail bool
	now         func() time.Time
	generateKey KeyGenerator
}

// ConfirmationServiceOption defines configuration options
type ConfirmationServiceOption func(*ConfirmationService)

// WithTTL sets how long keys stay valid
func WithTTL(ttl time.Duration) ConfirmationServiceOption {
	return func(s *ConfirmationService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithUniqueEmail toggles the one-account-per-email check at confirm time
func WithUniqueEmail(enabled bool) ConfirmationServiceOption {
	return func(s *ConfirmationService) {
		s.uniqueEmail = enabled
	}
}

// WithNotifier sets the delivery channel for new keys
func WithNotifier(n Notifier) ConfirmationServiceOption {
	return func(s *ConfirmationService) {
		s.notifier = n
	}
}

// WithObserver appends an observer for EmailConfirmed events
func WithObserver(o Observer) ConfirmationServiceOption {
	return func(s *ConfirmationService) {
		s.observers = append(s.observers, o)
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) ConfirmationServiceOption {
	return func(s *ConfirmationService) {
		s.now = now
	}
}

// WithKeyGenerator replaces GenerateKey
func WithKeyGenerator(g KeyGenerator) ConfirmationServiceOption {
	return func(s *ConfirmationService) {
		s.generateKey = g
	}
}

// NewConfirmationService creates a new confirmation service
func NewConfirmationService(repo ConfirmationRepository, opts ...ConfirmationServiceOption) *ConfirmationService {
	s := &ConfirmationService{
		repo:        repo,
		ttl:         DefaultTTL,
		uniqueEmail: true,
		now:         time.Now,
		generateKey: GenerateKey,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the configured key lifetime
func (s *ConfirmationService) TTL() time.Duration {
	return s.ttl
}

func (s *ConfirmationService) clock() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// Request creates a pending confirmation for email and delivers its key.
// A delivery failure is logged; the record is kept so the user can resend.
func (s *ConfirmationService) Request(ctx context.Context, email string, userID uuid.UUID) (Record, error) {
	email = strings.TrimSpace(email)
	if _, err := mail.ParseAddress(email); err != nil || strings.ContainsAny(email, "<> ") {
		return Record{}, ErrInvalidEmail
	}

	var (
		rec     Record
		account Account
	)
	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		account, err = tx.GetAccount(ctx, userID)
		if err != nil {
			return err
		}

		for attempt := 1; ; attempt++ {
			rec = Record{
				ID:       uuid.New(),
				UserID:   userID,
				Email:    email,
				IssuedAt: s.clock(),
				Key:      s.generateKey(email),
			}
			err = tx.CreateRecord(ctx, rec)
			if !errors.Is(err, ErrDuplicateKey) || attempt == maxKeyAttempts {
				return err
			}
			slog.Warn("Confirmation key collision, regenerating", "user_id", userID, "attempt", attempt)
		}
	})
	if err != nil {
		if !errors.Is(err, ErrAccountNotFound) {
			slog.Error("Failed to create confirmation", "user_id", userID, "err", err)
		}
		return Record{}, err
	}

	s.deliver(ctx, rec, account)

	slog.Info("Confirmation requested", "user_id", userID, "record_id", rec.ID, "expires_at", rec.ExpiresAt(s.ttl))
	return rec, nil
}

func (s *ConfirmationService) deliver(ctx context.Context, rec Record, account Account) {
	if s.notifier == nil {
		slog.Warn("Notifier not configured, skipping confirmation email", "record_id", rec.ID)
		return
	}
	if err := s.notifier.Deliver(ctx, rec.Email, account, rec.Key); err != nil {
		slog.Error("Failed to deliver confirmation email", "record_id", rec.ID, "user_id", rec.UserID, "err", err)
	}
}

// Resend issues a fresh confirmation for the same email and user as old.
// old is left in place for ExpireSweep.
func (s *ConfirmationService) Resend(ctx context.Context, old Record) (Record, error) {
	return s.Request(ctx, old.Email, old.UserID)
}

// LastPendingEmail returns the newest unexpired pending email for the user and false,
// or the account's current email and true when nothing is pending.
func (s *ConfirmationService) LastPendingEmail(ctx context.Context, userID uuid.UUID) (string, bool, error) {
	var (
		email     string
		isAccount bool
	)
	now := s.clock()
	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		pending, err := tx.ListRecordsByUser(ctx, userID, RecordFilter{Verified: boolPtr(false)})
		if err != nil {
			return err
		}
		for _, rec := range pending {
			if !rec.Expired(now, s.ttl) {
				email = rec.Email
				return nil
			}
		}

		account, err := tx.GetAccount(ctx, userID)
		if err != nil {
			return err
		}
		email, isAccount = account.Email, true
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return email, isAccount, nil
}

// Confirm applies the confirmation identified by key.
//
// On ErrExpired and ErrAlreadyVerified (including ErrEmailTaken) the record
// is returned together with the error so callers can resend or build a reply.
// On success the owning account's email is updated, the record is marked
// verified and the user's other unverified records are deleted, all in one
// transaction; observers run after it commits.
func (s *ConfirmationService) Confirm(ctx context.Context, key string) (Record, error) {
	var rec Record
	now := s.clock()

	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		rec, err = tx.GetRecordByKey(ctx, normalizeKey(key))
		if err != nil {
			return err
		}
		if rec.Verified {
			return ErrAlreadyVerified
		}
		if rec.Expired(now, s.ttl) {
			return ErrExpired
		}

		if s.uniqueEmail {
			taken, err := tx.EmailInUse(ctx, rec.Email, rec.UserID)
			if err != nil {
				return err
			}
			if taken {
				return ErrEmailTaken
			}
		}

		if err := tx.SetAccountEmail(ctx, rec.UserID, rec.Email); err != nil {
			return err
		}
		rec.Verified = true
		if err := tx.UpdateRecord(ctx, rec); err != nil {
			return err
		}
		_, err = tx.DeleteRecords(ctx, DeleteFilter{
			UserID:         rec.UserID,
			OnlyUnverified: true,
			ExceptID:       rec.ID,
		})
		return err
	})

	switch {
	case err == nil:
	case errors.Is(err, ErrNotFound):
		return Record{}, err
	case errors.Is(err, ErrExpired), errors.Is(err, ErrAlreadyVerified):
		slog.Info("Confirmation rejected", "record_id", rec.ID, "user_id", rec.UserID, "reason", err)
		return rec, err
	default:
		slog.Error("Failed to confirm email", "err", err)
		return Record{}, fmt.Errorf("confirm email: %w", err)
	}

	slog.Info("Email confirmed", "record_id", rec.ID, "user_id", rec.UserID)

	event := EmailConfirmed{
		RecordID:    rec.ID,
		UserID:      rec.UserID,
		Email:       rec.Email,
		ConfirmedAt: now,
	}
	for _, o := range s.observers {
		o.EmailConfirmed(ctx, event)
	}

	return rec, nil
}

// ExpireSweep deletes unverified records past their TTL and returns how many were removed
func (s *ConfirmationService) ExpireSweep(ctx context.Context) (int64, error) {
	cutoff := s.clock().Add(-s.ttl)

	var n int64
	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		n, err = tx.DeleteRecords(ctx, DeleteFilter{
			OnlyUnverified: true,
			IssuedBefore:   cutoff,
		})
		return err
	})
	if err != nil {
		slog.Error("Failed to sweep expired confirmations", "err", err)
		return 0, fmt.Errorf("sweep expired confirmations: %w", err)
	}

	if n > 0 {
		slog.Info("Expired confirmations swept", "count", n)
	}
	return n, nil
}

// Account returns the owning account of a confirmation
func (s *ConfirmationService) Account(ctx context.Context, userID uuid.UUID) (Account, error) {
	var account Account
	err := s.repo.InTx(ctx, func(ctx context.Context, tx Tx) error {
		var err error
		account, err = tx.GetAccount(ctx, userID)
		return err
	})
	return account, err
}
