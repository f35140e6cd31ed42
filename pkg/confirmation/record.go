package confirmation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Record is a pending or verified email confirmation
type Record struct {
	ID       uuid.UUID `json:"id"`
	UserID   uuid.UUID `json:"user_id"`
	Email    string    `json:"email"`
	IssuedAt time.Time `json:"issued_at"`
	Key      string    `json:"key"`
	Verified bool      `json:"verified"`
}

// ExpiresAt is the instant after which the record can no longer be confirmed
func (r Record) ExpiresAt(ttl time.Duration) time.Time {
	return r.IssuedAt.Add(ttl)
}

// Expired reports whether now is strictly after IssuedAt+ttl
func (r Record) Expired(now time.Time, ttl time.Duration) bool {
	return now.After(r.ExpiresAt(ttl))
}

// Account is the slice of a user account the confirmation flow reads and writes
type Account struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// RecordFilter narrows ListRecordsByUser results
type RecordFilter struct {
	Verified *bool
}

// DeleteFilter describes which records DeleteRecords removes.
// Zero-valued fields do not constrain the match.
type DeleteFilter struct {
	UserID         uuid.UUID
	OnlyUnverified bool
	IssuedBefore   time.Time
	ExceptID       uuid.UUID
}

// Matches applies the filter to a single record
func (f DeleteFilter) Matches(r Record) bool {
	if f.UserID != uuid.Nil && r.UserID != f.UserID {
		return false
	}
	if f.OnlyUnverified && r.Verified {
		return false
	}
	if !f.IssuedBefore.IsZero() && !r.IssuedAt.Before(f.IssuedBefore) {
		return false
	}
	if f.ExceptID != uuid.Nil && r.ID == f.ExceptID {
		return false
	}
	return true
}

func normalizeKey(key string) string {
	return strings.ToLower(strings.TrimSpace(key))
}

func sameEmail(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func boolPtr(b bool) *bool {
	return &b
}
