package confirmation

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// memState holds records and accounts; transactions work on a clone of it
type memState struct {
	Records  map[uuid.UUID]Record
	Accounts map[uuid.UUID]Account
}

func newMemState() *memState {
	return &memState{
		Records:  make(map[uuid.UUID]Record),
		Accounts: make(map[uuid.UUID]Account),
	}
}

func (s *memState) clone() *memState {
	c := &memState{
		Records:  make(map[uuid.UUID]Record, len(s.Records)),
		Accounts: make(map[uuid.UUID]Account, len(s.Accounts)),
	}
	for id, r := range s.Records {
		c.Records[id] = r
	}
	for id, a := range s.Accounts {
		c.Accounts[id] = a
	}
	return c
}

func (s *memState) CreateRecord(ctx context.Context, rec Record) error {
	key := normalizeKey(rec.Key)
	for _, r := range s.Records {
		if normalizeKey(r.Key) == key {
			return ErrDuplicateKey
		}
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	s.Records[rec.ID] = rec
	return nil
}

func (s *memState) GetRecordByKey(ctx context.Context, key string) (Record, error) {
	key = normalizeKey(key)
	for _, r := range s.Records {
		if normalizeKey(r.Key) == key {
			return r, nil
		}
	}
	return Record{}, ErrNotFound
}

func (s *memState) ListRecordsByUser(ctx context.Context, userID uuid.UUID, filter RecordFilter) ([]Record, error) {
	var out []Record
	for _, r := range s.Records {
		if r.UserID != userID {
			continue
		}
		if filter.Verified != nil && r.Verified != *filter.Verified {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out, nil
}

func (s *memState) UpdateRecord(ctx context.Context, rec Record) error {
	if _, ok := s.Records[rec.ID]; !ok {
		return ErrNotFound
	}
	s.Records[rec.ID] = rec
	return nil
}

func (s *memState) DeleteRecords(ctx context.Context, filter DeleteFilter) (int64, error) {
	var n int64
	for id, r := range s.Records {
		if filter.Matches(r) {
			delete(s.Records, id)
			n++
		}
	}
	return n, nil
}

func (s *memState) GetAccount(ctx context.Context, userID uuid.UUID) (Account, error) {
	a, ok := s.Accounts[userID]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return a, nil
}

func (s *memState) EmailInUse(ctx context.Context, email string, excludeUserID uuid.UUID) (bool, error) {
	for id, a := range s.Accounts {
		if id != excludeUserID && sameEmail(a.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memState) SetAccountEmail(ctx context.Context, userID uuid.UUID, email string) error {
	a, ok := s.Accounts[userID]
	if !ok {
		return ErrAccountNotFound
	}
	a.Email = email
	s.Accounts[userID] = a
	return nil
}

// InMemoryConfirmationRepository keeps records and accounts in process memory.
// Transactions are serialized and roll back by discarding a working copy.
type InMemoryConfirmationRepository struct {
	mu    sync.Mutex
	state *memState
}

// NewInMemoryConfirmationRepository creates an empty in-memory repository
func NewInMemoryConfirmationRepository() *InMemoryConfirmationRepository {
	return &InMemoryConfirmationRepository{state: newMemState()}
}

// InTx runs fn against a working copy and commits it when fn succeeds
func (r *InMemoryConfirmationRepository) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	work := r.state.clone()
	if err := fn(ctx, work); err != nil {
		return err
	}
	r.state = work
	return nil
}

// PutAccount seeds or replaces an account
func (r *InMemoryConfirmationRepository) PutAccount(account Account) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.state.Accounts[account.ID] = account
}

// SeedRecord stores a record as-is, bypassing key generation
func (r *InMemoryConfirmationRepository) SeedRecord(rec Record) Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	r.state.Records[rec.ID] = rec
	return rec
}

// Records returns a snapshot of all records, newest first
func (r *InMemoryConfirmationRepository) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.state.Records))
	for _, rec := range r.state.Records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].IssuedAt.After(out[j].IssuedAt)
	})
	return out
}

// Close is a no-op
func (r *InMemoryConfirmationRepository) Close() error {
	return nil
}
