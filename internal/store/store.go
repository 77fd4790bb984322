// Package store holds the authoritative in-memory transaction list and keeps
// it synchronized with a storage backend. The memory copy always reflects the
// latest accepted mutation; persistence problems are reported but never roll
// a mutation back.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"moneywise/internal/core"
	"moneywise/internal/storage"
)

// ErrPersist marks a mutation that was applied in memory but could not be
// written to the backend. Callers may keep serving the mutated state and
// surface the problem as a warning.
var ErrPersist = errors.New("persist transactions")

// DefaultKey is the storage key transactions live under.
const DefaultKey = "transactions"

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	key   string
	now   func() time.Time
	newID func() string
	items []core.Transaction
}

// Option adjusts a Store at construction, mostly for tests.
type Option func(*Store)

// WithClock overrides the time source used for CreatedAt stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// New builds a store backed by kv and loads the existing records. An absent,
// empty or malformed payload is replaced with the demo seed dataset.
func New(ctx context.Context, kv storage.KV, key string, opts ...Option) (*Store, error) {
	if key == "" {
		key = DefaultKey
	}
	s := &Store{
		kv:    kv,
		key:   key,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	payload, err := s.kv.Load(ctx, s.key)
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, storage.ErrMalformed):
		return s.reseed(ctx)
	case err != nil:
		return fmt.Errorf("load transactions: %w", err)
	}

	var items []core.Transaction
	if err := json.Unmarshal(payload, &items); err != nil {
		return s.reseed(ctx)
	}
	if len(items) == 0 {
		return s.reseed(ctx)
	}
	s.items = items
	return nil
}

func (s *Store) reseed(ctx context.Context) error {
	s.items = seedTransactions(s.now, s.newID)
	if err := s.persist(ctx); err != nil {
		return err
	}
	return nil
}

// persist writes the current list to the backend, retrying once on failure.
// Callers must hold mu.
func (s *Store) persist(ctx context.Context) error {
	payload, err := json.Marshal(s.items)
	if err != nil {
		return fmt.Errorf("encode transactions: %w", err)
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 1), ctx)
	save := func() error {
		return s.kv.Save(ctx, s.key, payload)
	}
	if err := backoff.Retry(save, policy); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// Create validates the draft and stores a new transaction. The record is
// returned even when persistence fails; check the error with ErrPersist.
func (s *Store) Create(ctx context.Context, d core.Draft) (core.Transaction, error) {
	if errs := core.Validate(d); len(errs) > 0 {
		return core.Transaction{}, errs
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	txn := core.Transaction{
		ID:          s.newID(),
		Title:       d.Title,
		Description: d.Description,
		Amount:      d.Amount,
		Type:        d.Type,
		Category:    d.Category,
		Date:        d.Date,
		CreatedAt:   s.now().UTC(),
	}
	s.items = append([]core.Transaction{txn}, s.items...)
	return txn, s.persist(ctx)
}

// Update merges the patch into the stored record and re-validates the whole
// draft, so a patch can never leave a record invalid.
func (s *Store) Update(ctx context.Context, id string, p core.Patch) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Transaction{}, core.ErrNotFound
	}

	draft := p.Apply(s.items[idx].Draft())
	if errs := core.Validate(draft); len(errs) > 0 {
		return core.Transaction{}, errs
	}

	txn := s.items[idx]
	txn.Title = draft.Title
	txn.Description = draft.Description
	txn.Amount = draft.Amount
	txn.Type = draft.Type
	txn.Category = draft.Category
	txn.Date = draft.Date
	s.items[idx] = txn
	return txn, s.persist(ctx)
}

// Delete removes a transaction by ID.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.ErrNotFound
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	return s.persist(ctx)
}

// GetByID returns a single transaction.
func (s *Store) GetByID(id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return core.Transaction{}, core.ErrNotFound
	}
	return s.items[idx], nil
}

// GetAll returns a snapshot copy of every transaction. Mutating the returned
// slice does not affect the store.
func (s *Store) GetAll() []core.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Transaction(nil), s.items...)
}

// Count returns the number of stored transactions.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Reset discards every transaction and restores the demo seed dataset.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reseed(ctx)
}

// Clear removes every transaction, leaving an empty list.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	if err := s.kv.Clear(ctx, s.key); err != nil {
		return fmt.Errorf("%w: %v", ErrPersist, err)
	}
	return nil
}

// indexOf returns the position of id in items, or -1. Callers must hold mu.
func (s *Store) indexOf(id string) int {
	for i, txn := range s.items {
		if txn.ID == id {
			return i
		}
	}
	return -1
}
