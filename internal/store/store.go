// Package store provides the in-memory Domain Store: it owns users, groups,
// sessions and notifications, keeps group membership as a single canonical
// relation, and applies every mutation as an all-or-nothing transaction.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"

	"github.com/fkhayef/studyhub/internal/metrics"
)

// Store is an isolated, concurrency-safe instance of the domain state.
type Store struct {
	mu     sync.RWMutex
	state  state
	clock  clockwork.Clock
	logger *zap.Logger
	idFn   func() string
}

// Option configures a Store
type Option func(*Store)

// WithClock sets the clock used to timestamp transactions.
func WithClock(c clockwork.Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithLogger sets the logger used for transaction diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// WithIDGenerator replaces the uuid generator, mostly for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.idFn = fn }
}

// New creates an empty store
func New(opts ...Option) *Store {
	s := &Store{
		state:  newState(),
		clock:  clockwork.NewRealClock(),
		logger: zap.NewNop(),
		idFn:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) newID() string {
	return s.idFn()
}

// Clock returns the clock the store timestamps with.
func (s *Store) Clock() clockwork.Clock {
	return s.clock
}

// RunInTransaction executes fn against a private copy of the state and
// commits it only when fn returns nil. Transactions are serialized, so no
// caller ever observes a partially applied operation.
func (s *Store) RunInTransaction(ctx context.Context, op string, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{
		store: s,
		state: s.state.clone(),
		now:   s.clock.Now().UTC(),
	}
	tx.View = View{st: &tx.state}

	err := fn(tx)
	metrics.StoreTransactionDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreTransactionsTotal.WithLabelValues(op, "rollback").Inc()
		s.logger.Debug("store transaction rolled back",
			zap.String("operation", op),
			zap.Error(err))
		return err
	}

	s.state = tx.state
	metrics.StoreTransactionsTotal.WithLabelValues(op, "commit").Inc()
	s.recordSizes()
	return nil
}

// View executes fn with read-only access to the committed state.
func (s *Store) View(ctx context.Context, fn func(v *View) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return fn(&View{st: &s.state})
}

func (s *Store) recordSizes() {
	metrics.StoreEntities.WithLabelValues("users").Set(float64(len(s.state.users)))
	metrics.StoreEntities.WithLabelValues("groups").Set(float64(len(s.state.groups)))
	metrics.StoreEntities.WithLabelValues("sessions").Set(float64(len(s.state.sessions)))
	metrics.StoreEntities.WithLabelValues("memberships").Set(float64(len(s.state.memberships)))
}
