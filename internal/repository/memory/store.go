// Package memory implements the repository contracts in process memory. It
// backs local runs and the concurrency tests of the service layer.
package memory

import (
	"context"
	"sort"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
)

type state struct {
	spaces       map[string]domain.Space
	users        map[string]domain.User
	reservations map[string]domain.Reservation
	payments     map[string]domain.Payment
	occupancy    []domain.OccupancyLogEntry
}

func newState() *state {
	return &state{
		spaces:       make(map[string]domain.Space),
		users:        make(map[string]domain.User),
		reservations: make(map[string]domain.Reservation),
		payments:     make(map[string]domain.Payment),
	}
}

func (s *state) clone() *state {
	c := &state{
		spaces:       make(map[string]domain.Space, len(s.spaces)),
		users:        make(map[string]domain.User, len(s.users)),
		reservations: make(map[string]domain.Reservation, len(s.reservations)),
		payments:     make(map[string]domain.Payment, len(s.payments)),
		occupancy:    append([]domain.OccupancyLogEntry(nil), s.occupancy...),
	}
	for k, v := range s.spaces {
		c.spaces[k] = v
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.reservations {
		c.reservations[k] = v
	}
	for k, v := range s.payments {
		if v.PaidAt != nil {
			paid := *v.PaidAt
			v.PaidAt = &paid
		}
		c.payments[k] = v
	}
	return c
}

// Store serializes transactions: one runs at a time against a private copy
// of the data, and the copy replaces the committed state only when the
// transaction succeeds.
type Store struct {
	sem   chan struct{}
	state *state
	seq   map[string]int64
}

func NewStore() *Store {
	return &Store{
		sem:   make(chan struct{}, 1),
		state: newState(),
		seq:   make(map[string]int64),
	}
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories) error) error {
	select {
	case s.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-s.sem }()

	tx := &txn{store: s, state: s.state.clone()}
	if err := fn(ctx, tx.repositories()); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.state = tx.state
	return nil
}

// nextID advances a sequence. Like a database sequence it is not rolled back
// with the transaction.
func (s *Store) nextID(prefix string) string {
	s.seq[prefix]++
	return domain.FormatID(prefix, s.seq[prefix])
}

type txn struct {
	store *Store
	state *state
}

func (t *txn) repositories() repository.Repositories {
	return repository.Repositories{
		Spaces:       &spaceRepository{tx: t},
		Users:        &userRepository{tx: t},
		Reservations: &reservationRepository{tx: t},
		Payments:     &paymentRepository{tx: t},
		OccupancyLog: &occupancyLogRepository{tx: t},
	}
}

func sortedValues[K comparable, V any](m map[K]V, keep func(V) bool, less func(a, b V) bool) []V {
	var out []V
	for _, v := range m {
		if keep(v) {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i], out[j]) })
	return out
}

var _ repository.Transactor = (*Store)(nil)
