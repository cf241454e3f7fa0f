package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
)

type spaceRepository struct {
	tx *txn
}

func (r *spaceRepository) Create(ctx context.Context, space *domain.Space) error {
	if _, ok := r.tx.state.spaces[space.ID]; ok {
		return fmt.Errorf("space %s: %w", space.ID, domain.ErrAlreadyExists)
	}
	space.Status = domain.SpaceStatusAvailable
	r.tx.state.spaces[space.ID] = *space
	return nil
}

func (r *spaceRepository) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	s, ok := r.tx.state.spaces[id]
	if !ok {
		return nil, fmt.Errorf("space %s: %w", id, domain.ErrSpaceNotFound)
	}
	return &s, nil
}

func (r *spaceRepository) LockByID(ctx context.Context, id string) (*domain.Space, error) {
	return r.GetByID(ctx, id)
}

func (r *spaceRepository) List(ctx context.Context, status domain.SpaceStatus) ([]domain.Space, error) {
	return sortedValues(r.tx.state.spaces,
		func(s domain.Space) bool { return status == "" || s.Status == status },
		func(a, b domain.Space) bool {
			if a.Priority != b.Priority {
				return a.Priority < b.Priority
			}
			return a.ID < b.ID
		}), nil
}

func (r *spaceRepository) UpdateStatus(ctx context.Context, id string, status domain.SpaceStatus) error {
	s, ok := r.tx.state.spaces[id]
	if !ok {
		return fmt.Errorf("space %s: %w", id, domain.ErrSpaceNotFound)
	}
	s.Status = status
	r.tx.state.spaces[id] = s
	return nil
}

type userRepository struct {
	tx *txn
}

func (r *userRepository) emailTaken(email, exceptID string) bool {
	for id, u := range r.tx.state.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if _, ok := r.tx.state.users[user.ID]; ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrAlreadyExists)
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("email %s: %w", user.Email, domain.ErrAlreadyExists)
	}
	r.tx.state.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := r.tx.state.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	return &u, nil
}

func (r *userRepository) LockByID(ctx context.Context, id string, exclusive bool) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	u, ok := r.tx.state.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrUserNotFound)
	}
	if r.emailTaken(user.Email, user.ID) {
		return fmt.Errorf("email %s: %w", user.Email, domain.ErrAlreadyExists)
	}
	u.FirstName = user.FirstName
	u.LastName = user.LastName
	u.Email = user.Email
	u.PhoneNumber = user.PhoneNumber
	u.VehicleNumber = user.VehicleNumber
	u.Type = user.Type
	u.UpdatedAt = user.UpdatedAt
	r.tx.state.users[user.ID] = u
	return nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	u, ok := r.tx.state.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	u.Status = status
	u.UpdatedAt = time.Now().UTC()
	r.tx.state.users[id] = u
	return nil
}

func (r *userRepository) Delete(ctx context.Context, id string) error {
	if _, ok := r.tx.state.users[id]; !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	for _, res := range r.tx.state.reservations {
		if res.UserID == id {
			return fmt.Errorf("user %s: %w", id, domain.ErrUserHasHistory)
		}
	}
	for _, e := range r.tx.state.occupancy {
		if e.UserID == id {
			return fmt.Errorf("user %s: %w", id, domain.ErrUserHasHistory)
		}
	}
	delete(r.tx.state.users, id)
	return nil
}

type reservationRepository struct {
	tx *txn
}

// Create enforces the same foreign keys and Booked-overlap exclusion as the
// Postgres schema.
func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	if _, ok := r.tx.state.users[res.UserID]; !ok {
		return fmt.Errorf("user %s: %w", res.UserID, domain.ErrUserNotFound)
	}
	if _, ok := r.tx.state.spaces[res.SpaceID]; !ok {
		return fmt.Errorf("space %s: %w", res.SpaceID, domain.ErrSpaceNotFound)
	}
	if err := domain.ValidateInterval(res.StartTime, res.EndTime); err != nil {
		return err
	}
	if res.Status == domain.ReservationStatusBooked {
		for _, other := range r.tx.state.reservations {
			if other.SpaceID == res.SpaceID && other.Blocks(res.StartTime, res.EndTime) {
				return fmt.Errorf("space %s: %w", res.SpaceID, domain.ErrSpaceUnavailable)
			}
		}
	}
	res.ID = r.tx.store.nextID(domain.ReservationIDPrefix)
	r.tx.state.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	res, ok := r.tx.state.reservations[id]
	if !ok {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
	}
	return &res, nil
}

func (r *reservationRepository) LockByID(ctx context.Context, id string) (*domain.Reservation, error) {
	return r.GetByID(ctx, id)
}

func (r *reservationRepository) CountOverlappingBooked(ctx context.Context, spaceID string, start, end time.Time) (int, error) {
	n := 0
	for _, res := range r.tx.state.reservations {
		if res.SpaceID == spaceID && res.Blocks(start, end) {
			n++
		}
	}
	return n, nil
}

func (r *reservationRepository) CountBookedBySpace(ctx context.Context, spaceID string) (int, error) {
	n := 0
	for _, res := range r.tx.state.reservations {
		if res.SpaceID == spaceID && res.Status == domain.ReservationStatusBooked {
			n++
		}
	}
	return n, nil
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	res, ok := r.tx.state.reservations[id]
	if !ok {
		return fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
	}
	res.Status = status
	res.UpdatedAt = time.Now().UTC()
	r.tx.state.reservations[id] = res
	return nil
}

func (r *reservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	return sortedValues(r.tx.state.reservations,
		func(res domain.Reservation) bool {
			if filter.Status != "" && res.Status != filter.Status {
				return false
			}
			if filter.UserID != "" && res.UserID != filter.UserID {
				return false
			}
			if filter.SpaceID != "" && res.SpaceID != filter.SpaceID {
				return false
			}
			return filter.EndedBefore == nil || res.EndTime.Before(*filter.EndedBefore)
		},
		func(a, b domain.Reservation) bool {
			if !a.StartTime.Equal(b.StartTime) {
				return a.StartTime.Before(b.StartTime)
			}
			return a.ID < b.ID
		}), nil
}

type paymentRepository struct {
	tx *txn
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	if _, ok := r.tx.state.reservations[p.ReservationID]; !ok {
		return fmt.Errorf("reservation %s: %w", p.ReservationID, domain.ErrReservationNotFound)
	}
	for _, existing := range r.tx.state.payments {
		if existing.ReservationID == p.ReservationID {
			return fmt.Errorf("reservation %s already billed: %w", p.ReservationID, domain.ErrReservationAlreadyClosed)
		}
	}
	p.ID = r.tx.store.nextID(domain.PaymentIDPrefix)
	r.tx.state.payments[p.ID] = *p
	return nil
}

// withReservation fills the fields the Postgres store reads through a join.
func (r *paymentRepository) withReservation(p domain.Payment) domain.Payment {
	if res, ok := r.tx.state.reservations[p.ReservationID]; ok {
		p.UserID = res.UserID
		p.SpaceID = res.SpaceID
		p.StartTime = res.StartTime
		p.EndTime = res.EndTime
	}
	if p.PaidAt != nil {
		paid := *p.PaidAt
		p.PaidAt = &paid
	}
	return p
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	p, ok := r.tx.state.payments[id]
	if !ok {
		return nil, fmt.Errorf("payment %s: %w", id, domain.ErrPaymentNotFound)
	}
	p = r.withReservation(p)
	return &p, nil
}

func (r *paymentRepository) LockByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.GetByID(ctx, id)
}

func (r *paymentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	p, ok := r.tx.state.payments[id]
	if !ok || p.Status != domain.PaymentStatusPending {
		return fmt.Errorf("payment %s: %w", id, domain.ErrPaymentNotPending)
	}
	p.Status = domain.PaymentStatusPaid
	p.PaidAt = &paidAt
	r.tx.state.payments[id] = p
	return nil
}

func (r *paymentRepository) CountPendingByUser(ctx context.Context, userID string) (int, error) {
	n := 0
	for _, p := range r.tx.state.payments {
		if p.Status != domain.PaymentStatusPending {
			continue
		}
		if res, ok := r.tx.state.reservations[p.ReservationID]; ok && res.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (r *paymentRepository) List(ctx context.Context, filter repository.PaymentFilter) ([]domain.Payment, error) {
	var out []domain.Payment
	for _, p := range r.tx.state.payments {
		p = r.withReservation(p)
		if filter.UserID != "" && p.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type occupancyLogRepository struct {
	tx *txn
}

func (r *occupancyLogRepository) Create(ctx context.Context, entry *domain.OccupancyLogEntry) error {
	entry.ID = r.tx.store.nextID(domain.OccupancyLogIDPrefix)
	r.tx.state.occupancy = append(r.tx.state.occupancy, *entry)
	return nil
}

func (r *occupancyLogRepository) List(ctx context.Context, filter repository.OccupancyFilter) ([]domain.OccupancyLogEntry, error) {
	var out []domain.OccupancyLogEntry
	for _, e := range r.tx.state.occupancy {
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.SpaceID != "" && e.SpaceID != filter.SpaceID {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].EntryTime.Equal(out[j].EntryTime) {
			return out[i].EntryTime.Before(out[j].EntryTime)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
