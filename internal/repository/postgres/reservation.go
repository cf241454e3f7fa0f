package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
)

const reservationColumns = "id, user_id, space_id, start_time, end_time, status, created_at, updated_at"

type reservationRepository struct {
	db DBTX
}

func NewReservationRepository(db DBTX) repository.ReservationRepository {
	return &reservationRepository{db: db}
}

func (r *reservationRepository) Create(ctx context.Context, res *domain.Reservation) error {
	seq, err := nextSequenceValue(ctx, r.db, "reservation_id_seq")
	if err != nil {
		return fmt.Errorf("failed to allocate reservation id: %w", err)
	}
	res.ID = domain.FormatID(domain.ReservationIDPrefix, seq)

	query := `INSERT INTO reservations (` + reservationColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	logger.DatabaseCall("INSERT", "reservations", "id", res.ID, "spaceID", res.SpaceID)
	_, err = r.db.ExecContext(ctx, query,
		res.ID, res.UserID, res.SpaceID, res.StartTime, res.EndTime, res.Status, res.CreatedAt, res.UpdatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "table", "reservations")
		switch pqCode(err) {
		case codeExclusionViolation:
			return fmt.Errorf("space %s: %w", res.SpaceID, domain.ErrSpaceUnavailable)
		case codeUniqueViolation:
			return fmt.Errorf("reservation %s: %w", res.ID, domain.ErrAlreadyExists)
		}
		return err
	}
	logger.DatabaseResult("INSERT", 1, nil, "table", "reservations")
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *reservationRepository) LockByID(ctx context.Context, id string) (*domain.Reservation, error) {
	query := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *reservationRepository) getOne(ctx context.Context, query, id string) (*domain.Reservation, error) {
	res := &domain.Reservation{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&res.ID, &res.UserID, &res.SpaceID, &res.StartTime, &res.EndTime, &res.Status, &res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

// CountOverlappingBooked counts Booked reservations on the space whose
// half-open interval intersects [start, end).
func (r *reservationRepository) CountOverlappingBooked(ctx context.Context, spaceID string, start, end time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM reservations
	          WHERE space_id = $1 AND status = $2 AND start_time < $4 AND $3 < end_time`
	var n int
	err := r.db.QueryRowContext(ctx, query, spaceID, domain.ReservationStatusBooked, start, end).Scan(&n)
	return n, err
}

func (r *reservationRepository) CountBookedBySpace(ctx context.Context, spaceID string) (int, error) {
	query := `SELECT COUNT(*) FROM reservations WHERE space_id = $1 AND status = $2`
	var n int
	err := r.db.QueryRowContext(ctx, query, spaceID, domain.ReservationStatusBooked).Scan(&n)
	return n, err
}

func (r *reservationRepository) UpdateStatus(ctx context.Context, id string, status domain.ReservationStatus) error {
	query := `UPDATE reservations SET status = $1, updated_at = now() WHERE id = $2`
	result, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(result, fmt.Errorf("reservation %s: %w", id, domain.ErrReservationNotFound))
}

func (r *reservationRepository) List(ctx context.Context, filter repository.ReservationFilter) ([]domain.Reservation, error) {
	var conds []string
	var args []interface{}
	argIdx := 1
	if filter.Status != "" {
		conds = append(conds, fmt.Sprintf("status = $%d", argIdx))
		args = append(args, filter.Status)
		argIdx++
	}
	if filter.UserID != "" {
		conds = append(conds, fmt.Sprintf("user_id = $%d", argIdx))
		args = append(args, filter.UserID)
		argIdx++
	}
	if filter.SpaceID != "" {
		conds = append(conds, fmt.Sprintf("space_id = $%d", argIdx))
		args = append(args, filter.SpaceID)
		argIdx++
	}
	if filter.EndedBefore != nil {
		conds = append(conds, fmt.Sprintf("end_time < $%d", argIdx))
		args = append(args, *filter.EndedBefore)
	}

	query := `SELECT ` + reservationColumns + ` FROM reservations`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY start_time, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []domain.Reservation
	for rows.Next() {
		var res domain.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.SpaceID, &res.StartTime, &res.EndTime,
			&res.Status, &res.CreatedAt, &res.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, res)
	}
	return list, rows.Err()
}
