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

// Amounts are NUMERIC(10,2) in the table and integer cents in Go.
const paymentSelect = `SELECT p.id, p.reservation_id, (p.amount * 100)::bigint, p.status, p.created_at, p.paid_at,
       r.user_id, r.space_id, r.start_time, r.end_time
FROM payments p
JOIN reservations r ON r.id = p.reservation_id`

type paymentRepository struct {
	db DBTX
}

func NewPaymentRepository(db DBTX) repository.PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, p *domain.Payment) error {
	logger.EnterMethod("paymentRepository.Create", "reservationID", p.ReservationID)
	seq, err := nextSequenceValue(ctx, r.db, "payment_id_seq")
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err)
		return fmt.Errorf("failed to allocate payment id: %w", err)
	}
	p.ID = domain.FormatID(domain.PaymentIDPrefix, seq)

	query := `INSERT INTO payments (id, reservation_id, amount, status, created_at)
	          VALUES ($1, $2, $3::numeric / 100, $4, $5)`
	_, err = r.db.ExecContext(ctx, query, p.ID, p.ReservationID, p.Amount.Cents(), p.Status, p.CreatedAt)
	if err != nil {
		logger.ExitMethodWithError("paymentRepository.Create", err)
		switch pqCode(err) {
		case codeUniqueViolation:
			return fmt.Errorf("reservation %s already billed: %w", p.ReservationID, domain.ErrReservationAlreadyClosed)
		case codeNumericOutOfRange:
			return fmt.Errorf("amount %s out of range for reservation %s: %w", p.Amount, p.ReservationID, domain.ErrInvalidInterval)
		}
		return err
	}
	logger.ExitMethod("paymentRepository.Create", "paymentID", p.ID, "amount", p.Amount.String())
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getOne(ctx, paymentSelect+` WHERE p.id = $1`, id)
}

func (r *paymentRepository) LockByID(ctx context.Context, id string) (*domain.Payment, error) {
	return r.getOne(ctx, paymentSelect+` WHERE p.id = $1 FOR UPDATE OF p`, id)
}

func (r *paymentRepository) getOne(ctx context.Context, query, id string) (*domain.Payment, error) {
	p, err := scanPayment(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("payment %s: %w", id, domain.ErrPaymentNotFound)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPayment(row rowScanner) (*domain.Payment, error) {
	p := &domain.Payment{}
	var cents int64
	err := row.Scan(&p.ID, &p.ReservationID, &cents, &p.Status, &p.CreatedAt, &p.PaidAt,
		&p.UserID, &p.SpaceID, &p.StartTime, &p.EndTime)
	if err != nil {
		return nil, err
	}
	p.Amount = domain.Money(cents)
	return p, nil
}

// MarkPaid is the only update ever applied to a payment row.
func (r *paymentRepository) MarkPaid(ctx context.Context, id string, paidAt time.Time) error {
	query := `UPDATE payments SET status = $1, paid_at = $2 WHERE id = $3 AND status = $4`
	logger.DatabaseCall("UPDATE", "payments", "id", id)
	res, err := r.db.ExecContext(ctx, query, domain.PaymentStatusPaid, paidAt, id, domain.PaymentStatusPending)
	if err != nil {
		logger.DatabaseResult("UPDATE", 0, err, "table", "payments")
		return err
	}
	return expectOneRow(res, fmt.Errorf("payment %s: %w", id, domain.ErrPaymentNotPending))
}

// CountPendingByUser follows payment -> reservation -> user.
func (r *paymentRepository) CountPendingByUser(ctx context.Context, userID string) (int, error) {
	query := `SELECT COUNT(*) FROM payments p
	          JOIN reservations r ON r.id = p.reservation_id
	          WHERE r.user_id = $1 AND p.status = $2`
	var n int
	err := r.db.QueryRowContext(ctx, query, userID, domain.PaymentStatusPending).Scan(&n)
	return n, err
}

func (r *paymentRepository) List(ctx context.Context, filter repository.PaymentFilter) ([]domain.Payment, error) {
	var conds []string
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("r.user_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("p.status = $%d", len(args)))
	}

	query := paymentSelect
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY p.created_at, p.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []domain.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, *p)
	}
	return payments, rows.Err()
}
