package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
)

const userColumns = "id, first_name, last_name, email, phone_num, vehicle_no, user_type, status, created_at, updated_at"

type userRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	logger.EnterMethod("userRepository.Create", "userID", user.ID)
	query := `INSERT INTO users (` + userColumns + `)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, query,
		user.ID, user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.VehicleNumber,
		user.Type, user.Status, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		logger.ExitMethodWithError("userRepository.Create", err, "userID", user.ID)
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("user %s: %w", user.ID, domain.ErrAlreadyExists)
		}
		return err
	}
	logger.ExitMethod("userRepository.Create", "userID", user.ID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *userRepository) LockByID(ctx context.Context, id string, exclusive bool) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	if exclusive {
		query += ` FOR UPDATE`
	} else {
		query += ` FOR SHARE`
	}
	return r.getOne(ctx, query, id)
}

func (r *userRepository) getOne(ctx context.Context, query, id string) (*domain.User, error) {
	u := &domain.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&u.ID, &u.FirstName, &u.LastName, &u.Email, &u.PhoneNumber, &u.VehicleNumber,
		&u.Type, &u.Status, &u.CreatedAt, &u.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

// UpdateProfile writes contact and vehicle details. Status changes go through UpdateStatus.
func (r *userRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	query := `UPDATE users
	          SET first_name = $1, last_name = $2, email = $3, phone_num = $4, vehicle_no = $5,
	              user_type = $6, updated_at = $7
	          WHERE id = $8`
	res, err := r.db.ExecContext(ctx, query,
		user.FirstName, user.LastName, user.Email, user.PhoneNumber, user.VehicleNumber,
		user.Type, user.UpdatedAt, user.ID)
	if err != nil {
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("email %s: %w", user.Email, domain.ErrAlreadyExists)
		}
		return err
	}
	return expectOneRow(res, fmt.Errorf("user %s: %w", user.ID, domain.ErrUserNotFound))
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	query := `UPDATE users SET status = $1, updated_at = now() WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound))
}

// Delete removes a user that owns no reservations or occupancy records.
func (r *userRepository) Delete(ctx context.Context, id string) error {
	logger.DatabaseCall("DELETE", "users", "id", id)
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.DatabaseResult("DELETE", 0, err, "table", "users")
		if pqCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("user %s: %w", id, domain.ErrUserHasHistory)
		}
		return err
	}
	return expectOneRow(res, fmt.Errorf("user %s: %w", id, domain.ErrUserNotFound))
}

func expectOneRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
