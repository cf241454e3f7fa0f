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

const spaceColumns = "id, location, priority, status, created_at"

type spaceRepository struct {
	db DBTX
}

func NewSpaceRepository(db DBTX) repository.SpaceRepository {
	return &spaceRepository{db: db}
}

// Create registers a space. New spaces always start Available.
func (r *spaceRepository) Create(ctx context.Context, space *domain.Space) error {
	space.Status = domain.SpaceStatusAvailable
	query := `INSERT INTO parking_spaces (id, location, priority, status, created_at)
	          VALUES ($1, $2, $3, $4, $5)`
	logger.DatabaseCall("INSERT", "parking_spaces", "id", space.ID)
	_, err := r.db.ExecContext(ctx, query, space.ID, space.Location, space.Priority, space.Status, space.CreatedAt)
	if err != nil {
		logger.DatabaseResult("INSERT", 0, err, "table", "parking_spaces")
		if pqCode(err) == codeUniqueViolation {
			return fmt.Errorf("space %s: %w", space.ID, domain.ErrAlreadyExists)
		}
		return err
	}
	logger.DatabaseResult("INSERT", 1, nil, "table", "parking_spaces")
	return nil
}

func (r *spaceRepository) GetByID(ctx context.Context, id string) (*domain.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces WHERE id = $1`
	return r.getOne(ctx, query, id)
}

func (r *spaceRepository) LockByID(ctx context.Context, id string) (*domain.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces WHERE id = $1 FOR UPDATE`
	return r.getOne(ctx, query, id)
}

func (r *spaceRepository) getOne(ctx context.Context, query, id string) (*domain.Space, error) {
	s := &domain.Space{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&s.ID, &s.Location, &s.Priority, &s.Status, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("space %s: %w", id, domain.ErrSpaceNotFound)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// List returns spaces ordered by priority then id. An empty status returns all spaces.
func (r *spaceRepository) List(ctx context.Context, status domain.SpaceStatus) ([]domain.Space, error) {
	query := `SELECT ` + spaceColumns + ` FROM parking_spaces`
	var args []interface{}
	if status != "" {
		query += ` WHERE status = $1`
		args = append(args, status)
	}
	query += ` ORDER BY priority, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var spaces []domain.Space
	for rows.Next() {
		var s domain.Space
		if err := rows.Scan(&s.ID, &s.Location, &s.Priority, &s.Status, &s.CreatedAt); err != nil {
			return nil, err
		}
		spaces = append(spaces, s)
	}
	return spaces, rows.Err()
}

func (r *spaceRepository) UpdateStatus(ctx context.Context, id string, status domain.SpaceStatus) error {
	query := `UPDATE parking_spaces SET status = $1 WHERE id = $2`
	res, err := r.db.ExecContext(ctx, query, status, id)
	if err != nil {
		return err
	}
	return expectOneRow(res, fmt.Errorf("space %s: %w", id, domain.ErrSpaceNotFound))
}
