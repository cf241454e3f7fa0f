package postgres

import (
	"context"
	"fmt"
	"strings"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
)

type occupancyLogRepository struct {
	db DBTX
}

func NewOccupancyLogRepository(db DBTX) repository.OccupancyLogRepository {
	return &occupancyLogRepository{db: db}
}

func (r *occupancyLogRepository) Create(ctx context.Context, entry *domain.OccupancyLogEntry) error {
	seq, err := nextSequenceValue(ctx, r.db, "occupancy_log_id_seq")
	if err != nil {
		return fmt.Errorf("failed to allocate occupancy log id: %w", err)
	}
	entry.ID = domain.FormatID(domain.OccupancyLogIDPrefix, seq)

	query := `INSERT INTO occupancy_log (id, user_id, space_id, entry_time, exit_time, created_at)
	          VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID, entry.UserID, entry.SpaceID, entry.EntryTime, entry.ExitTime, entry.CreatedAt)
	return err
}

func (r *occupancyLogRepository) List(ctx context.Context, filter repository.OccupancyFilter) ([]domain.OccupancyLogEntry, error) {
	query := `SELECT id, user_id, space_id, entry_time, exit_time, created_at FROM occupancy_log`
	var conds []string
	var args []interface{}
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.SpaceID != "" {
		args = append(args, filter.SpaceID)
		conds = append(conds, fmt.Sprintf("space_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY entry_time, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.OccupancyLogEntry
	for rows.Next() {
		var e domain.OccupancyLogEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.SpaceID, &e.EntryTime, &e.ExitTime, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
