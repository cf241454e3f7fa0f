package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/repository"
)

func testOptions() Options {
	return Options{MaxAttempts: 3, LockTimeout: 2 * time.Second, RetryBackoff: time.Millisecond}
}

func TestStore_WithinTx(t *testing.T) {
	t.Run("Commit", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("SET LOCAL lock_timeout = '2000ms'").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("UPDATE parking_spaces SET status").
			WithArgs(domain.SpaceStatusOccupied, "A1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		store := NewStore(db, testOptions())
		err = store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			return repos.Spaces.UpdateStatus(ctx, "A1", domain.SpaceStatusOccupied)
		})
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RollbackOnError", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectRollback()

		store := NewStore(db, testOptions())
		calls := 0
		err = store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			calls++
			return domain.ErrSpaceUnavailable
		})
		assert.ErrorIs(t, err, domain.ErrSpaceUnavailable)
		assert.Equal(t, 1, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("RetryOnDeadlock", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		mock.ExpectBegin()
		mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("UPDATE parking_spaces SET status").
			WillReturnError(&pq.Error{Code: codeDeadlockDetected})
		mock.ExpectRollback()
		mock.ExpectBegin()
		mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("UPDATE parking_spaces SET status").WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		store := NewStore(db, testOptions())
		calls := 0
		err = store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			calls++
			return repos.Spaces.UpdateStatus(ctx, "A1", domain.SpaceStatusOccupied)
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("GivesUpAfterMaxAttempts", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		for i := 0; i < 2; i++ {
			mock.ExpectBegin()
			mock.ExpectExec("SET LOCAL lock_timeout").WillReturnResult(sqlmock.NewResult(0, 0))
			mock.ExpectRollback()
		}

		opts := testOptions()
		opts.MaxAttempts = 2
		store := NewStore(db, opts)
		err = store.WithinTx(context.Background(), func(ctx context.Context, repos repository.Repositories) error {
			return &pq.Error{Code: codeLockNotAvailable}
		})
		require.Error(t, err)
		assert.True(t, isRetryable(err))
		assert.Contains(t, err.Error(), "after 2 attempts")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, isRetryable(&pq.Error{Code: codeSerializationFailure}))
	assert.True(t, isRetryable(&pq.Error{Code: codeDeadlockDetected}))
	assert.True(t, isRetryable(&pq.Error{Code: codeLockNotAvailable}))
	assert.False(t, isRetryable(&pq.Error{Code: codeUniqueViolation}))
	assert.False(t, isRetryable(errors.New("boom")))
}
