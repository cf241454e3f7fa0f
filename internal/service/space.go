package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
)

type spaceService struct {
	tx    repository.Transactor
	cache SpaceCache
}

func NewSpaceService(tx repository.Transactor, cache SpaceCache) SpaceService {
	return &spaceService{
		tx:    tx,
		cache: orNoopCache(cache),
	}
}

// CreateSpace registers a space. Its status starts Available and is never
// taken from the caller.
func (s *spaceService) CreateSpace(ctx context.Context, space *domain.Space) error {
	space.ID = domain.NormalizeID(space.ID)
	space.Location = strings.TrimSpace(space.Location)
	if space.ID == "" || space.Location == "" {
		return fmt.Errorf("space id and location are required: %w", domain.ErrInvalidInput)
	}
	if space.Priority < 0 {
		return fmt.Errorf("priority must not be negative: %w", domain.ErrInvalidInput)
	}
	space.CreatedAt = time.Now().UTC()

	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Spaces.Create(ctx, space)
	})
	if err != nil {
		return err
	}
	invalidateCache(ctx, s.cache)
	return nil
}

func (s *spaceService) GetSpace(ctx context.Context, id string) (*domain.Space, error) {
	var space *domain.Space
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		space, err = repos.Spaces.GetByID(ctx, domain.NormalizeID(id))
		return err
	})
	return space, err
}

func (s *spaceService) ListSpaces(ctx context.Context) ([]domain.Space, error) {
	return s.list(ctx, "")
}

func (s *spaceService) ListAvailableSpaces(ctx context.Context) ([]domain.Space, error) {
	spaces, ok, err := s.cache.GetAvailable(ctx)
	if err != nil {
		logger.Warn("Space cache read failed, falling back to store", "error", err)
	}
	if ok {
		return spaces, nil
	}

	// The generation is read before the store so a commit that lands in
	// between makes the fill below a no-op.
	gen, genErr := s.cache.Generation(ctx)
	if genErr != nil {
		logger.Warn("Space cache generation read failed, not caching", "error", genErr)
	}

	spaces, err = s.list(ctx, domain.SpaceStatusAvailable)
	if err != nil {
		return nil, err
	}
	if genErr == nil {
		stored, err := s.cache.SetAvailable(ctx, gen, spaces)
		if err != nil {
			logger.Warn("Failed to cache available spaces", "error", err)
		} else if !stored {
			logger.Debug("Space cache invalidated during listing, snapshot dropped", "generation", gen)
		}
	}
	return spaces, nil
}

func (s *spaceService) list(ctx context.Context, status domain.SpaceStatus) ([]domain.Space, error) {
	var spaces []domain.Space
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		spaces, err = repos.Spaces.List(ctx, status)
		return err
	})
	return spaces, err
}
