package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"smartparking-backend/internal/domain"
	"smartparking-backend/internal/events"
	"smartparking-backend/internal/logger"
	"smartparking-backend/internal/repository"
)

type userService struct {
	tx        repository.Transactor
	publisher EventPublisher
}

func NewUserService(tx repository.Transactor, publisher EventPublisher) UserService {
	return &userService{
		tx:        tx,
		publisher: orNoopPublisher(publisher),
	}
}

func normalizeUser(user *domain.User) error {
	user.ID = domain.NormalizeID(user.ID)
	user.FirstName = strings.TrimSpace(user.FirstName)
	user.LastName = strings.TrimSpace(user.LastName)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.PhoneNumber = strings.TrimSpace(user.PhoneNumber)
	user.VehicleNumber = strings.ToUpper(strings.TrimSpace(user.VehicleNumber))

	switch {
	case user.ID == "":
		return fmt.Errorf("user id is required: %w", domain.ErrInvalidInput)
	case user.FirstName == "" || user.LastName == "":
		return fmt.Errorf("first and last name are required: %w", domain.ErrInvalidInput)
	case user.VehicleNumber == "":
		return fmt.Errorf("vehicle number is required: %w", domain.ErrInvalidInput)
	case !user.Type.Valid():
		return fmt.Errorf("unknown user type %q: %w", user.Type, domain.ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(user.Email); err != nil {
		return fmt.Errorf("invalid email %q: %w", user.Email, domain.ErrInvalidInput)
	}
	return nil
}

// CreateUser registers an Active user.
func (s *userService) CreateUser(ctx context.Context, user *domain.User) error {
	if err := normalizeUser(user); err != nil {
		return err
	}
	now := time.Now().UTC()
	user.Status = domain.UserStatusActive
	user.CreatedAt = now
	user.UpdatedAt = now

	return s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Users.Create(ctx, user)
	})
}

func (s *userService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.GetByID(ctx, domain.NormalizeID(id))
		return err
	})
	return user, err
}

// UpdateUser changes profile fields only. Status is changed through
// DeactivateUser and ReactivateUser.
func (s *userService) UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error) {
	if err := normalizeUser(user); err != nil {
		return nil, err
	}
	user.UpdatedAt = time.Now().UTC()

	var updated *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		if err := repos.Users.UpdateProfile(ctx, user); err != nil {
			return err
		}
		var err error
		updated, err = repos.Users.GetByID(ctx, user.ID)
		return err
	})
	return updated, err
}

func (s *userService) DeleteUser(ctx context.Context, id string) error {
	id = domain.NormalizeID(id)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		return repos.Users.Delete(ctx, id)
	})
	if err == nil {
		logger.Info("User deleted", "userID", id)
	}
	return err
}

// DeactivateUser locks the user exclusively so no booking or release for the
// user is in flight while the pending payments are counted. Deactivating an
// inactive user is a no-op.
func (s *userService) DeactivateUser(ctx context.Context, id string) (*domain.User, error) {
	id = domain.NormalizeID(id)
	logger.EnterMethod("userService.DeactivateUser", "userID", id)

	var (
		user    *domain.User
		changed bool
	)
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.LockByID(ctx, id, true)
		if err != nil {
			return err
		}
		changed = false
		if !user.IsActive() {
			return nil
		}
		if err := checkDeactivationAllowed(ctx, repos.Payments, id); err != nil {
			return err
		}
		if err := repos.Users.UpdateStatus(ctx, id, domain.UserStatusInactive); err != nil {
			return err
		}
		user.Status = domain.UserStatusInactive
		changed = true
		return nil
	})
	if err != nil {
		logger.ExitMethodWithError("userService.DeactivateUser", err, "userID", id)
		return nil, err
	}

	if changed {
		publish(ctx, s.publisher, events.New(events.TypeUserDeactivated, id, user))
		logger.Info("User deactivated", "userID", id)
	}
	logger.ExitMethod("userService.DeactivateUser", "userID", id, "changed", changed)
	return user, nil
}

func (s *userService) ReactivateUser(ctx context.Context, id string) (*domain.User, error) {
	id = domain.NormalizeID(id)
	var user *domain.User
	err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		user, err = repos.Users.LockByID(ctx, id, true)
		if err != nil {
			return err
		}
		if user.IsActive() {
			return nil
		}
		if err := repos.Users.UpdateStatus(ctx, id, domain.UserStatusActive); err != nil {
			return err
		}
		user.Status = domain.UserStatusActive
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
