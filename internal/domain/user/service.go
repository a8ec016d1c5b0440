package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/domain"
	"github.com/example/storefront/internal/infrastructure/store"
	"go.uber.org/zap"
)

var (
	ErrInvalidCredentials = fmt.Errorf("%w: invalid credentials", domain.ErrUnauthorized)
	ErrUserExists         = fmt.Errorf("%w: user already exists", domain.ErrValidation)
)

// Service handles user registration and login
type Service struct {
	store  store.UserStore
	logger *zap.Logger
}

// NewService creates a new user service
func NewService(us store.UserStore, logger *zap.Logger) *Service {
	return &Service{store: us, logger: logger.Named("user")}
}

// validationError classifies auth package input errors as validation failures
func validationError(err error) error {
	return fmt.Errorf("%w: %s", domain.ErrValidation, err.Error())
}

// Register creates a user with a normalized phone and a bcrypt password hash
func (s *Service) Register(ctx context.Context, phone, password, confirmPassword string) (*domain.User, error) {
	normalized, err := auth.NormalizePhone(phone)
	if err != nil {
		return nil, validationError(err)
	}
	if err := auth.ValidateNewPassword(password, confirmPassword); err != nil {
		return nil, validationError(err)
	}

	if _, err := s.store.GetByPhone(ctx, normalized); err == nil {
		return nil, ErrUserExists
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u, err := s.store.Create(ctx, normalized, hash)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	s.logger.Info("user registered", zap.Int64("user_id", u.ID))
	return u, nil
}

// Authenticate verifies phone and password
func (s *Service) Authenticate(ctx context.Context, phone, password string) (*domain.User, error) {
	normalized, err := auth.NormalizePhone(phone)
	if err != nil {
		return nil, validationError(err)
	}

	u, err := s.store.GetByPhone(ctx, normalized)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
