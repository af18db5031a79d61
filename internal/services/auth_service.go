package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/stwalsh4118/valuator/api/internal/logger"
	"github.com/stwalsh4118/valuator/api/internal/models"
	"github.com/stwalsh4118/valuator/api/internal/repository"
)

// AuthService registers appraisers and checks their credentials.
type AuthService interface {
	// Register stores a new user with a bcrypt-hashed password.
	// Returns ErrUsernameTaken when the username exists and
	// ErrInvalidRegistration when either field is blank.
	Register(ctx context.Context, username, password string) (*models.User, error)

	// Validate checks a username/password pair.
	// Returns ErrInvalidCredentials for unknown users and wrong passwords alike.
	Validate(ctx context.Context, username, password string) (*models.User, error)
}

type authService struct {
	repo repository.UserRepository
	log  *logger.Logger
	cost int
}

// NewAuthService creates an AuthService using bcrypt.DefaultCost.
func NewAuthService(repo repository.UserRepository, log *logger.Logger) AuthService {
	return newAuthService(repo, log, bcrypt.DefaultCost)
}

func newAuthService(repo repository.UserRepository, log *logger.Logger, cost int) *authService {
	return &authService{repo: repo, log: log.WithComponent("auth"), cost: cost}
}

func (s *authService) Register(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrInvalidRegistration)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.repo.Create(ctx, username, string(hash))
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) {
			s.log.Info("Registration rejected, username taken", logger.Fields{"username": username})
			return nil, ErrUsernameTaken
		}
		s.log.Error("Failed to create user", err, logger.Fields{"username": username})
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.Info("User registered", logger.Fields{"username": username, "user_id": id})
	return &models.User{ID: id, Username: username, PasswordHash: string(hash)}, nil
}

func (s *authService) Validate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		s.log.Error("Failed to load user", err, logger.Fields{"username": username})
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		s.log.Info("Login failed, unknown user", logger.Fields{"username": username})
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.log.Info("Login failed, password mismatch", logger.Fields{"username": username})
		return nil, ErrInvalidCredentials
	}

	return user, nil
}
