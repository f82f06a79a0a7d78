package services

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"socialfeed/internal/models"
	"socialfeed/internal/store"
	"socialfeed/internal/utils"
)

// AuthService owns registration and credential checks.
type AuthService struct {
	users  *store.Collection[models.User]
	logger *zap.Logger
}

type RegisterInput struct {
	Username        string
	Password        string
	ConfirmPassword string
}

func NewAuthService(users *store.Collection[models.User], logger *zap.Logger) *AuthService {
	return &AuthService{users: users, logger: logger}
}

// Register validates the form, hashes the password and stores a new user.
// The uniqueness check and id assignment happen under the users lock.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username := strings.TrimSpace(in.Username)
	password := strings.TrimSpace(in.Password)
	confirm := strings.TrimSpace(in.ConfirmPassword)

	if username == "" || password == "" || confirm == "" {
		return nil, models.NewValidationError("All fields are required")
	}
	if password != confirm {
		return nil, models.NewValidationError("Passwords do not match")
	}
	if err := models.ValidateUsername(username); err != nil {
		return nil, err
	}

	hash, err := utils.HashPassword(password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	var created models.User
	err = s.users.Mutate(ctx, func(users []models.User) ([]models.User, error) {
		for _, u := range users {
			if u.Username == username {
				return nil, models.NewConflictError("Username already exists")
			}
		}
		created = models.User{
			ID:           store.NextUserID(users),
			Username:     username,
			PasswordHash: hash,
			CreatedAt:    models.Now(),
		}
		return append(users, created), nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Registered user", zap.Int("user_id", created.ID), zap.String("username", created.Username))
	return &created, nil
}

// Authenticate returns the user whose credentials match.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	password = strings.TrimSpace(password)
	if username == "" || password == "" {
		return nil, models.NewValidationError("Please enter both username and password")
	}

	user, found, err := s.users.FindByField(ctx, "username", username)
	if err != nil {
		return nil, err
	}
	if !found || !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, models.NewUnauthorizedError("Invalid username or password")
	}
	return &user, nil
}

func (s *AuthService) UserByID(ctx context.Context, id int) (*models.User, error) {
	user, found, err := s.users.Get(ctx, store.UserKey(id))
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.NewNotFoundError("User", id)
	}
	return &user, nil
}
