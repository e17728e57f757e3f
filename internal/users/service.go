// Package users covers signup, authentication and profile lookup. The
// statement engine never talks to this package; it only shares the user
// store through the directory interface.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/CaioWF/ignite-finapi/internal/auth"
	"github.com/CaioWF/ignite-finapi/internal/interfaces"
	"github.com/CaioWF/ignite-finapi/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Session is the result of a successful authentication.
type Session struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

type Service struct {
	store  interfaces.UserStore
	tokens *auth.TokenManager
	logger *zap.Logger
}

func NewService(store interfaces.UserStore, tokens *auth.TokenManager, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, tokens: tokens, logger: logger}
}

// SignUp registers a new user with a bcrypt-hashed password. Emails are
// normalized to lower case and must be unique.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (models.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if name == "" || email == "" || password == "" {
		return models.User{}, fmt.Errorf("%w: name, email and password are required", models.ErrInvalidOperation)
	}

	if _, err := s.store.FindByEmail(ctx, email); err == nil {
		return models.User{}, models.ErrEmailTaken
	} else if !errors.Is(err, models.ErrUserNotFound) {
		return models.User{}, fmt.Errorf("checking email availability: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("hashing password: %w", err)
	}

	now := time.Now().UTC()
	user := models.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  string(hash),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return models.User{}, err
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Authenticate checks the credentials and returns the user with a signed
// session token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return Session{}, models.ErrInvalidCredentials
		}
		return Session{}, fmt.Errorf("looking up user by email: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return Session{}, models.ErrInvalidCredentials
	}

	token, err := s.tokens.Sign(user.ID)
	if err != nil {
		return Session{}, fmt.Errorf("signing session token: %w", err)
	}

	s.logger.Info("user authenticated", zap.String("user_id", user.ID))
	return Session{User: user, Token: token}, nil
}

// Profile returns the user record for an authenticated id.
func (s *Service) Profile(ctx context.Context, id string) (models.User, error) {
	return s.store.FindByID(ctx, id)
}
