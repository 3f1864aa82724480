package service

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/harvesthub/marketplace/internal/auth"
	"github.com/harvesthub/marketplace/internal/domain"
	"github.com/harvesthub/marketplace/internal/repository"
	"github.com/harvesthub/marketplace/pkg/errors"
)

const invalidCredentials = "Invalid email or password"

// AuthService registers customers and exchanges credentials for tokens
type AuthService struct {
	repos  *repository.Repositories
	tokens *auth.TokenManager
	logger *zap.Logger
}

// NewAuthService creates a new auth service
func NewAuthService(repos *repository.Repositories, tokens *auth.TokenManager, logger *zap.Logger) *AuthService {
	return &AuthService{
		repos:  repos,
		tokens: tokens,
		logger: logger,
	}
}

// Register creates a CUSTOMER account and signs it in
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResult, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hashed := string(hash)

	user := &domain.User{
		Email:        normalizeEmail(req.Email),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: &hashed,
		Role:         domain.UserRoleCustomer,
	}
	if err := s.repos.User.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered", zap.String("user_id", user.ID.String()))
	return s.signIn(user)
}

// Login verifies the password and issues a token
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	if err := validateStruct(&req); err != nil {
		return nil, err
	}

	user, err := s.repos.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if isNotFound(err) {
			return nil, &errors.ErrUnauthorized{Message: invalidCredentials}
		}
		return nil, err
	}
	if user.PasswordHash == nil || bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)) != nil {
		s.logger.Debug("Password verification failed", zap.String("user_id", user.ID.String()))
		return nil, &errors.ErrUnauthorized{Message: invalidCredentials}
	}

	return s.signIn(user)
}

func (s *AuthService) signIn(user *domain.User) (*AuthResult, error) {
	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, User: user}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
