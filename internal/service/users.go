package service

import (
	"context"
	"fmt"
	"strings"

	"theater/internal/apperrors"
	"theater/internal/auth"
	"theater/internal/models"
)

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}

type UserService struct {
	users      UserStore
	tokens     *auth.TokenIssuer
	bcryptCost int
}

func NewUserService(users UserStore, tokens *auth.TokenIssuer, bcryptCost int) *UserService {
	return &UserService{users: users, tokens: tokens, bcryptCost: bcryptCost}
}

func (s *UserService) Register(ctx context.Context, req models.RegisterUserRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		Email:        strings.TrimSpace(req.Email),
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// CreateStaff registers an admin account; used by the seed command
func (s *UserService) CreateStaff(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := auth.HashPassword(password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{Email: email, PasswordHash: hash, IsStaff: true, IsActive: true}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create staff user: %w", err)
	}
	return user, nil
}

func (s *UserService) IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error) {
	user, err := s.AuthenticateBasic(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	token, exp, err := s.tokens.Issue(user.ID, user.IsStaff)
	if err != nil {
		return nil, err
	}
	return &models.TokenResponse{Access: token, ExpiresAt: exp}, nil
}

// AuthenticateBasic checks email and password of an active user
func (s *UserService) AuthenticateBasic(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive || !auth.VerifyPassword(user.PasswordHash, password) {
		return nil, fmt.Errorf("invalid credentials: %w", apperrors.ErrUnauthorized)
	}
	return user, nil
}

// AuthenticateToken resolves the active user a bearer token was issued to
func (s *UserService) AuthenticateToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUnauthorized, err)
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", apperrors.ErrUnauthorized)
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil || !user.IsActive {
		return nil, fmt.Errorf("inactive or missing user: %w", apperrors.ErrUnauthorized)
	}
	return user, nil
}
