package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"rfpflow/internal/apperr"
	"rfpflow/internal/model"
	"rfpflow/internal/util"
)

// UserStore is the persistence surface AuthService needs.
type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

type AuthService struct {
	users     UserStore
	jwtSecret string
}

func NewAuthService(users UserStore, jwtSecret string) *AuthService {
	return &AuthService{
		users:     users,
		jwtSecret: jwtSecret,
	}
}

// Register creates a new user.
func (s *AuthService) Register(ctx context.Context, email, password string) (*model.User, error) {
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Duplicate("email already exists")
	}

	hash, err := util.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, apperr.FromDB(err, "user")
	}
	return u, nil
}

// Login checks user credentials and returns a JWT.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", apperr.Validation("invalid email or password")
	}

	if !util.CheckPassword(password, u.PasswordHash) {
		return "", apperr.Validation("invalid email or password")
	}

	return util.GenerateJWT(u.ID, s.jwtSecret)
}
