package users

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"resume-feedback/internal/shared/telemetry"
)

type Service struct {
	Repo      Repo
	HashCost  int
	validator *validator.Validate
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, HashCost: bcrypt.DefaultCost, validator: validator.New()}
}

// SignUpInput is the email/password registration form.
type SignUpInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"max=120"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// SignUp creates a password account.
func (s *Service) SignUp(ctx context.Context, in SignUpInput) (User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
	if err := s.validator.Struct(in); err != nil {
		return User{}, fmt.Errorf("%w: a valid email and a password of at least 8 characters are required", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.hashCost())
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	name := in.Name
	if name == "" {
		name = strings.SplitN(in.Email, "@", 2)[0]
	}
	user := User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		Name:         name,
		Provider:     ProviderPassword,
		PasswordHash: string(hash),
	}
	if err := s.Repo.Create(ctx, user); err != nil {
		return User{}, err
	}
	telemetry.Info("auth.signup", map[string]any{"user_id": user.ID})
	return s.Repo.GetByID(ctx, user.ID)
}

// SignIn checks a password and returns the account.
func (s *Service) SignIn(ctx context.Context, email, password string) (User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return User{}, ErrInvalidCredentials
	}
	user, err := s.Repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidCredentials
		}
		return User{}, err
	}
	if user.PasswordHash == "" {
		return User{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// UpsertFromAuth persists an identity from an external provider. An email
// already held by a different account is never linked and yields
// ErrAccountExists.
func (s *Service) UpsertFromAuth(ctx context.Context, user User) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if strings.TrimSpace(user.ID) == "" || user.Email == "" {
		return User{}, errors.New("user id and email are required")
	}

	existing, err := s.Repo.GetByEmail(ctx, user.Email)
	switch {
	case err == nil && existing.ID != user.ID:
		return User{}, ErrAccountExists
	case err != nil && !errors.Is(err, ErrNotFound):
		return User{}, err
	}

	if err := s.Repo.Upsert(ctx, user); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return User{}, ErrAccountExists
		}
		return User{}, err
	}
	return s.Repo.GetByID(ctx, user.ID)
}

func (s *Service) GetByID(ctx context.Context, userID string) (User, error) {
	if s == nil || s.Repo == nil {
		return User{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return User{}, errors.New("user id is required")
	}
	return s.Repo.GetByID(ctx, userID)
}

func (s *Service) hashCost() int {
	if s.HashCost < bcrypt.MinCost {
		return bcrypt.DefaultCost
	}
	return s.HashCost
}
