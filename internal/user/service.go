package user

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/tryDmitriyCatch/crypto-api/internal/domain"
)

// Service implements user account management on top of a Repository.
type Service struct {
	repo Repository
}

// NewService creates a new user service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Register creates a user with a freshly generated API token and a hashed
// password. The token is the caller's only credential for subsequent requests.
func (s *Service) Register(ctx context.Context, name, surname, email, password string) (domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing password: %w", err)
	}

	u := domain.User{
		Token:        uuid.NewString(),
		Name:         name,
		Surname:      surname,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// GetByToken resolves the user owning the given API token.
func (s *Service) GetByToken(ctx context.Context, token string) (domain.User, error) {
	return s.repo.FindByToken(ctx, token)
}

// Update replaces the user's profile fields. A non-empty password is
// re-hashed; an empty one leaves the stored hash untouched.
func (s *Service) Update(ctx context.Context, u domain.User, name, surname, email, password string) (domain.User, error) {
	u.Name = name
	u.Surname = surname
	u.Email = email
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hashing password: %w", err)
		}
		u.PasswordHash = string(hash)
	}

	if err := s.repo.Update(ctx, u); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// Delete removes the user and, through the schema's cascade, their assets.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
