package user

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Repository is the slice of persistence the service needs.
type Repository interface {
	Insert(ctx context.Context, u *User) error
	ByID(ctx context.Context, id string) (*User, error)
	ByEmail(ctx context.Context, email string) (*User, error)
}

type Service struct {
	repo   Repository
	logger *slog.Logger
}

func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// SignupRequest carries a registration. The birth-detail fields are optional
// and only used by the astrology side.
type SignupRequest struct {
	FullName    string
	Email       string
	Phone       string
	Password    string
	Gender      string
	DateOfBirth string
	TimeOfBirth string
	Location    string
}

func (r *SignupRequest) validate() error {
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("full_name is required")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("invalid email address")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone is required")
	}
	if len(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}
	return nil
}

// Signup registers a new account with a zero wallet balance.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*Profile, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &User{
		ID:           uuid.NewString(),
		FullName:     strings.TrimSpace(req.FullName),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Gender:       req.Gender,
		DateOfBirth:  req.DateOfBirth,
		TimeOfBirth:  req.TimeOfBirth,
		Location:     req.Location,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Insert(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID, "email", u.Email)
	return u.Profile(), nil
}

// Login checks credentials and returns the profile. The caller never learns
// whether the email or the password was wrong.
func (s *Service) Login(ctx context.Context, email, password string) (*Profile, error) {
	u, err := s.repo.ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if err == ErrNotFound {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		s.logger.Warn("login rejected", "email", email)
		return nil, ErrInvalidCredentials
	}
	return u.Profile(), nil
}

// Get returns the profile for id.
func (s *Service) Get(ctx context.Context, id string) (*Profile, error) {
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return u.Profile(), nil
}
