package admin

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Repository is the slice of persistence the service needs.
type Repository interface {
	DashboardStats(ctx context.Context) (*Stats, error)
	InsertAstrologer(ctx context.Context, a *Astrologer) error
	UpdateAstrologer(ctx context.Context, a *Astrologer) error
	DeleteAstrologer(ctx context.Context, id string) error
	AstrologerByID(ctx context.Context, id string) (*Astrologer, error)
	ListAstrologers(ctx context.Context) ([]*Astrologer, error)
	PurgeUser(ctx context.Context, userID string) error
	LedgerConsistency(ctx context.Context) (*ConsistencyReport, error)
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

func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	return s.repo.DashboardStats(ctx)
}

func (s *Service) CreateAstrologer(ctx context.Context, a *Astrologer) (*Astrologer, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if a.PricePerSession < 0 {
		return nil, fmt.Errorf("price_per_session cannot be negative")
	}

	a.ID = uuid.NewString()
	a.IsActive = true
	a.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertAstrologer(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("astrologer added", "astrologer_id", a.ID, "name", a.Name)
	return a, nil
}

func (s *Service) UpdateAstrologer(ctx context.Context, a *Astrologer) (*Astrologer, error) {
	if strings.TrimSpace(a.Name) == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.repo.UpdateAstrologer(ctx, a); err != nil {
		return nil, err
	}
	return s.repo.AstrologerByID(ctx, a.ID)
}

func (s *Service) DeleteAstrologer(ctx context.Context, id string) error {
	if err := s.repo.DeleteAstrologer(ctx, id); err != nil {
		return err
	}
	s.logger.Info("astrologer removed", "astrologer_id", id)
	return nil
}

func (s *Service) ListAstrologers(ctx context.Context) ([]*Astrologer, error) {
	return s.repo.ListAstrologers(ctx)
}

// PurgeUser removes an account and everything hanging off it.
func (s *Service) PurgeUser(ctx context.Context, userID string) error {
	if err := s.repo.PurgeUser(ctx, userID); err != nil {
		return err
	}
	s.logger.Warn("user purged", "user_id", userID)
	return nil
}

func (s *Service) LedgerConsistency(ctx context.Context) (*ConsistencyReport, error) {
	report, err := s.repo.LedgerConsistency(ctx)
	if err != nil {
		return nil, err
	}
	if !report.Consistent {
		s.logger.Error("ledger inconsistency detected", "mismatches", len(report.Mismatches))
	}
	return report, nil
}
