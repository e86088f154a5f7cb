package booking

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
	InsertBooking(ctx context.Context, b *Booking) error
	BookingByID(ctx context.Context, id string) (*Booking, error)
	BookingsByUser(ctx context.Context, userID string) ([]*Booking, error)
	InsertYogaClassBooking(ctx context.Context, b *YogaClassBooking) error
	InsertYogaPackagePurchase(ctx context.Context, p *YogaPackagePurchase) error
	InsertYogaConsultation(ctx context.Context, c *YogaConsultation) error
	YogaActivityByUser(ctx context.Context, userID string) (*YogaActivity, error)
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

// CreateBooking records an astrology session in pending status. Payment
// happens separately through the wallet, which flips the status to paid.
func (s *Service) CreateBooking(ctx context.Context, b *Booking) (*Booking, error) {
	switch {
	case b.UserID == "":
		return nil, fmt.Errorf("user_id is required")
	case b.AstrologerID == "" || strings.TrimSpace(b.AstrologerName) == "":
		return nil, fmt.Errorf("astrologer is required")
	case strings.TrimSpace(b.ServiceName) == "":
		return nil, fmt.Errorf("service_name is required")
	case b.ServicePrice <= 0:
		return nil, fmt.Errorf("service_price must be positive")
	case b.BookingDate == "" || b.BookingTime == "":
		return nil, fmt.Errorf("booking date and time are required")
	}

	b.ID = uuid.NewString()
	b.Status = StatusPending
	b.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertBooking(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("astrology booking created",
		"booking_id", b.ID, "user_id", b.UserID, "astrologer", b.AstrologerName)
	return b, nil
}

func (s *Service) GetBooking(ctx context.Context, id string) (*Booking, error) {
	return s.repo.BookingByID(ctx, id)
}

func (s *Service) ListUserBookings(ctx context.Context, userID string) ([]*Booking, error) {
	return s.repo.BookingsByUser(ctx, userID)
}

func (s *Service) CreateYogaClassBooking(ctx context.Context, b *YogaClassBooking) (*YogaClassBooking, error) {
	if b.UserID == "" || strings.TrimSpace(b.ClassName) == "" {
		return nil, fmt.Errorf("user_id and class_name are required")
	}
	if b.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}

	b.ID = uuid.NewString()
	b.Status = StatusPending
	b.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertYogaClassBooking(ctx, b); err != nil {
		return nil, err
	}

	s.logger.Info("yoga class booked", "booking_id", b.ID, "user_id", b.UserID, "class", b.ClassName)
	return b, nil
}

func (s *Service) CreateYogaPackagePurchase(ctx context.Context, p *YogaPackagePurchase) (*YogaPackagePurchase, error) {
	if p.UserID == "" || strings.TrimSpace(p.PackageName) == "" {
		return nil, fmt.Errorf("user_id and package_name are required")
	}
	if p.Price <= 0 {
		return nil, fmt.Errorf("price must be positive")
	}
	if p.Mode == "" {
		p.Mode = "Online"
	}

	p.ID = uuid.NewString()
	p.Status = StatusPending
	p.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertYogaPackagePurchase(ctx, p); err != nil {
		return nil, err
	}

	s.logger.Info("yoga package purchased", "purchase_id", p.ID, "user_id", p.UserID, "package", p.PackageName)
	return p, nil
}

func (s *Service) CreateYogaConsultation(ctx context.Context, c *YogaConsultation) (*YogaConsultation, error) {
	if c.UserID == "" || strings.TrimSpace(c.YogaGoal) == "" {
		return nil, fmt.Errorf("user_id and yoga_goal are required")
	}

	c.ID = uuid.NewString()
	c.Status = StatusPending
	c.CreatedAt = time.Now().UTC()
	if err := s.repo.InsertYogaConsultation(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("yoga consultation requested", "consultation_id", c.ID, "user_id", c.UserID)
	return c, nil
}

func (s *Service) ListUserYogaActivity(ctx context.Context, userID string) (*YogaActivity, error) {
	return s.repo.YogaActivityByUser(ctx, userID)
}
