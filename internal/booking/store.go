package booking

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists bookings in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) InsertBooking(ctx context.Context, b *Booking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO bookings (id, user_id, astrologer_id, astrologer_name,
			astrologer_expertise, astrologer_experience, astrologer_languages,
			service_name, service_duration, service_price,
			booking_date, booking_time, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		b.ID, b.UserID, b.AstrologerID, b.AstrologerName,
		b.AstrologerExpertise, b.AstrologerExperience, b.AstrologerLanguages,
		b.ServiceName, b.ServiceDuration, b.ServicePrice,
		b.BookingDate, b.BookingTime, b.Status, b.CreatedAt)
	return err
}

const bookingColumns = `id, user_id, astrologer_id, astrologer_name,
	astrologer_expertise, astrologer_experience, astrologer_languages,
	service_name, service_duration, service_price,
	booking_date, booking_time, status, created_at`

func scanBooking(row pgx.Row) (*Booking, error) {
	var b Booking
	err := row.Scan(
		&b.ID, &b.UserID, &b.AstrologerID, &b.AstrologerName,
		&b.AstrologerExpertise, &b.AstrologerExperience, &b.AstrologerLanguages,
		&b.ServiceName, &b.ServiceDuration, &b.ServicePrice,
		&b.BookingDate, &b.BookingTime, &b.Status, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) BookingByID(ctx context.Context, id string) (*Booking, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	return scanBooking(row)
}

func (s *Store) BookingsByUser(ctx context.Context, userID string) ([]*Booking, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) InsertYogaClassBooking(ctx context.Context, b *YogaClassBooking) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO yoga_class_bookings (id, user_id, class_name, class_time,
			class_date, guru_name, price, credits, level, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		b.ID, b.UserID, b.ClassName, b.ClassTime,
		b.ClassDate, b.GuruName, b.Price, b.Credits, b.Level, b.Status, b.CreatedAt)
	return err
}

func (s *Store) InsertYogaPackagePurchase(ctx context.Context, p *YogaPackagePurchase) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO yoga_package_purchases (id, user_id, package_name, price,
			credits, validity, mode, session_type, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.UserID, p.PackageName, p.Price,
		p.Credits, p.Validity, p.Mode, p.SessionType, p.Status, p.CreatedAt)
	return err
}

func (s *Store) InsertYogaConsultation(ctx context.Context, c *YogaConsultation) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO yoga_consultations (id, user_id, yoga_goal,
			intensity_preference, connection_method, schedule_timing,
			context_notes, whatsapp_number, price, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.UserID, c.YogaGoal,
		c.IntensityPreference, c.ConnectionMethod, c.ScheduleTiming,
		c.ContextNotes, c.WhatsappNumber, c.Price, c.Status, c.CreatedAt)
	return err
}

func (s *Store) YogaActivityByUser(ctx context.Context, userID string) (*YogaActivity, error) {
	activity := &YogaActivity{
		ClassBookings: []*YogaClassBooking{},
		Packages:      []*YogaPackagePurchase{},
		Consultations: []*YogaConsultation{},
	}

	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, class_name, class_time, class_date, guru_name,
			price, credits, level, status, created_at
		FROM yoga_class_bookings WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var b YogaClassBooking
		if err := rows.Scan(&b.ID, &b.UserID, &b.ClassName, &b.ClassTime,
			&b.ClassDate, &b.GuruName, &b.Price, &b.Credits, &b.Level,
			&b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		activity.ClassBookings = append(activity.ClassBookings, &b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, user_id, package_name, price, credits, validity, mode,
			session_type, status, created_at
		FROM yoga_package_purchases WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var p YogaPackagePurchase
		if err := rows.Scan(&p.ID, &p.UserID, &p.PackageName, &p.Price,
			&p.Credits, &p.Validity, &p.Mode, &p.SessionType,
			&p.Status, &p.CreatedAt); err != nil {
			return nil, err
		}
		activity.Packages = append(activity.Packages, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.pool.Query(ctx, `
		SELECT id, user_id, yoga_goal, intensity_preference, connection_method,
			schedule_timing, COALESCE(context_notes, ''), COALESCE(whatsapp_number, ''),
			price, status, created_at
		FROM yoga_consultations WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var c YogaConsultation
		if err := rows.Scan(&c.ID, &c.UserID, &c.YogaGoal, &c.IntensityPreference,
			&c.ConnectionMethod, &c.ScheduleTiming, &c.ContextNotes,
			&c.WhatsappNumber, &c.Price, &c.Status, &c.CreatedAt); err != nil {
			return nil, err
		}
		activity.Consultations = append(activity.Consultations, &c)
	}
	return activity, rows.Err()
}
