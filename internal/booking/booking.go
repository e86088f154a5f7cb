package booking

import (
	"errors"
	"time"
)

var ErrNotFound = errors.New("booking not found")

const (
	StatusPending = "pending"
	StatusPaid    = "paid"
)

// Booking is an astrology session reservation. The astrologer and service
// details are denormalized at creation time so the record stays meaningful if
// the roster changes later.
type Booking struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	AstrologerID         string    `json:"astrologer_id"`
	AstrologerName       string    `json:"astrologer_name"`
	AstrologerExpertise  string    `json:"astrologer_expertise,omitempty"`
	AstrologerExperience string    `json:"astrologer_experience,omitempty"`
	AstrologerLanguages  string    `json:"astrologer_languages,omitempty"`
	ServiceName          string    `json:"service_name"`
	ServiceDuration      string    `json:"service_duration,omitempty"`
	ServicePrice         float64   `json:"service_price"`
	BookingDate          string    `json:"booking_date"`
	BookingTime          string    `json:"booking_time"`
	Status               string    `json:"status"`
	CreatedAt            time.Time `json:"created_at"`
}

// YogaClassBooking reserves a seat in a scheduled class.
type YogaClassBooking struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ClassName string    `json:"class_name"`
	ClassTime string    `json:"class_time"`
	ClassDate string    `json:"class_date"`
	GuruName  string    `json:"guru_name"`
	Price     float64   `json:"price"`
	Credits   int       `json:"credits"`
	Level     string    `json:"level,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// YogaPackagePurchase is a multi-session credit bundle.
type YogaPackagePurchase struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	PackageName string    `json:"package_name"`
	Price       float64   `json:"price"`
	Credits     int       `json:"credits"`
	Validity    string    `json:"validity,omitempty"`
	Mode        string    `json:"mode"`
	SessionType string    `json:"session_type"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// YogaConsultation is a request for a personalised plan.
type YogaConsultation struct {
	ID                  string    `json:"id"`
	UserID              string    `json:"user_id"`
	YogaGoal            string    `json:"yoga_goal"`
	IntensityPreference string    `json:"intensity_preference,omitempty"`
	ConnectionMethod    string    `json:"connection_method,omitempty"`
	ScheduleTiming      string    `json:"schedule_timing,omitempty"`
	ContextNotes        string    `json:"context_notes,omitempty"`
	WhatsappNumber      string    `json:"whatsapp_number,omitempty"`
	Price               float64   `json:"price"`
	Status              string    `json:"status"`
	CreatedAt           time.Time `json:"created_at"`
}

// YogaActivity groups a user's yoga history for the combined listing.
type YogaActivity struct {
	ClassBookings []*YogaClassBooking    `json:"class_bookings"`
	Packages      []*YogaPackagePurchase `json:"package_purchases"`
	Consultations []*YogaConsultation    `json:"consultations"`
}
