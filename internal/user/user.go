package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is an account holder. PasswordHash never leaves the package boundary;
// handlers serialize Profile instead.
type User struct {
	ID            string
	FullName      string
	Email         string
	Phone         string
	PasswordHash  string
	Gender        string
	DateOfBirth   string
	TimeOfBirth   string
	Location      string
	IsVerified    bool
	WalletBalance float64
	CreatedAt     time.Time
}

// Profile is the client-facing view of a user.
type Profile struct {
	ID            string    `json:"id"`
	FullName      string    `json:"full_name"`
	Email         string    `json:"email"`
	Phone         string    `json:"phone"`
	Gender        string    `json:"gender,omitempty"`
	DateOfBirth   string    `json:"date_of_birth,omitempty"`
	TimeOfBirth   string    `json:"time_of_birth,omitempty"`
	Location      string    `json:"location,omitempty"`
	IsVerified    bool      `json:"is_verified"`
	WalletBalance float64   `json:"wallet_balance"`
	CreatedAt     time.Time `json:"created_at"`
}

func (u *User) Profile() *Profile {
	return &Profile{
		ID:            u.ID,
		FullName:      u.FullName,
		Email:         u.Email,
		Phone:         u.Phone,
		Gender:        u.Gender,
		DateOfBirth:   u.DateOfBirth,
		TimeOfBirth:   u.TimeOfBirth,
		Location:      u.Location,
		IsVerified:    u.IsVerified,
		WalletBalance: u.WalletBalance,
		CreatedAt:     u.CreatedAt,
	}
}
