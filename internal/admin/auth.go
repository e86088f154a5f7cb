package admin

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Authenticator issues and checks operator tokens. A single operator identity
// is configured through the environment; tokens are HS256 with a 12h expiry.
type Authenticator struct {
	email        string
	passwordHash string
	secret       []byte
	tokenTTL     time.Duration
}

func NewAuthenticator(email, passwordHash, secret string) *Authenticator {
	return &Authenticator{
		email:        email,
		passwordHash: passwordHash,
		secret:       []byte(secret),
		tokenTTL:     12 * time.Hour,
	}
}

// Login checks the operator credentials and returns a signed token.
func (a *Authenticator) Login(email, password string) (string, error) {
	if a.email == "" || a.passwordHash == "" {
		return "", fmt.Errorf("operator login is not configured")
	}
	if email != a.email {
		return "", ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(a.passwordHash), []byte(password)) != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now().UTC()
	claims := jwt.MapClaims{
		"sub":  email,
		"role": "operator",
		"iat":  now.Unix(),
		"exp":  now.Add(a.tokenTTL).Unix(),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Verify parses a token and confirms the operator role.
func (a *Authenticator) Verify(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidCredentials
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["role"] != "operator" {
		return ErrInvalidCredentials
	}
	return nil
}

// RequireOperator guards a route subtree with a Bearer operator token.
func (a *Authenticator) RequireOperator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeAuthError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		if err := a.Verify(token); err != nil {
			writeAuthError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeAuthError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":%q}`, msg)
}
