package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthNotConfigured  = errors.New("admin credentials not configured")
)

// Claims represents the JWT claims for the admin panel token.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthService issues admin panel tokens. There are no user accounts: the
// panel has a single admin password whose bcrypt hash lives in configuration.
type AuthService interface {
	Login(password string) (string, error)
}

type authService struct {
	adminPasswordHash string
	jwtSecret         string
	tokenExpiry       time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(adminPasswordHash, jwtSecret string, tokenExpiry time.Duration) AuthService {
	return &authService{
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
		tokenExpiry:       tokenExpiry,
	}
}

// Login checks the admin password and returns a signed access token.
func (s *authService) Login(password string) (string, error) {
	if s.adminPasswordHash == "" || s.jwtSecret == "" {
		return "", ErrAuthNotConfigured
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	now := time.Now()
	claims := &Claims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "admin",
			ExpiresAt: jwt.NewNumericDate(now.Add(s.tokenExpiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
