package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/AnuphapGBC/invoice-management-service/internal/domain"
	"github.com/AnuphapGBC/invoice-management-service/internal/repository"
)

// ErrInvalidCredentials is returned for an unknown username or a wrong
// password; callers cannot tell which.
var ErrInvalidCredentials = errors.New("invalid username or password")

// AuthService handles login and token validation.
type AuthService interface {
	Login(ctx context.Context, username, password string) (*AuthResponse, error)
	Register(ctx context.Context, username, password, role, email string) (*domain.User, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
}

// AuthResponse contains the authenticated user and their access token.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"token"`
	ExpiresIn   int64        `json:"expiresIn"` // seconds
}

// Claims represents the JWT claims issued at login.
type Claims struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type authService struct {
	userRepo   repository.UserRepository
	jwtSecret  []byte
	expiration time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(userRepo repository.UserRepository, jwtSecret string, expiration time.Duration) AuthService {
	return &authService{
		userRepo:   userRepo,
		jwtSecret:  []byte(jwtSecret),
		expiration: expiration,
	}
}

// Login authenticates a user by username and password and issues a token.
func (s *authService) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.expiration)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	return &AuthResponse{
		User:        user,
		AccessToken: signed,
		ExpiresIn:   int64(s.expiration.Seconds()),
	}, nil
}

// Register creates a new user with a bcrypt-hashed password.
func (s *authService) Register(ctx context.Context, username, password, role, email string) (*domain.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: string(hashed),
		Role:         role,
		Email:        email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ValidateAccessToken validates and parses an access token.
func (s *authService) ValidateAccessToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, fmt.Errorf("invalid token")
}
