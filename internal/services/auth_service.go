package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"lelang/internal/apperrors"
	"lelang/internal/models"
	"lelang/internal/repositories"

	"github.com/dgrijalva/jwt-go"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// AuthService handles business logic for authentication and authorization.
type AuthService struct {
	userRepo   repositories.UserRepository
	jwtSecret  []byte
	tokenDurat time.Duration // Duration for which JWT is valid
	logger     zerolog.Logger
}

type AuthServiceParams struct {
	UserRepo  repositories.UserRepository
	JWTSecret string
	TokenTTL  time.Duration
	Logger    zerolog.Logger
}

// NewAuthService creates a new AuthService. A zero TokenTTL means one hour.
func NewAuthService(params AuthServiceParams) *AuthService {
	ttl := params.TokenTTL
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AuthService{
		userRepo:   params.UserRepo,
		jwtSecret:  []byte(params.JWTSecret),
		tokenDurat: ttl,
		logger:     params.Logger.With().Str("component", "auth_service").Logger(),
	}
}

// RegisterUser registers a new user, hashes their password, and saves them to the database.
func (s *AuthService) RegisterUser(ctx context.Context, user *models.User) error {
	existing, err := s.userRepo.GetByEmail(ctx, user.Email)
	if err == nil && existing != nil {
		return fmt.Errorf("email '%s': %w", user.Email, apperrors.ErrEmailTaken)
	}
	if err != nil && !errors.Is(err, apperrors.ErrUserNotFound) {
		return fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashedPassword)

	if err := s.userRepo.Create(ctx, user); err != nil {
		return fmt.Errorf("failed to register user: %w", err)
	}
	s.logger.Info().Str("user_id", user.ID).Str("email", user.Email).Msg("User registered")
	return nil
}

// LoginUser authenticates a user and returns a JWT token if successful.
func (s *AuthService) LoginUser(ctx context.Context, email, password string) (string, error) {
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return "", apperrors.ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", apperrors.ErrInvalidCredentials
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     now.Add(s.tokenDurat).Unix(),
		"iat":     now.Unix(),
	})

	tokenString, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	return tokenString, nil
}

// ValidateToken parses and validates a JWT token, returning the claims if valid.
func (s *AuthService) ValidateToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})

	if err != nil {
		s.logger.Debug().Err(err).Msg("Token validation failed")
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, fmt.Errorf("invalid token")
}

// UserExists reports whether an account is registered under email.
func (s *AuthService) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, apperrors.ErrUserNotFound) {
		return false, nil
	}
	return false, fmt.Errorf("failed to look up user %s: %w", email, err)
}
