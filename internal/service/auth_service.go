package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/repository"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTrainerExists      = errors.New("trainer username already taken")
)

// Claims extends JWT standard claims with the trainer identity.
type Claims struct {
	jwt.RegisteredClaims
	TrainerID int    `json:"trainer_id"`
	Username  string `json:"usuario"`
}

// AuthService handles trainer passwords and JWTs.
type AuthService struct {
	cfg      *config.Config
	trainers repository.TrainerRepository
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, trainers repository.TrainerRepository, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		trainers: trainers,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies the credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (*model.LoginResponse, error) {
	t, err := s.trainers.GetByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get trainer: %w", err)
	}
	if err := s.CheckPassword(t.PasswordHash, req.Password); err != nil {
		s.log.Warn().Str("usuario", t.Username).Msg("Failed login attempt")
		return nil, err
	}

	token, err := s.GenerateToken(t)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, Trainer: *t}, nil
}

// CreateTrainer stores a new trainer with a hashed password.
func (s *AuthService) CreateTrainer(ctx context.Context, username, name, password string) (*model.Trainer, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	t := &model.Trainer{Username: strings.TrimSpace(username), Name: strings.TrimSpace(name), PasswordHash: hash}
	if err := s.trainers.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrTrainerExists
		}
		return nil, fmt.Errorf("create trainer: %w", err)
	}
	return t, nil
}

// GenerateToken signs an HS256 JWT for the trainer.
func (s *AuthService) GenerateToken(t *model.Trainer) (string, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.New().String(),
			Subject:   strconv.Itoa(t.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		TrainerID: t.ID,
		Username:  t.Username,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
