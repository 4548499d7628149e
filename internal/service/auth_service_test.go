package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/model"
	"github.com/personal-system/personal-backend/internal/repository/repotest"
)

func newAuth(t *testing.T) *AuthService {
	t.Helper()
	cfg := &config.Config{JWTSecret: "test-secret", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}
	return NewAuthService(cfg, repotest.New().Trainers(), zerolog.Nop())
}

func TestAuthLogin(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()
	trainer, err := auth.CreateTrainer(ctx, "rafa", "Rafael", "s3nh4-forte")
	if err != nil {
		t.Fatal(err)
	}

	res, err := auth.Login(ctx, model.LoginRequest{Username: "rafa", Password: "s3nh4-forte"})
	if err != nil {
		t.Fatal(err)
	}
	claims, err := auth.ValidateToken(res.Token)
	if err != nil {
		t.Fatal(err)
	}
	if claims.TrainerID != trainer.ID || claims.Username != "rafa" {
		t.Errorf("claims = %+v", claims)
	}

	for _, req := range []model.LoginRequest{
		{Username: "rafa", Password: "errada"},
		{Username: "ninguem", Password: "s3nh4-forte"},
	} {
		if _, err := auth.Login(ctx, req); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("login %q: err = %v, want ErrInvalidCredentials", req.Username, err)
		}
	}
}

func TestAuthDuplicateTrainer(t *testing.T) {
	auth := newAuth(t)
	ctx := context.Background()
	if _, err := auth.CreateTrainer(ctx, "rafa", "Rafael", "senha123"); err != nil {
		t.Fatal(err)
	}
	if _, err := auth.CreateTrainer(ctx, "rafa", "Outro", "senha456"); !errors.Is(err, ErrTrainerExists) {
		t.Errorf("err = %v, want ErrTrainerExists", err)
	}
}

func TestAuthRejectsForeignToken(t *testing.T) {
	auth := newAuth(t)
	other := NewAuthService(&config.Config{JWTSecret: "other", JWTExpiry: time.Hour, BcryptCost: bcrypt.MinCost}, repotest.New().Trainers(), zerolog.Nop())

	token, err := other.GenerateToken(&model.Trainer{ID: 1, Username: "x"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := auth.ValidateToken(token); err == nil {
		t.Error("token signed with another secret accepted")
	}
	if _, err := auth.ValidateToken("not-a-jwt"); err == nil {
		t.Error("garbage token accepted")
	}
}
