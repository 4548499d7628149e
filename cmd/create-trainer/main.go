package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"
	"time"

	"golang.org/x/term"

	"github.com/personal-system/personal-backend/internal/config"
	"github.com/personal-system/personal-backend/internal/database"
	"github.com/personal-system/personal-backend/internal/logger"
	"github.com/personal-system/personal-backend/internal/repository"
	"github.com/personal-system/personal-backend/internal/service"
)

const minPasswordLength = 8

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		boot := logger.Bootstrap(os.Stderr)
		boot.Fatal().Err(err).Msg("Invalid configuration")
	}

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, "")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	authService := service.NewAuthService(cfg, repository.NewTrainerRepository(pool), log)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Trainer ===")

	username := prompt(reader, "Username: ")
	if len(username) < 3 {
		fmt.Println("Error: username must be at least 3 characters")
		os.Exit(1)
	}

	name := prompt(reader, "Name: ")
	if name == "" {
		fmt.Println("Error: name is required")
		os.Exit(1)
	}

	password := promptPassword("Password: ")
	if len(password) < minPasswordLength {
		fmt.Printf("Error: password must be at least %d characters\n", minPasswordLength)
		os.Exit(1)
	}
	if promptPassword("Confirm password: ") != password {
		fmt.Println("Error: passwords do not match")
		os.Exit(1)
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	trainer, err := authService.CreateTrainer(ctx, username, name, password)
	if err != nil {
		if errors.Is(err, service.ErrTrainerExists) {
			fmt.Printf("Error: username %q is already taken\n", username)
			os.Exit(1)
		}
		log.Fatal().Err(err).Msg("Failed to create trainer")
	}

	fmt.Printf("\nSuccess! Trainer '%s' (%s) created with ID: %d\n", trainer.Name, trainer.Username, trainer.ID)
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func promptPassword(label string) string {
	fmt.Print(label)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		fmt.Println("Error reading password")
		os.Exit(1)
	}
	return string(raw)
}
