package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"authgate/internal/auth"
	"authgate/internal/config"
	apperrors "authgate/internal/errors"
	"authgate/internal/handler"
	"authgate/internal/logging"
	"authgate/internal/repository"
	"authgate/internal/service"
)

// seedUser is one entry of the seed file.
type seedUser struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

var defaultUsers = []seedUser{
	{FullName: "Demo User", Username: "demo", Email: "demo@example.com", Password: "demo1234"},
	{FullName: "Jane Doe", Username: "jane_doe", Email: "jane@example.com", Password: "jane1234"},
	{FullName: "John Smith", Username: "john_smith", Email: "john@example.com", Password: "john1234"},
}

type seedStats struct {
	created int
	skipped int
	invalid int
}

func main() {
	file := flag.String("file", "", "JSON file with an array of {fullName, username, email, password}; built-in demo users when empty")
	flag.Parse()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	logger.Info("starting seed script", "driver", cfg.StoreDriver)

	if cfg.StoreDriver == config.DriverMemory {
		logger.Error("seeding the in-memory store has no effect; choose mongo, mysql or postgres")
		os.Exit(1)
	}

	users := defaultUsers
	if *file != "" {
		loaded, err := loadUsers(*file)
		if err != nil {
			logger.Error("read seed file", "file", *file, "error", err)
			os.Exit(1)
		}
		users = loaded
	}
	logger.Info("loaded seed users", "count", len(users))

	ctx := context.Background()
	repo, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(context.Background()); err != nil {
			logger.Warn("storage close", "error", err)
		}
	}()

	// No tokens are issued while seeding.
	secret := cfg.JWTSecret
	if secret == "" {
		secret = uuid.NewString()
	}
	authService := service.NewAuthService(
		repo,
		auth.NewHasher(cfg.BcryptCost, cfg.PasswordPepper),
		auth.NewJWTService(secret, cfg.JWTIssuer, cfg.JWTExpiry),
	)

	stats, err := seed(ctx, authService, handler.NewRequestValidator(), users, logger)
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}

	logger.Info("seed completed",
		"created", stats.created,
		"skipped", stats.skipped,
		"invalid", stats.invalid,
	)
}

func loadUsers(path string) ([]seedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	body, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	var users []seedUser
	if err := json.Unmarshal(body, &users); err != nil {
		return nil, fmt.Errorf("decode seed users: %w", err)
	}
	return users, nil
}

type validator interface {
	Validate(i interface{}) error
}

// seed registers every user through the auth service. Entries failing the
// registration rules are logged and counted; existing usernames or emails are
// skipped. Any other error aborts.
func seed(ctx context.Context, svc service.AuthService, v validator, users []seedUser, logger *slog.Logger) (seedStats, error) {
	var stats seedStats
	for _, u := range users {
		req := handler.RegisterRequest{
			FullName:        u.FullName,
			Username:        u.Username,
			Email:           u.Email,
			Password:        u.Password,
			ConfirmPassword: u.Password,
		}
		if err := v.Validate(&req); err != nil {
			logger.Warn("skipping invalid seed user", "username", u.Username, "reason", err)
			stats.invalid++
			continue
		}

		created, err := svc.Register(ctx, service.RegisterInput{
			FullName: u.FullName,
			Username: u.Username,
			Email:    u.Email,
			Password: u.Password,
		})
		if errors.Is(err, apperrors.ErrDuplicateKey) {
			logger.Info("user already exists, skipping", "username", u.Username, "reason", err)
			stats.skipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("register %q: %w", u.Username, err)
		}

		logger.Info("seeded user", "username", created.Username, "user_id", created.ID)
		stats.created++
	}
	return stats, nil
}
