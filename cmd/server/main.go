package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"authgate/docs"
	"authgate/internal/auth"
	"authgate/internal/cache"
	"authgate/internal/config"
	"authgate/internal/handler"
	"authgate/internal/logging"
	"authgate/internal/repository"
	"authgate/internal/router"
	"authgate/internal/service"
)

// @title Authgate API
// @version 1.0
// @description User registration, login and bearer-token protected profile API.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	users, closeStore, err := repository.Open(ctx, cfg, logger)
	if err != nil {
		logger.Error("storage init", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	logger.Info("storage ready", "driver", cfg.StoreDriver)

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(ctx); err != nil {
		logger.Warn("redis unavailable, profile cache disabled until it recovers", "addr", cfg.RedisAddr, "error", err)
	}

	if cfg.JWTSecret == "" {
		cfg.JWTSecret = uuid.NewString()
		logger.Warn("JWT_SECRET not set, using an ephemeral secret; tokens will not survive a restart")
	}

	// Initialize auth components
	hasher := auth.NewHasher(cfg.BcryptCost, cfg.PasswordPepper)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTExpiry)

	// Initialize services
	authService := service.NewAuthService(users, hasher, jwtService)
	userService := service.NewUserService(users, cacheClient, cfg.ProfileCacheTTL)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, logger)
	userHandler := handler.NewUserHandler(userService)

	e := echo.New()
	router.Register(e, logger, jwtService, authHandler, userHandler)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logger.Info("swagger documentation available", "url", swaggerURL(cfg.SwaggerHost))

	addr := ":" + cfg.ServerPort
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", "addr", addr)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	exitCode := 0
	select {
	case err := <-serverErr:
		logger.Error("server start", "error", err)
		exitCode = 1
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown", "error", err)
		exitCode = 1
	}
	if err := cacheClient.Close(); err != nil {
		logger.Warn("redis close", "error", err)
	}
	if err := closeStore(shutdownCtx); err != nil {
		logger.Warn("storage close", "error", err)
	}

	logger.Info("server stopped")
	if exitCode != 0 {
		stop()
		cancel()
		os.Exit(exitCode)
	}
}

// swaggerURL builds the Swagger UI address. host may already include the
// scheme.
func swaggerURL(host string) string {
	if host == "" {
		// container listens on 8080, mapped to 5000 externally
		return "http://localhost:5000/swagger/index.html"
	}
	if strings.HasPrefix(host, "http://") || strings.HasPrefix(host, "https://") {
		return host + "/swagger/index.html"
	}
	return "http://" + host + "/swagger/index.html"
}
