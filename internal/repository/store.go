package repository

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"authgate/internal/config"
	"authgate/internal/db"
	"authgate/internal/model"
)

// CloseFunc releases the storage connection opened by Open.
type CloseFunc func(ctx context.Context) error

// Open connects the store selected by cfg.StoreDriver, prepares its schema
// (unique indexes or migrations) and returns the user repository over it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (UserRepository, CloseFunc, error) {
	switch cfg.StoreDriver {
	case config.DriverMongo:
		return openMongo(ctx, cfg, logger)
	case config.DriverMySQL:
		gormDB, err := db.NewMySQL(cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		return openGorm(gormDB, cfg, logger)
	case config.DriverPostgres:
		gormDB, err := db.NewPostgres(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		return openGorm(gormDB, cfg, logger)
	case config.DriverMemory:
		logger.Warn("using in-memory user store; data is lost on restart")
		return NewMemoryUserRepository(), func(context.Context) error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
}

func openMongo(ctx context.Context, cfg *config.Config, logger *slog.Logger) (UserRepository, CloseFunc, error) {
	client, err := db.NewMongo(ctx, cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	closeFn := func(ctx context.Context) error { return client.Disconnect(ctx) }

	repo := NewMongoUserRepository(client.Database(cfg.MongoDatabase))
	if cfg.ResetDB {
		logger.Info("RESET_DB=true detected, dropping users collection")
		if err := repo.Drop(ctx); err != nil {
			logger.Warn("failed to drop users collection", "error", err)
		}
	}
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = closeFn(context.Background())
		return nil, nil, err
	}

	logger.Info("connected to mongo", "database", cfg.MongoDatabase)
	return repo, closeFn, nil
}

func openGorm(gormDB *gorm.DB, cfg *config.Config, logger *slog.Logger) (UserRepository, CloseFunc, error) {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("sql handle: %w", err)
	}
	closeFn := func(context.Context) error { return sqlDB.Close() }

	if cfg.ResetDB {
		logger.Info("RESET_DB=true detected, dropping users table")
		if err := gormDB.Migrator().DropTable(&model.User{}); err != nil {
			logger.Warn("failed to drop users table (may not exist)", "error", err)
		}
	}
	if err := gormDB.AutoMigrate(&model.User{}); err != nil {
		_ = sqlDB.Close()
		return nil, nil, fmt.Errorf("auto-migrate: %w", err)
	}

	logger.Info("connected to sql store", "driver", cfg.StoreDriver)
	return NewGormUserRepository(gormDB), closeFn, nil
}
