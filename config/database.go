package config

import (
	"fmt"
	"log"

	"journal-desk/models"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDraftDB opens the draft database for the configured driver and
// migrates the draft table.
func InitDraftDB(cfg Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DraftDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DraftDSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DraftDSN)
	default:
		return nil, fmt.Errorf("unsupported draft driver %q", cfg.DraftDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to draft database: %w", err)
	}

	if cfg.DraftDriver == "sqlite" {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer; one connection also keeps an
		// in-memory database alive across queries.
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.Draft{}); err != nil {
		return nil, fmt.Errorf("failed to migrate drafts: %w", err)
	}

	log.Printf("[Config] draft store ready (%s)", cfg.DraftDriver)
	return db, nil
}

func NewRedisClient(cfg Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}
