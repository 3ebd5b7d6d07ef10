package infrastructure

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"resume-ranker/config"
	"resume-ranker/domain"
)

func NewMySQLConnection(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if cfg.DSN == "" {
		return nil, &domain.ConfigurationError{Setting: "DB_DSN"}
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates the schema. Users come first so the job foreign
// key can reference them, jobs before resumes for the SET NULL reference.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&domain.User{}, &domain.JobDescription{}, &domain.Resume{}); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SeedAdmin creates the configured admin account when no user exists yet.
func SeedAdmin(ctx context.Context, users *UserRepository, cfg config.AdminConfig, log Logger) error {
	if cfg.Username == "" || cfg.Password == "" {
		return nil
	}

	count, err := users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	if _, err := users.Create(ctx, cfg.Username, cfg.Password); err != nil {
		return fmt.Errorf("failed to seed admin: %w", err)
	}
	log.Info("seeded admin user", map[string]interface{}{"username": cfg.Username})
	return nil
}

// likeEscaper escapes LIKE wildcards with '!', an escape character MySQL
// and SQLite read the same way.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// containsPattern returns a lower-cased LIKE pattern matching term literally
// anywhere in a value. Use it with ESCAPE '!'.
func containsPattern(term string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(term)) + "%"
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
