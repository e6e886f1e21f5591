package db

import (
	"fmt"
	"time"

	"communityhub/internal/logger"
	"communityhub/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var DB *gorm.DB

// Init 连接 Postgres 并自动迁移
func Init(dsn string) error {
	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := conn.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	DB = conn
	logger.Log.Info("Database connection established")

	return Migrate()
}

// Migrate 自动迁移所有表
func Migrate() error {
	err := DB.AutoMigrate(
		&models.User{},
		&models.UserProfile{},
		&models.Item{},
		&models.StatusHistory{},
		&models.Reaction{},
		&models.Comment{},
		&models.Share{},
		&models.Follow{},
		&models.OTP{},
		&models.RateLimit{},
		&models.ReputationLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}
	logger.Log.Info("Database migration completed")
	return nil
}

// Close 关闭连接池
func Close() {
	if DB == nil {
		return
	}
	if sqlDB, err := DB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Log.Warn("Failed to close database", zap.Error(err))
		}
	}
}
