// Package dbtest 为测试准备独立的 SQLite 内存库
package dbtest

import (
	"fmt"
	"testing"

	"communityhub/internal/db"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Setup 打开一个只属于当前测试的内存库，替换 db.DB 并迁移表结构
func Setup(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	// 单连接，避免 SQLite 写锁冲突
	sqlDB.SetMaxOpenConns(1)

	prev := db.DB
	db.DB = conn
	require.NoError(t, db.Migrate())

	t.Cleanup(func() {
		db.DB = prev
		_ = sqlDB.Close()
	})
	return conn
}
