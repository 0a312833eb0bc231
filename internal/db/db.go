package db

import (
	"time"

	"memberchat/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect 建立数据库连接。dsn 为空时退化为内存 SQLite（测试和本地体验用），
// 否则连接 Postgres，并带有简单的重试来等待容器就绪。
// TranslateError 让两种驱动的唯一约束冲突都以 gorm.ErrDuplicatedKey 暴露，
// 业务层以此作为重复判定的最终依据。
func Connect(dsn string) (*gorm.DB, error) {
	gcfg := &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	}
	if dsn == "" {
		return gorm.Open(sqlite.Open("file::memory:?cache=shared"), gcfg)
	}
	var gdb *gorm.DB
	var err error
	for i := 0; i < 10; i++ {
		gdb, err = gorm.Open(postgres.Open(dsn), gcfg)
		if err == nil {
			sqlDB, err2 := gdb.DB()
			if err2 == nil {
				sqlDB.SetMaxIdleConns(5)
				sqlDB.SetMaxOpenConns(20)
				sqlDB.SetConnMaxLifetime(time.Hour)
				return gdb, nil
			}
			err = err2
		}
		time.Sleep(time.Duration(500+i*200) * time.Millisecond)
	}
	return nil, err
}

// Migrate 自动迁移全部表结构。
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(&models.Member{}, &models.AuthToken{}, &models.Room{}, &models.Message{})
}
