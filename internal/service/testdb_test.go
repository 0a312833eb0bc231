package service

import (
	"testing"

	"memberchat/internal/auth"
	"memberchat/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 为单个测试开一个独立的内存 SQLite 库。
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(
		sqlite.Open("file:"+t.Name()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: gormlogger.Discard, TranslateError: true},
	)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Member{}, &models.AuthToken{}, &models.Room{}, &models.Message{}))
	return db
}

// createMember 直接造一个成员行，绕过 bcrypt，供不关心密码的测试使用。
func createMember(t *testing.T, db *gorm.DB, nickname string) models.Member {
	t.Helper()
	member := models.Member{Nickname: nickname, PasswordHash: "not-a-real-hash"}
	require.NoError(t, db.Create(&member).Error)
	return member
}

// createMemberWithPassword 造一个带真实 bcrypt 哈希的成员行。
func createMemberWithPassword(t *testing.T, db *gorm.DB, nickname, password string) models.Member {
	t.Helper()
	hash, err := auth.HashPassword(password)
	require.NoError(t, err)
	member := models.Member{Nickname: nickname, PasswordHash: hash}
	require.NoError(t, db.Create(&member).Error)
	return member
}
