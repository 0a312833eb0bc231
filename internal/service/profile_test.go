package service

import (
	"testing"

	"memberchat/internal/auth"
	"memberchat/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strptr(s string) *string { return &s }

func TestProfileService_Get(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMember(t, db, "alice")

	view := svc.Get(alice)
	assert.Equal(t, alice.ID, view.ID)
	assert.Equal(t, "alice", view.Nickname)
	assert.Equal(t, alice.CreatedAt, view.CreatedAt)
}

func TestProfileService_UpdateNickname(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMember(t, db, "alice")

	view, err := svc.Update(alice, ProfileUpdate{Nickname: strptr("alicia")})
	require.NoError(t, err)
	assert.Equal(t, "alicia", view.Nickname)

	var stored models.Member
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.Equal(t, "alicia", stored.Nickname)
}

func TestProfileService_UpdateNicknameTaken(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMember(t, db, "alice")
	createMember(t, db, "bob")

	_, err := svc.Update(alice, ProfileUpdate{Nickname: strptr("bob")})
	require.ErrorIs(t, err, ErrDuplicateNickname)

	// 改回自己当前的昵称不算冲突
	_, err = svc.Update(alice, ProfileUpdate{Nickname: strptr("alice")})
	require.NoError(t, err)
}

func TestProfileService_PasswordChangeWithCorrectOld(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMemberWithPassword(t, db, "alice", "oldpass1")

	_, err := svc.Update(alice, ProfileUpdate{OldPassword: "oldpass1", NewPassword: "newpass2"})
	require.NoError(t, err)

	sessions := NewSessionService(db)
	_, err = sessions.Login("alice", "newpass2")
	assert.NoError(t, err)
	_, err = sessions.Login("alice", "oldpass1")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestProfileService_PasswordChangeWithWrongOld(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMemberWithPassword(t, db, "alice", "oldpass1")

	_, err := svc.Update(alice, ProfileUpdate{OldPassword: "wrong", NewPassword: "newpass2"})
	require.ErrorIs(t, err, ErrWrongOldPassword)

	// 密码保持不变
	var stored models.Member
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "oldpass1"))
}

func TestProfileService_PasswordChangeWithoutOld(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMemberWithPassword(t, db, "alice", "oldpass1")

	// old_password 留空时放行，沿袭原有策略
	_, err := svc.Update(alice, ProfileUpdate{NewPassword: "newpass2"})
	require.NoError(t, err)

	var stored models.Member
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "newpass2"))
}

func TestProfileService_PartialUpdateLeavesOtherFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewProfileService(db)
	alice := createMemberWithPassword(t, db, "alice", "oldpass1")

	_, err := svc.Update(alice, ProfileUpdate{Nickname: strptr("alicia")})
	require.NoError(t, err)

	var stored models.Member
	require.NoError(t, db.First(&stored, alice.ID).Error)
	assert.Equal(t, "alicia", stored.Nickname)
	assert.True(t, auth.VerifyPassword(stored.PasswordHash, "oldpass1"))
}
