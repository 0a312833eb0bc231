package service

import (
	"errors"

	"memberchat/internal/auth"
	"memberchat/internal/models"

	"gorm.io/gorm"
)

// ProfileService 封装个人资料的查看与修改。
type ProfileService struct {
	db *gorm.DB
}

func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// ProfileUpdate 描述一次资料修改。Nickname 为 nil 表示本次不改昵称
// （PATCH 的部分更新），指向空串会被 handler 挡掉。
type ProfileUpdate struct {
	Nickname    *string
	OldPassword string
	NewPassword string
}

// Get 返回当前成员的资料视图。
func (s *ProfileService) Get(member models.Member) MemberView {
	return NewMemberView(member)
}

// Update 应用一次资料修改并返回刷新后的视图。昵称唯一性检查排除自身，
// 与注册一样以唯一索引为最终依据。改密码必须提供非空 new_password；
// old_password 提供了就必须匹配。old_password 留空时直接放行是沿袭
// 下来的策略缺口，保持原样而不是悄悄收紧。
func (s *ProfileService) Update(member models.Member, upd ProfileUpdate) (*MemberView, error) {
	if upd.Nickname != nil && *upd.Nickname != member.Nickname {
		var count int64
		if err := s.db.Model(&models.Member{}).
			Where("nickname = ? AND id <> ?", *upd.Nickname, member.ID).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, ErrDuplicateNickname
		}
		member.Nickname = *upd.Nickname
	}
	if upd.NewPassword != "" {
		if upd.OldPassword != "" && !auth.VerifyPassword(member.PasswordHash, upd.OldPassword) {
			return nil, ErrWrongOldPassword
		}
		hash, err := auth.HashPassword(upd.NewPassword)
		if err != nil {
			return nil, err
		}
		member.PasswordHash = hash
	}
	if err := s.db.Save(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateNickname
		}
		return nil, err
	}
	view := NewMemberView(member)
	return &view, nil
}
