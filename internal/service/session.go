package service

import (
	"errors"
	"time"

	"memberchat/internal/auth"
	"memberchat/internal/models"

	"gorm.io/gorm"
)

// MemberView 是对外输出的成员数据，永远不包含密码字段。
type MemberView struct {
	ID        uint      `json:"id"`
	Nickname  string    `json:"nickname"`
	CreatedAt time.Time `json:"created_at"`
}

func NewMemberView(m models.Member) MemberView {
	return MemberView{ID: m.ID, Nickname: m.Nickname, CreatedAt: m.CreatedAt}
}

// AuthResult 注册或登录成功后返回的数据。
type AuthResult struct {
	Token  string     `json:"token"`
	Member MemberView `json:"member"`
}

// SessionService 封装注册、登录、登出相关的业务逻辑。
type SessionService struct {
	db *gorm.DB
}

func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// Register 注册新成员并签发 token。昵称重复的快速检查只是为了友好报错，
// 真正的防重依据是昵称上的唯一索引：并发注册撞上时把唯一冲突映射为
// ErrDuplicateNickname，绝不会写入两个同名成员。
func (s *SessionService) Register(nickname, password string) (*AuthResult, error) {
	var count int64
	if err := s.db.Model(&models.Member{}).Where("nickname = ?", nickname).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrDuplicateNickname
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}
	member := models.Member{Nickname: nickname, PasswordHash: hash}
	if err := s.db.Create(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateNickname
		}
		return nil, err
	}
	token, err := s.mintToken(member.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token.Key, Member: NewMemberView(member)}, nil
}

// Login 校验昵称和密码。昵称不存在与密码不匹配返回同一个错误，
// 避免昵称枚举。已有 token 时复用最近签发的那个，不再新发。
func (s *SessionService) Login(nickname, password string) (*AuthResult, error) {
	var member models.Member
	if err := s.db.Where("nickname = ?", nickname).First(&member).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.VerifyPassword(member.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	var token models.AuthToken
	err := s.db.Where("member_id = ?", member.ID).Order("created_at desc, id desc").First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t, merr := s.mintToken(member.ID)
		if merr != nil {
			return nil, merr
		}
		token = *t
	} else if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token.Key, Member: NewMemberView(member)}, nil
}

// Logout 删除 token 行。token 已不存在时是幂等的空操作。
func (s *SessionService) Logout(tokenKey string) error {
	return s.db.Where("key = ?", tokenKey).Delete(&models.AuthToken{}).Error
}

func (s *SessionService) mintToken(memberID uint) (*models.AuthToken, error) {
	key, err := auth.NewTokenKey()
	if err != nil {
		return nil, err
	}
	token := models.AuthToken{Key: key, MemberID: memberID}
	if err := s.db.Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}
