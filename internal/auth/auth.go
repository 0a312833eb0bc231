package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"memberchat/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Scheme 是 Authorization 头要求的固定前缀，大小写敏感。
const Scheme = "Token"

var (
	ErrMalformedHeader = errors.New(`invalid Authorization header, expected value "Token <key>"`)
	ErrInvalidToken    = errors.New("invalid token")
)

const (
	ctxMemberKey = "authMember"
	ctxTokenKey  = "authToken"
)

func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	return string(b), err
}

func VerifyPassword(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NewTokenKey 生成 40 个十六进制字符的随机 token key。
func NewTokenKey() (string, error) {
	b := make([]byte, 20)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// ParseHeader 解析 Authorization 头。头缺失时返回 ok=false 且无错误，
// 表示"未认证"而非"认证失败"；格式不对（字段数不是 2 或 scheme 不匹配）
// 返回 ErrMalformedHeader。
func ParseHeader(value string) (key string, ok bool, err error) {
	if value == "" {
		return "", false, nil
	}
	parts := strings.Fields(value)
	if len(parts) != 2 || parts[0] != Scheme {
		return "", false, ErrMalformedHeader
	}
	return parts[1], true, nil
}

// Middleware 解析并校验 Authorization 头。没有携带头的请求以未认证身份
// 放行，是否强制登录由 RequireMember 决定；携带了头但格式错误或 key
// 不存在的请求直接 401。
func Middleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		key, ok, err := ParseHeader(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		if !ok {
			c.Next()
			return
		}
		var token models.AuthToken
		if err := db.Where("key = ?", key).First(&token).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			return
		}
		var member models.Member
		if err := db.First(&member, token.MemberID).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			return
		}
		c.Set(ctxMemberKey, member)
		c.Set(ctxTokenKey, token)
		c.Next()
	}
}

// RequireMember 拦截未认证的请求，必须排在 Middleware 之后。
func RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentMember(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication credentials were not provided"})
			return
		}
		c.Next()
	}
}

// CurrentMember 返回 Middleware 解析出的当前成员。
func CurrentMember(c *gin.Context) (models.Member, bool) {
	v, ok := c.Get(ctxMemberKey)
	if !ok {
		return models.Member{}, false
	}
	m, ok := v.(models.Member)
	return m, ok
}

// CurrentToken 返回当前请求携带的 token 行。
func CurrentToken(c *gin.Context) (models.AuthToken, bool) {
	v, ok := c.Get(ctxTokenKey)
	if !ok {
		return models.AuthToken{}, false
	}
	t, ok := v.(models.AuthToken)
	return t, ok
}
