package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"memberchat/internal/auth"
	"memberchat/internal/metrics"
	"memberchat/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const (
	// 昵称按字符数计，密码按字节数计：bcrypt 只接受 72 字节以内的输入。
	maxNicknameLen = 50
	maxPasswordLen = 72
)

// Handler 聚合所有 HTTP handler，依赖注入 service 层。
type Handler struct {
	sessionSvc *service.SessionService
	chatSvc    *service.ChatService
	profileSvc *service.ProfileService
}

func NewHandler(sessionSvc *service.SessionService, chatSvc *service.ChatService, profileSvc *service.ProfileService) *Handler {
	return &Handler{sessionSvc: sessionSvc, chatSvc: chatSvc, profileSvc: profileSvc}
}

// validationError 以字段为 key 输出 400 错误体。
func validationError(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"errors": gin.H{field: msg}})
}

// Hello 是不需要认证的冒烟接口。
func (h *Handler) Hello(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Hello!", "timestamp": time.Now().UTC()})
}

// Register 处理成员注册请求。
func (h *Handler) Register(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "non_field_errors", "invalid payload")
		return
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" {
		validationError(c, "nickname", "nickname is required")
		return
	}
	if utf8.RuneCountInString(req.Nickname) > maxNicknameLen {
		validationError(c, "nickname", "nickname is too long")
		return
	}
	if req.Password == "" {
		validationError(c, "password", "password is required")
		return
	}
	if len(req.Password) > maxPasswordLen {
		validationError(c, "password", "password is too long")
		return
	}
	result, err := h.sessionSvc.Register(req.Nickname, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrDuplicateNickname) {
			validationError(c, "nickname", "nickname is already taken")
			return
		}
		log.Error().Err(err).Str("nickname", req.Nickname).Msg("register")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to register member"})
		return
	}
	metrics.MembersRegisteredTotal.Inc()
	c.JSON(http.StatusCreated, result)
}

// Login 处理登录请求。
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Nickname string `json:"nickname"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "non_field_errors", "invalid payload")
		return
	}
	req.Nickname = strings.TrimSpace(req.Nickname)
	if req.Nickname == "" || req.Password == "" {
		validationError(c, "non_field_errors", "nickname and password are required")
		return
	}
	result, err := h.sessionSvc.Login(req.Nickname, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			validationError(c, "non_field_errors", "invalid credentials")
			return
		}
		log.Error().Err(err).Str("nickname", req.Nickname).Msg("login")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Me 返回当前认证成员。
func (h *Handler) Me(c *gin.Context) {
	member, _ := auth.CurrentMember(c)
	c.JSON(http.StatusOK, service.NewMemberView(member))
}

// Logout 删除当前请求携带的 token。
func (h *Handler) Logout(c *gin.Context) {
	token, _ := auth.CurrentToken(c)
	if err := h.sessionSvc.Logout(token.Key); err != nil {
		log.Error().Err(err).Uint("member_id", token.MemberID).Msg("logout")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// ListMessages 处理全局房间的消息历史查询。after_id 和 limit 不合法时
// 按约定回落到默认行为，不报错。
func (h *Handler) ListMessages(c *gin.Context) {
	var afterID uint
	if v := c.Query("after_id"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			afterID = uint(n)
		}
	}
	limit := 0
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	msgs, err := h.chatSvc.ListMessages(afterID, limit)
	if err != nil {
		log.Error().Err(err).Msg("list messages")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list messages"})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// PostMessage 处理发消息请求。
func (h *Handler) PostMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "non_field_errors", "invalid payload")
		return
	}
	member, _ := auth.CurrentMember(c)
	msg, err := h.chatSvc.PostMessage(member, req.Text)
	if err != nil {
		if errors.Is(err, service.ErrEmptyText) {
			validationError(c, "text", "text must not be empty")
			return
		}
		if errors.Is(err, service.ErrTextTooLong) {
			validationError(c, "text", "text is too long")
			return
		}
		log.Error().Err(err).Uint("member_id", member.ID).Msg("post message")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to post message"})
		return
	}
	metrics.MessagesPostedTotal.Inc()
	c.JSON(http.StatusCreated, msg)
}

// GetProfile 返回当前成员的资料。
func (h *Handler) GetProfile(c *gin.Context) {
	member, _ := auth.CurrentMember(c)
	c.JSON(http.StatusOK, h.profileSvc.Get(member))
}

// UpdateProfile 处理资料修改。PUT 是全量更新，昵称必填；PATCH 只应用
// 提供了的字段。
func (h *Handler) UpdateProfile(c *gin.Context) {
	var req struct {
		Nickname    *string `json:"nickname"`
		OldPassword string  `json:"old_password"`
		NewPassword string  `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		validationError(c, "non_field_errors", "invalid payload")
		return
	}
	if req.Nickname == nil && c.Request.Method == http.MethodPut {
		validationError(c, "nickname", "nickname is required")
		return
	}
	if req.Nickname != nil {
		trimmed := strings.TrimSpace(*req.Nickname)
		if trimmed == "" {
			validationError(c, "nickname", "nickname is required")
			return
		}
		if utf8.RuneCountInString(trimmed) > maxNicknameLen {
			validationError(c, "nickname", "nickname is too long")
			return
		}
		req.Nickname = &trimmed
	}
	if req.NewPassword != "" && len(req.NewPassword) > maxPasswordLen {
		validationError(c, "new_password", "password is too long")
		return
	}
	member, _ := auth.CurrentMember(c)
	view, err := h.profileSvc.Update(member, service.ProfileUpdate{
		Nickname:    req.Nickname,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateNickname):
			validationError(c, "nickname", "nickname is already taken")
		case errors.Is(err, service.ErrWrongOldPassword):
			validationError(c, "old_password", "old password does not match")
		default:
			log.Error().Err(err).Uint("member_id", member.ID).Msg("update profile")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		}
		return
	}
	c.JSON(http.StatusOK, view)
}
