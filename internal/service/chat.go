package service

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"memberchat/internal/models"

	"gorm.io/gorm"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
	maxTextRunes    = 10000
)

// ChatService 封装全局聊天室的消息业务逻辑。房间名来自配置，
// 在服务构造时注入，不在进程内缓存房间行本身。
type ChatService struct {
	db       *gorm.DB
	roomName string
}

func NewChatService(db *gorm.DB, roomName string) *ChatService {
	return &ChatService{db: db, roomName: roomName}
}

// AuthorView 是消息里嵌入的作者数据。
type AuthorView struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
}

// MessageView 是对外输出的消息数据。
type MessageView struct {
	ID        uint       `json:"id"`
	Text      string     `json:"text"`
	CreatedAt time.Time  `json:"created_at"`
	Author    AuthorView `json:"author"`
	RoomID    uint       `json:"room_id"`
}

// room 按配置的名字查找全局房间，不存在则创建。并发创建依赖房间名上的
// 唯一索引兜底：撞上唯一冲突说明别人刚建好，重新查一次即可。
func (s *ChatService) room() (*models.Room, error) {
	var room models.Room
	err := s.db.Where("name = ?", s.roomName).First(&room).Error
	if err == nil {
		return &room, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	room = models.Room{Name: s.roomName}
	if err := s.db.Create(&room).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if err := s.db.Where("name = ?", s.roomName).First(&room).Error; err != nil {
				return nil, err
			}
			return &room, nil
		}
		return nil, err
	}
	return &room, nil
}

// ListMessages 按 id 升序返回全局房间的消息。afterID 大于 0 时只返回
// id 严格大于它的消息；limit 非正时回落到默认值 50，超过 200 时压到 200。
// 没有匹配的消息返回空切片，不算错误。
func (s *ChatService) ListMessages(afterID uint, limit int) ([]MessageView, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	room, err := s.room()
	if err != nil {
		return nil, err
	}

	q := s.db.Where("room_id = ?", room.ID)
	if afterID > 0 {
		q = q.Where("id > ?", afterID)
	}
	var msgs []models.Message
	if err := q.Order("id asc").Limit(limit).Find(&msgs).Error; err != nil {
		return nil, err
	}

	// 批量获取作者昵称
	nicknames, err := s.resolveNicknames(msgs)
	if err != nil {
		return nil, err
	}

	out := make([]MessageView, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageView{
			ID:        m.ID,
			Text:      m.Text,
			CreatedAt: m.CreatedAt,
			Author:    AuthorView{ID: m.MemberID, Nickname: nicknames[m.MemberID]},
			RoomID:    m.RoomID,
		})
	}
	return out, nil
}

// PostMessage 向全局房间追加一条消息，返回带有已分配 id 的视图。
// 长度上限按去掉首尾空白后的字符数计。
func (s *ChatService) PostMessage(author models.Member, text string) (*MessageView, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}
	if utf8.RuneCountInString(text) > maxTextRunes {
		return nil, ErrTextTooLong
	}
	room, err := s.room()
	if err != nil {
		return nil, err
	}
	msg := models.Message{RoomID: room.ID, MemberID: author.ID, Text: text}
	if err := s.db.Create(&msg).Error; err != nil {
		return nil, err
	}
	return &MessageView{
		ID:        msg.ID,
		Text:      msg.Text,
		CreatedAt: msg.CreatedAt,
		Author:    AuthorView{ID: author.ID, Nickname: author.Nickname},
		RoomID:    msg.RoomID,
	}, nil
}

// resolveNicknames 批量获取消息涉及的作者昵称。
func (s *ChatService) resolveNicknames(msgs []models.Message) (map[uint]string, error) {
	seen := make(map[uint]struct{}, len(msgs))
	memberIDs := make([]uint, 0, len(msgs))
	for _, m := range msgs {
		if _, ok := seen[m.MemberID]; ok {
			continue
		}
		seen[m.MemberID] = struct{}{}
		memberIDs = append(memberIDs, m.MemberID)
	}

	nicknames := make(map[uint]string, len(memberIDs))
	if len(memberIDs) > 0 {
		var members []models.Member
		if err := s.db.Select("id", "nickname").Where("id IN ?", memberIDs).Find(&members).Error; err != nil {
			return nil, err
		}
		for _, m := range members {
			nicknames[m.ID] = m.Nickname
		}
	}
	return nicknames, nil
}
