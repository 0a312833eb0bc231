package models

import "time"

type Member struct {
	ID           uint   `gorm:"primaryKey"`
	Nickname     string `gorm:"uniqueIndex;size:50;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthToken 是不透明的持有者凭证，一个成员可以同时持有多个（多端登录）。
type AuthToken struct {
	ID        uint   `gorm:"primaryKey"`
	Key       string `gorm:"uniqueIndex;size:40;not null"`
	MemberID  uint   `gorm:"index;not null"`
	CreatedAt time.Time
}

type Room struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"uniqueIndex;size:128;not null"`
	CreatedAt time.Time
}

type Message struct {
	ID        uint   `gorm:"primaryKey"`
	RoomID    uint   `gorm:"index:idx_msg_room_id;not null"`
	MemberID  uint   `gorm:"index;not null"`
	Text      string `gorm:"type:text;not null"`
	CreatedAt time.Time
}
