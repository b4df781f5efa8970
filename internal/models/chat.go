package models

import (
	"time"
)

// ChatSession 会话表
// 会话一经创建不会过期，消息按创建时间追加
type ChatSession struct {
	ID        string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	UserID    string    `gorm:"column:user_id;size:64;index" json:"user_id,omitempty"`
	Title     string    `gorm:"column:title;size:255" json:"title,omitempty"`
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

func (ChatSession) TableName() string {
	return "chat_sessions"
}

// ChatMessage 会话消息表
// 历史重建只依赖created_at排序
type ChatMessage struct {
	ID           uint      `gorm:"primaryKey;column:id" json:"id"`
	SessionID    string    `gorm:"column:session_id;size:64;not null;index" json:"session_id"`
	Role         string    `gorm:"column:role;size:20;not null" json:"role"` // user, assistant
	Content      string    `gorm:"type:text;not null" json:"content"`
	SelectedText string    `gorm:"type:text;column:selected_text" json:"selected_text,omitempty"` // 用户划选的原文片段
	ContextUsed  string    `gorm:"type:text;column:context_used" json:"context_used,omitempty"`   // 回答使用的检索上下文快照
	CreatedAt    time.Time `gorm:"column:created_at;not null;index" json:"created_at"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
