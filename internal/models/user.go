package models

import (
	"time"
)

// 背景等级取值，个性化按两者中较低的一档生效
const (
	LevelBeginner     = "beginner"
	LevelIntermediate = "intermediate"
	LevelAdvanced     = "advanced"
)

// UserProfile 用户档案表
// 密码哈希由外部认证服务写入，本服务只读背景字段
type UserProfile struct {
	ID                 string    `gorm:"primaryKey;column:id;size:64" json:"id"`
	Email              string    `gorm:"column:email;size:200;uniqueIndex" json:"email,omitempty"`
	Name               string    `gorm:"column:name;size:100" json:"name,omitempty"`
	PasswordHash       string    `gorm:"column:password_hash;size:255;not null" json:"-"`
	SoftwareBackground string    `gorm:"column:software_background;size:20" json:"software_background,omitempty"`
	HardwareBackground string    `gorm:"column:hardware_background;size:20" json:"hardware_background,omitempty"`
	CreatedAt          time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
