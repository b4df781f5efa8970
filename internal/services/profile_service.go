package services

import (
	"errors"
	"fmt"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/models"
	"gorm.io/gorm"
)

// ProfileService 用户档案只读访问
// 档案由外部认证服务维护，本服务只读取背景等级
type ProfileService struct {
	db *gorm.DB
}

// NewProfileService 创建用户档案服务
func NewProfileService(db *gorm.DB) *ProfileService {
	return &ProfileService{db: db}
}

// GetProfile 按用户ID读取档案，不存在时返回not-found错误
func (s *ProfileService) GetProfile(userID string) (*models.UserProfile, error) {
	var profile models.UserProfile
	if err := s.db.Where("id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewUserNotFound(userID)
		}
		return nil, fmt.Errorf("failed to query user profile: %w", err)
	}
	return &profile, nil
}

// Backgrounds 读取用户的软硬件背景等级
func (s *ProfileService) Backgrounds(userID string) (software, hardware string, err error) {
	profile, err := s.GetProfile(userID)
	if err != nil {
		return "", "", err
	}
	return profile.SoftwareBackground, profile.HardwareBackground, nil
}
