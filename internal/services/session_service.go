package services

import (
	"errors"
	"fmt"
	"time"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/aihub/textbook-rag/internal/models"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// SessionService 会话与消息的持久化服务
// 消息只追加，历史重建完全依赖created_at排序
type SessionService struct {
	db *gorm.DB
}

// NewSessionService 创建会话服务
func NewSessionService(db *gorm.DB) *SessionService {
	return &SessionService{db: db}
}

// CreateSession 创建新会话，userID可为空
func (s *SessionService) CreateSession(userID string) (*models.ChatSession, error) {
	now := time.Now().UTC()
	session := &models.ChatSession{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.db.Create(session).Error; err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// GetSession 按ID查询会话，不存在时返回not-found错误
func (s *SessionService) GetSession(sessionID string) (*models.ChatSession, error) {
	var session models.ChatSession
	if err := s.db.Where("id = ?", sessionID).First(&session).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewSessionNotFound(sessionID)
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}
	return &session, nil
}

// History 按创建时间升序返回会话的全部消息
// 会话不存在或已删除时返回空序列而不是错误
func (s *SessionService) History(sessionID string) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := s.db.
		Where("session_id = ?", sessionID).
		Order("created_at ASC").
		Find(&messages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	return messages, nil
}

// AppendMessage 向会话追加一条消息并刷新会话更新时间
func (s *SessionService) AppendMessage(msg *models.ChatMessage) error {
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now().UTC()
	}

	if err := s.db.Create(msg).Error; err != nil {
		return fmt.Errorf("failed to append message: %w", err)
	}

	// 消息已落库，会话时间戳刷新失败不影响追加结果
	if err := s.db.Model(&models.ChatSession{}).
		Where("id = ?", msg.SessionID).
		Update("updated_at", msg.CreatedAt).Error; err != nil {
		logger.Warn("failed to refresh session updated_at",
			zap.String("session_id", msg.SessionID), zap.Error(err))
	}

	return nil
}

// DeleteSession 删除会话及其全部消息，不允许残留孤儿消息
func (s *SessionService) DeleteSession(sessionID string) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("session_id = ?", sessionID).Delete(&models.ChatMessage{}).Error; err != nil {
			return fmt.Errorf("failed to delete messages: %w", err)
		}
		if err := tx.Where("id = ?", sessionID).Delete(&models.ChatSession{}).Error; err != nil {
			return fmt.Errorf("failed to delete session: %w", err)
		}
		return nil
	})
}
