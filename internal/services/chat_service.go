package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/aihub/textbook-rag/internal/models"
	"github.com/aihub/textbook-rag/internal/personalization"
	"github.com/aihub/textbook-rag/internal/rag"
	"go.uber.org/zap"
)

// storedContextCap 助手消息持久化的检索上下文条数上限，控制存储体积
const storedContextCap = 2

// sessionStore 会话持久化的窄接口，便于测试替换
type sessionStore interface {
	CreateSession(userID string) (*models.ChatSession, error)
	History(sessionID string) ([]models.ChatMessage, error)
	AppendMessage(msg *models.ChatMessage) error
}

// ragEngine RAG查询的窄接口
type ragEngine interface {
	Query(ctx context.Context, searchQuery, displayQuery string, history []rag.Turn, selectedText string) *rag.Answer
}

// answerTranslator 回答翻译的窄接口
type answerTranslator interface {
	Translate(ctx context.Context, text string) string
}

// profileReader 用户背景读取的窄接口
type profileReader interface {
	Backgrounds(userID string) (software, hardware string, err error)
}

// ChatRequest 一次问答请求
type ChatRequest struct {
	SessionID          string
	UserID             string
	Message            string
	SelectedText       string
	SoftwareBackground string
	HardwareBackground string
	Language           string // en 或 ur
}

// ChatResponse 问答结果
type ChatResponse struct {
	SessionID string    `json:"session_id"`
	Message   string    `json:"message"`
	Sources   []string  `json:"sources"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatService 问答管道编排：会话 -> 历史 -> 个性化 -> RAG -> 翻译 -> 持久化
type ChatService struct {
	sessions sessionStore
	profiles profileReader
	engine   ragEngine
	trans    answerTranslator
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewChatService 创建问答服务
func NewChatService(sessions sessionStore, profiles profileReader, engine ragEngine, trans answerTranslator, metrics *MetricsService) *ChatService {
	return &ChatService{
		sessions: sessions,
		profiles: profiles,
		engine:   engine,
		trans:    trans,
		metrics:  metrics,
		logger:   logger.GetLogger(),
	}
}

// Chat 处理一次问答请求
//
// 会话不存在时惰性创建。每个请求是独立的顺序管道，
// 不同会话的管道可以并发执行。
func (s *ChatService) Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error) {
	if s.metrics != nil {
		s.metrics.IncChatRequest()
	}

	sessionID := req.SessionID
	if sessionID == "" {
		session, err := s.sessions.CreateSession(req.UserID)
		if err != nil {
			s.countFailure()
			return nil, err
		}
		sessionID = session.ID
	}

	// 在写入本轮用户消息之前取历史
	history, err := s.sessions.History(sessionID)
	if err != nil {
		s.countFailure()
		return nil, err
	}
	turns := make([]rag.Turn, 0, len(history))
	for _, msg := range history {
		turns = append(turns, rag.Turn{Role: msg.Role, Content: msg.Content})
	}

	userMessage := &models.ChatMessage{
		SessionID:    sessionID,
		Role:         "user",
		Content:      req.Message,
		SelectedText: req.SelectedText,
	}
	if err := s.sessions.AppendMessage(userMessage); err != nil {
		s.countFailure()
		return nil, err
	}

	searchQuery := s.personalizeQuery(req)

	answer := s.engine.Query(ctx, searchQuery, req.Message, turns, req.SelectedText)
	if s.metrics != nil {
		s.metrics.ObserveContexts(len(answer.Contexts))
	}

	responseText := answer.Answer
	if req.Language == "ur" && s.trans != nil {
		responseText = s.trans.Translate(ctx, responseText)
	}

	assistantMessage := &models.ChatMessage{
		SessionID:   sessionID,
		Role:        "assistant",
		Content:     responseText,
		ContextUsed: serializeContexts(answer.Contexts),
	}
	if err := s.sessions.AppendMessage(assistantMessage); err != nil {
		s.countFailure()
		return nil, err
	}

	return &ChatResponse{
		SessionID: sessionID,
		Message:   responseText,
		Sources:   answer.Sources,
		Timestamp: time.Now().UTC(),
	}, nil
}

// personalizeQuery 计算驱动检索的增强查询
// 请求未携带背景时尝试读取用户档案；两者都缺失则不做增强
func (s *ChatService) personalizeQuery(req *ChatRequest) string {
	software := req.SoftwareBackground
	hardware := req.HardwareBackground

	if software == "" && hardware == "" && req.UserID != "" && s.profiles != nil {
		sw, hw, err := s.profiles.Backgrounds(req.UserID)
		if err != nil {
			if !apperrors.IsNotFound(err) {
				s.logger.Warn("failed to load user backgrounds",
					zap.String("user_id", req.UserID), zap.Error(err))
			}
		} else {
			software, hardware = sw, hw
		}
	}

	if software == "" && hardware == "" {
		return req.Message
	}

	return personalization.PersonalizePrompt(req.Message, software, hardware)
}

func (s *ChatService) countFailure() {
	if s.metrics != nil {
		s.metrics.IncChatFailure()
	}
}

// serializeContexts 序列化前storedContextCap条检索上下文作为消息快照
func serializeContexts(contexts []rag.Context) string {
	if len(contexts) > storedContextCap {
		contexts = contexts[:storedContextCap]
	}
	if len(contexts) == 0 {
		return ""
	}
	data, err := json.Marshal(contexts)
	if err != nil {
		return fmt.Sprintf("%v", contexts)
	}
	return string(data)
}
