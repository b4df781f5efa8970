package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/aihub/textbook-rag/internal/models"
	"github.com/aihub/textbook-rag/internal/rag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSessionStore 内存会话存储桩
type fakeSessionStore struct {
	created   []string
	messages  map[string][]models.ChatMessage
	createErr error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{messages: map[string][]models.ChatMessage{}}
}

func (f *fakeSessionStore) CreateSession(userID string) (*models.ChatSession, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	id := "session-" + time.Now().Format("150405.000000000")
	f.created = append(f.created, id)
	return &models.ChatSession{ID: id, UserID: userID}, nil
}

func (f *fakeSessionStore) History(sessionID string) ([]models.ChatMessage, error) {
	return f.messages[sessionID], nil
}

func (f *fakeSessionStore) AppendMessage(msg *models.ChatMessage) error {
	f.messages[msg.SessionID] = append(f.messages[msg.SessionID], *msg)
	return nil
}

// fakeRAGEngine 记录调用参数的RAG引擎桩
type fakeRAGEngine struct {
	answer      *rag.Answer
	searchQuery string
	display     string
	history     []rag.Turn
	selected    string
}

func (f *fakeRAGEngine) Query(ctx context.Context, searchQuery, displayQuery string, history []rag.Turn, selectedText string) *rag.Answer {
	f.searchQuery = searchQuery
	f.display = displayQuery
	f.history = history
	f.selected = selectedText
	if f.answer != nil {
		return f.answer
	}
	return &rag.Answer{Answer: "stub answer", Contexts: []rag.Context{}, Sources: []string{}}
}

// fakeTranslator 前缀标记的翻译桩
type fakeTranslator struct {
	calls int
}

func (f *fakeTranslator) Translate(ctx context.Context, text string) string {
	f.calls++
	return "[ur]" + text
}

// fakeProfiles 固定背景的档案桩
type fakeProfiles struct {
	software string
	hardware string
	err      error
	queried  []string
}

func (f *fakeProfiles) Backgrounds(userID string) (string, string, error) {
	f.queried = append(f.queried, userID)
	return f.software, f.hardware, f.err
}

func newTestChatService(store *fakeSessionStore, engine *fakeRAGEngine, trans answerTranslator, profiles profileReader) *ChatService {
	return NewChatService(store, profiles, engine, trans, nil)
}

// TestChatLazySessionCreation 测试未携带会话ID时惰性创建
func TestChatLazySessionCreation(t *testing.T) {
	store := newFakeSessionStore()
	engine := &fakeRAGEngine{}
	svc := newTestChatService(store, engine, nil, nil)

	resp, err := svc.Chat(context.Background(), &ChatRequest{UserID: "u-1", Message: "hi"})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	assert.Equal(t, store.created[0], resp.SessionID)
}

// TestChatReusesExistingSession 测试携带会话ID时不再创建
func TestChatReusesExistingSession(t *testing.T) {
	store := newFakeSessionStore()
	svc := newTestChatService(store, &fakeRAGEngine{}, nil, nil)

	resp, err := svc.Chat(context.Background(), &ChatRequest{SessionID: "s-1", Message: "hi"})
	require.NoError(t, err)

	assert.Empty(t, store.created)
	assert.Equal(t, "s-1", resp.SessionID)
}

// TestChatHistoryExcludesCurrentTurn 测试历史快照不含本轮用户消息
func TestChatHistoryExcludesCurrentTurn(t *testing.T) {
	store := newFakeSessionStore()
	store.messages["s-1"] = []models.ChatMessage{
		{SessionID: "s-1", Role: "user", Content: "earlier question"},
		{SessionID: "s-1", Role: "assistant", Content: "earlier answer"},
	}
	engine := &fakeRAGEngine{}
	svc := newTestChatService(store, engine, nil, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{SessionID: "s-1", Message: "new question"})
	require.NoError(t, err)

	require.Len(t, engine.history, 2)
	assert.Equal(t, "earlier question", engine.history[0].Content)
	assert.Equal(t, "earlier answer", engine.history[1].Content)
}

// TestChatPersistsBothTurns 测试用户与助手消息都被持久化
func TestChatPersistsBothTurns(t *testing.T) {
	store := newFakeSessionStore()
	engine := &fakeRAGEngine{answer: &rag.Answer{
		Answer:  "the answer",
		Sources: []string{"a.md"},
		Contexts: []rag.Context{
			{Text: "ctx", FileName: "a.md", Score: 0.9},
		},
	}}
	svc := newTestChatService(store, engine, nil, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{
		SessionID:    "s-1",
		Message:      "question",
		SelectedText: "selected paragraph",
	})
	require.NoError(t, err)

	msgs := store.messages["s-1"]
	require.Len(t, msgs, 2)

	assert.Equal(t, "user", msgs[0].Role)
	assert.Equal(t, "question", msgs[0].Content)
	assert.Equal(t, "selected paragraph", msgs[0].SelectedText)

	assert.Equal(t, "assistant", msgs[1].Role)
	assert.Equal(t, "the answer", msgs[1].Content)
	assert.NotEmpty(t, msgs[1].ContextUsed)
}

// TestChatContextSnapshotCap 测试助手消息只保留前2条上下文快照
func TestChatContextSnapshotCap(t *testing.T) {
	store := newFakeSessionStore()
	engine := &fakeRAGEngine{answer: &rag.Answer{
		Answer: "ans",
		Contexts: []rag.Context{
			{Text: "c1", FileName: "1.md"},
			{Text: "c2", FileName: "2.md"},
			{Text: "c3", FileName: "3.md"},
			{Text: "c4", FileName: "4.md"},
		},
	}}
	svc := newTestChatService(store, engine, nil, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{SessionID: "s-1", Message: "q"})
	require.NoError(t, err)

	var snapshot []rag.Context
	require.NoError(t, json.Unmarshal([]byte(store.messages["s-1"][1].ContextUsed), &snapshot))
	require.Len(t, snapshot, 2)
	assert.Equal(t, "c1", snapshot[0].Text)
	assert.Equal(t, "c2", snapshot[1].Text)
}

// TestChatPersonalizationFromRequest 测试请求携带背景时增强检索查询
func TestChatPersonalizationFromRequest(t *testing.T) {
	engine := &fakeRAGEngine{}
	svc := newTestChatService(newFakeSessionStore(), engine, nil, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{
		SessionID:          "s-1",
		Message:            "what is a node",
		SoftwareBackground: "beginner",
		HardwareBackground: "beginner",
	})
	require.NoError(t, err)

	// 检索用增强查询，展示用原始问题
	assert.Contains(t, engine.searchQuery, "PERSONALIZATION CONTEXT:")
	assert.Contains(t, engine.searchQuery, "USER QUERY: what is a node")
	assert.Equal(t, "what is a node", engine.display)
}

// TestChatPersonalizationFromProfile 测试请求未携带背景时回落用户档案
func TestChatPersonalizationFromProfile(t *testing.T) {
	engine := &fakeRAGEngine{}
	profiles := &fakeProfiles{software: "advanced", hardware: "advanced"}
	svc := newTestChatService(newFakeSessionStore(), engine, nil, profiles)

	_, err := svc.Chat(context.Background(), &ChatRequest{
		SessionID: "s-1",
		UserID:    "u-1",
		Message:   "explain QoS",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"u-1"}, profiles.queried)
	assert.Contains(t, engine.searchQuery, "For advanced users:")
}

// TestChatNoPersonalization 测试无背景来源时不做增强
func TestChatNoPersonalization(t *testing.T) {
	engine := &fakeRAGEngine{}
	svc := newTestChatService(newFakeSessionStore(), engine, nil, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{SessionID: "s-1", Message: "plain"})
	require.NoError(t, err)

	assert.Equal(t, "plain", engine.searchQuery)
}

// TestChatUrduTranslation 测试language=ur时翻译回答
func TestChatUrduTranslation(t *testing.T) {
	store := newFakeSessionStore()
	trans := &fakeTranslator{}
	engine := &fakeRAGEngine{answer: &rag.Answer{Answer: "english answer"}}
	svc := newTestChatService(store, engine, trans, nil)

	resp, err := svc.Chat(context.Background(), &ChatRequest{
		SessionID: "s-1", Message: "q", Language: "ur"})
	require.NoError(t, err)

	assert.Equal(t, "[ur]english answer", resp.Message)
	assert.Equal(t, 1, trans.calls)
	// 持久化的也是译文
	assert.Equal(t, "[ur]english answer", store.messages["s-1"][1].Content)
}

// TestChatEnglishSkipsTranslation 测试默认语言不触发翻译
func TestChatEnglishSkipsTranslation(t *testing.T) {
	trans := &fakeTranslator{}
	svc := newTestChatService(newFakeSessionStore(), &fakeRAGEngine{}, trans, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{SessionID: "s-1", Message: "q"})
	require.NoError(t, err)
	assert.Equal(t, 0, trans.calls)
}

// TestChatSessionCreateFailure 测试会话创建失败时直接返回错误
func TestChatSessionCreateFailure(t *testing.T) {
	store := newFakeSessionStore()
	store.createErr = errors.New("db down")
	svc := newTestChatService(store, &fakeRAGEngine{}, nil, nil)

	_, err := svc.Chat(context.Background(), &ChatRequest{Message: "q"})
	assert.Error(t, err)
}
