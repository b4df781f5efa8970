package rag

import (
	"context"

	"github.com/aihub/textbook-rag/internal/logger"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// apologyAnswer 生成失败时返回的兜底回答
const apologyAnswer = "I apologize, but I encountered an error generating a response. Please try again."

// CompletionClient 生成模型客户端，*openai.Client 满足该接口
type CompletionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Answer RAG查询结果
type Answer struct {
	Answer   string    `json:"answer"`
	Contexts []Context `json:"contexts"`
	Sources  []string  `json:"sources"`
}

// Engine RAG查询引擎：检索 -> 组装提示词 -> 生成
type Engine struct {
	retriever   *Retriever
	client      CompletionClient
	model       string
	temperature float32
	maxTokens   int
	logger      *zap.Logger
}

// NewEngine 创建RAG引擎
func NewEngine(retriever *Retriever, client CompletionClient, model string, temperature float64, maxTokens int) *Engine {
	return &Engine{
		retriever:   retriever,
		client:      client,
		model:       model,
		temperature: float32(temperature),
		maxTokens:   maxTokens,
		logger:      logger.GetLogger(),
	}
}

// Query 执行一次完整的RAG查询
//
// searchQuery 驱动检索（可能已被个性化增强），displayQuery 是
// 提示词里展示给模型的原始问题。生成失败降级为固定道歉文案，
// 不向调用方抛错。
func (e *Engine) Query(ctx context.Context, searchQuery, displayQuery string, history []Turn, selectedText string) *Answer {
	contexts := e.retriever.Retrieve(ctx, searchQuery, selectedText)

	messages := BuildMessages(displayQuery, contexts, history, selectedText)

	resp, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Messages:    messages,
		Temperature: e.temperature,
		MaxTokens:   e.maxTokens,
	})
	if err != nil || len(resp.Choices) == 0 {
		e.logger.Error("completion request failed", zap.Error(err))
		return &Answer{
			Answer:   apologyAnswer,
			Contexts: []Context{},
			Sources:  []string{},
		}
	}

	sources := make([]string, 0, len(contexts))
	for _, c := range contexts {
		name := c.FileName
		if name == "" {
			name = "Unknown"
		}
		sources = append(sources, name)
	}

	return &Answer{
		Answer:   resp.Choices[0].Message.Content,
		Contexts: contexts,
		Sources:  sources,
	}
}
