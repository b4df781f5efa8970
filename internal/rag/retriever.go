package rag

import (
	"context"
	"fmt"

	"github.com/aihub/textbook-rag/internal/knowledge"
	"github.com/aihub/textbook-rag/internal/logger"
	"go.uber.org/zap"
)

// Context 一条检索命中的教材片段
type Context struct {
	Text     string  `json:"text"`
	FileName string  `json:"file_name"`
	Module   string  `json:"module,omitempty"`
	Score    float64 `json:"score"`
}

// Retriever 相似度检索器
type Retriever struct {
	embedder   knowledge.Embedder
	store      knowledge.VectorStore
	collection string
	topK       int
	logger     *zap.Logger
}

// NewRetriever 创建检索器
func NewRetriever(embedder knowledge.Embedder, store knowledge.VectorStore, collection string, topK int) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	return &Retriever{
		embedder:   embedder,
		store:      store,
		collection: collection,
		topK:       topK,
		logger:     logger.GetLogger(),
	}
}

// Retrieve 检索与问题最相关的教材片段，按相似度降序返回
//
// selectedText 非空时检索向量由划选片段和问题拼接计算，
// 使检索偏向用户正在阅读的段落。
// 向量化失败返回空结果而不是错误：无上下文对生成来说是合法输入。
func (r *Retriever) Retrieve(ctx context.Context, query, selectedText string) []Context {
	searchQuery := query
	if selectedText != "" {
		searchQuery = fmt.Sprintf("%s\n\nQuestion: %s", selectedText, query)
	}

	vector, err := r.embedder.Embed(ctx, searchQuery)
	if err != nil || len(vector) == 0 {
		r.logger.Warn("query embedding failed, returning no context", zap.Error(err))
		return nil
	}

	hits, err := r.store.Search(ctx, r.collection, vector, r.topK)
	if err != nil {
		r.logger.Error("vector search failed", zap.Error(err))
		return nil
	}

	// 不做重排、去重和阈值过滤，最近邻顺序即最终顺序
	contexts := make([]Context, 0, len(hits))
	for _, hit := range hits {
		contexts = append(contexts, Context{
			Text:     hit.Payload.Text,
			FileName: hit.Payload.FileName,
			Module:   hit.Payload.Module,
			Score:    hit.Score,
		})
	}

	return contexts
}
