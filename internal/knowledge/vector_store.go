package knowledge

import "context"

// ChunkPayload 随向量一起持久化的片段元数据
type ChunkPayload struct {
	Text       string `json:"text"`
	FilePath   string `json:"file_path"`
	FileName   string `json:"file_name"`
	Source     string `json:"source"`
	Module     string `json:"module,omitempty"`
	ChunkIndex int    `json:"chunk_index"`
}

// IndexPoint 一条待写入向量库的记录
// ID 在单次摄取内单调递增，跨摄取运行不保证稳定
type IndexPoint struct {
	ID      uint64
	Vector  []float32
	Payload ChunkPayload
}

// SearchHit 向量检索命中结果，按相似度降序返回
type SearchHit struct {
	Payload ChunkPayload
	Score   float64
}

// VectorStore 向量存储抽象
type VectorStore interface {
	// EnsureCollection 按指定维度创建集合，已存在时静默跳过
	EnsureCollection(ctx context.Context, name string, dim int) error
	// Upsert 批量写入向量点
	Upsert(ctx context.Context, name string, points []IndexPoint) error
	// Search 返回与查询向量最相似的前limit条记录
	Search(ctx context.Context, name string, vector []float32, limit int) ([]SearchHit, error)
	// Count 返回集合内的向量点数量，用于健康检查
	Count(ctx context.Context, name string) (int64, error)
	Ready() bool
}
