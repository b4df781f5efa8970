package knowledge

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	apperrors "github.com/aihub/textbook-rag/internal/errors"
	"github.com/aihub/textbook-rag/internal/logger"
	"go.uber.org/zap"
)

const (
	// uploadBatchSize 向量库批量写入大小
	uploadBatchSize = 100

	// corpusSource 片段来源标记
	corpusSource = "Physical AI & Humanoid Robotics Textbook"
)

// Ingestor 语料摄取管道：遍历语料目录，切分、向量化并写入向量库
//
// 重复摄取同一语料不做去重：每次运行都会以新的ID追加记录，
// 旧记录不会被清理，属既有行为而非缺陷。
type Ingestor struct {
	chunker    *Chunker
	embedder   Embedder
	store      VectorStore
	collection string
	metrics    IngestMetrics
	logger     *zap.Logger
}

// IngestMetrics 摄取指标采集，可为nil
type IngestMetrics interface {
	CountIngestedChunk(status string)
}

// NewIngestor 创建摄取管道
func NewIngestor(chunker *Chunker, embedder Embedder, store VectorStore, collection string) *Ingestor {
	return &Ingestor{
		chunker:    chunker,
		embedder:   embedder,
		store:      store,
		collection: collection,
		logger:     logger.GetLogger(),
	}
}

// WithMetrics 挂接指标采集
func (ing *Ingestor) WithMetrics(metrics IngestMetrics) *Ingestor {
	ing.metrics = metrics
	return ing
}

// IngestStats 单次摄取运行的统计
type IngestStats struct {
	Files         int
	Chunks        int
	EmbedFailures int
	Uploaded      int
}

// EmbedAndStore 处理语料目录下的所有markdown文件并入库
//
// 单个片段向量化失败只跳过该片段，不中断整个批次；
// 批量上传失败则停止剩余批次，已上传的批次不回滚（至少一次语义）。
func (ing *Ingestor) EmbedAndStore(ctx context.Context, corpusRoot string) (*IngestStats, error) {
	if err := ing.store.EnsureCollection(ctx, ing.collection, ing.embedder.Dimensions()); err != nil {
		return nil, apperrors.NewExternalService("vector store", err)
	}

	files, err := listMarkdownFiles(corpusRoot)
	if err != nil {
		return nil, err
	}
	ing.logger.Info("corpus enumerated",
		zap.String("root", corpusRoot),
		zap.Int("files", len(files)))

	stats := &IngestStats{Files: len(files)}

	var points []IndexPoint
	var pointID uint64

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			ing.logger.Warn("failed to read document, skipping",
				zap.String("path", path), zap.Error(err))
			continue
		}

		meta := buildDocumentMeta(path)
		chunks := ing.chunker.Split(string(raw))
		stats.Chunks += len(chunks)

		for _, chunk := range chunks {
			vector, err := ing.embedder.Embed(ctx, chunk.Text)
			if err != nil || len(vector) == 0 {
				// 单片段失败静默降级，该片段不入库
				stats.EmbedFailures++
				if ing.metrics != nil {
					ing.metrics.CountIngestedChunk("embed_failed")
				}
				ing.logger.Warn("chunk embedding failed, excluded from index",
					zap.String("file", meta.FileName),
					zap.Int("chunk_index", chunk.Index),
					zap.Error(err))
				continue
			}
			if ing.metrics != nil {
				ing.metrics.CountIngestedChunk("indexed")
			}

			payload := meta
			payload.Text = chunk.Text
			payload.ChunkIndex = chunk.Index

			points = append(points, IndexPoint{
				ID:      pointID,
				Vector:  vector,
				Payload: payload,
			})
			pointID++
		}
	}

	for batchNum := 0; batchNum*uploadBatchSize < len(points); batchNum++ {
		start := batchNum * uploadBatchSize
		end := start + uploadBatchSize
		if end > len(points) {
			end = len(points)
		}

		if err := ing.store.Upsert(ctx, ing.collection, points[start:end]); err != nil {
			// 已上传的批次不回滚
			return stats, apperrors.NewPartialIngest(batchNum+1, err)
		}
		stats.Uploaded += end - start
		ing.logger.Info("uploaded batch", zap.Int("batch", batchNum+1))
	}

	ing.logger.Info("ingestion finished",
		zap.Int("files", stats.Files),
		zap.Int("chunks", stats.Chunks),
		zap.Int("embed_failures", stats.EmbedFailures),
		zap.Int("uploaded", stats.Uploaded))

	return stats, nil
}

// buildDocumentMeta 从文件路径推导片段元数据
func buildDocumentMeta(path string) ChunkPayload {
	module, _ := ClassifyModule(path)

	return ChunkPayload{
		FilePath: relativeDocPath(path),
		FileName: filepath.Base(path),
		Source:   corpusSource,
		Module:   module,
	}
}

// relativeDocPath 保留路径末尾三段作为展示用相对路径
func relativeDocPath(path string) string {
	parts := strings.Split(filepath.ToSlash(path), "/")
	if len(parts) > 3 {
		parts = parts[len(parts)-3:]
	}
	return strings.Join(parts, string(filepath.Separator))
}

func listMarkdownFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}
