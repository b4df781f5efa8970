package knowledge

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aihub/textbook-rag/internal/logger"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address  string
	Username string
	Password string
	Database string
	Distance string
	UseTLS   bool
	Timeout  time.Duration
}

type milvusVectorStore struct {
	milvusClient client.Client
	distance     string
}

// NewMilvusVectorStore 创建Milvus向量存储
func NewMilvusVectorStore(opts MilvusOptions) (VectorStore, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Distance == "" {
		opts.Distance = "COSINE"
	}

	milvusClient, err := client.NewClient(
		context.Background(),
		client.Config{
			Address:       opts.Address,
			DBName:        opts.Database,
			Username:      opts.Username,
			Password:      opts.Password,
			EnableTLSAuth: opts.UseTLS,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	return &milvusVectorStore{
		milvusClient: milvusClient,
		distance:     formatMilvusDistance(opts.Distance),
	}, nil
}

func formatMilvusDistance(value string) string {
	switch strings.ToUpper(value) {
	case "DOT", "IP", "INNER_PRODUCT":
		return "IP"
	case "L2", "EUCLIDEAN":
		return "L2"
	default:
		return "COSINE"
	}
}

func (s *milvusVectorStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if hasCollection {
		return nil
	}

	schema := &entity.Schema{
		CollectionName: name,
		Description:    "textbook corpus chunk vectors",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeInt64,
				PrimaryKey: true,
				AutoID:     false,
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "65535",
				},
			},
			{
				Name:     "file_path",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "file_name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "module",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "512",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", dim),
				},
			},
		},
	}

	if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	// 创建索引，HNSW失败时退回IVF_FLAT
	var index entity.Index
	index, indexErr := entity.NewIndexHNSW(entity.MetricType(s.distance), 8, 64)
	if indexErr != nil {
		index, indexErr = entity.NewIndexIvfFlat(entity.MetricType(s.distance), 128)
		if indexErr != nil {
			return fmt.Errorf("failed to create index: %w", indexErr)
		}
	}
	if err := s.milvusClient.CreateIndex(ctx, name, "vector", index, false); err != nil {
		// 索引创建失败不影响写入，只记录
		logger.Warn("failed to create milvus index",
			zap.String("collection", name), zap.Error(err))
	}

	return nil
}

func (s *milvusVectorStore) Upsert(ctx context.Context, name string, points []IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	dim := len(points[0].Vector)
	ids := make([]int64, 0, len(points))
	texts := make([]string, 0, len(points))
	filePaths := make([]string, 0, len(points))
	fileNames := make([]string, 0, len(points))
	sources := make([]string, 0, len(points))
	modules := make([]string, 0, len(points))
	chunkIndexes := make([]int64, 0, len(points))
	vectors := make([][]float32, 0, len(points))

	for _, p := range points {
		if len(p.Vector) == 0 {
			return fmt.Errorf("point %d has empty vector", p.ID)
		}
		ids = append(ids, int64(p.ID))
		texts = append(texts, p.Payload.Text)
		filePaths = append(filePaths, p.Payload.FilePath)
		fileNames = append(fileNames, p.Payload.FileName)
		sources = append(sources, p.Payload.Source)
		modules = append(modules, p.Payload.Module)
		chunkIndexes = append(chunkIndexes, int64(p.Payload.ChunkIndex))
		vectors = append(vectors, p.Vector)
	}

	_, err := s.milvusClient.Insert(ctx, name, "",
		entity.NewColumnInt64("id", ids),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnVarChar("file_path", filePaths),
		entity.NewColumnVarChar("file_name", fileNames),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnVarChar("module", modules),
		entity.NewColumnInt64("chunk_index", chunkIndexes),
		entity.NewColumnFloatVector("vector", dim, vectors),
	)
	if err != nil {
		return fmt.Errorf("milvus insert failed: %w", err)
	}

	if err := s.milvusClient.Flush(ctx, name, false); err != nil {
		logger.Warn("failed to flush milvus collection",
			zap.String("collection", name), zap.Error(err))
	}

	return nil
}

func (s *milvusVectorStore) Search(ctx context.Context, name string, vector []float32, limit int) ([]SearchHit, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	if limit == 0 {
		limit = 5
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	searchResults, err := s.milvusClient.Search(
		ctx,
		name,
		[]string{},
		"",
		[]string{"text", "file_path", "file_name", "source", "module", "chunk_index"},
		[]entity.Vector{entity.FloatVector(vector)},
		"vector",
		entity.MetricType(s.distance),
		limit,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("milvus search failed: %w", err)
	}

	if len(searchResults) == 0 {
		return []SearchHit{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, fmt.Errorf("milvus search error: %w", result.Err)
	}
	if result.ResultCount == 0 {
		return []SearchHit{}, nil
	}

	texts := varCharColumn(result.Fields, "text")
	filePaths := varCharColumn(result.Fields, "file_path")
	fileNames := varCharColumn(result.Fields, "file_name")
	sources := varCharColumn(result.Fields, "source")
	modules := varCharColumn(result.Fields, "module")
	chunkIndexes := int64Column(result.Fields, "chunk_index")

	hits := make([]SearchHit, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		payload := ChunkPayload{}
		if i < len(texts) {
			payload.Text = texts[i]
		}
		if i < len(filePaths) {
			payload.FilePath = filePaths[i]
		}
		if i < len(fileNames) {
			payload.FileName = fileNames[i]
		}
		if i < len(sources) {
			payload.Source = sources[i]
		}
		if i < len(modules) {
			payload.Module = modules[i]
		}
		if i < len(chunkIndexes) {
			payload.ChunkIndex = int(chunkIndexes[i])
		}

		score := float64(0)
		if i < len(result.Scores) {
			score = float64(result.Scores[i])
		}

		hits = append(hits, SearchHit{
			Payload: payload,
			Score:   score,
		})
	}

	return hits, nil
}

func varCharColumn(fields []entity.Column, name string) []string {
	for _, field := range fields {
		if field.Name() == name {
			if col, ok := field.(*entity.ColumnVarChar); ok {
				return col.Data()
			}
		}
	}
	return nil
}

func int64Column(fields []entity.Column, name string) []int64 {
	for _, field := range fields {
		if field.Name() == name {
			if col, ok := field.(*entity.ColumnInt64); ok {
				return col.Data()
			}
		}
	}
	return nil
}

func (s *milvusVectorStore) Count(ctx context.Context, name string) (int64, error) {
	stats, err := s.milvusClient.GetCollectionStatistics(ctx, name)
	if err != nil {
		return 0, fmt.Errorf("milvus statistics failed: %w", err)
	}
	var count int64
	fmt.Sscanf(stats["row_count"], "%d", &count)
	return count, nil
}

func (s *milvusVectorStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}
