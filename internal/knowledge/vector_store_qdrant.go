package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// QdrantOptions Qdrant客户端配置
type QdrantOptions struct {
	Endpoint string
	APIKey   string
	Distance string
	UseTLS   bool
	Timeout  time.Duration
}

type qdrantVectorStore struct {
	client   *http.Client
	endpoint string
	apiKey   string
	distance string
}

// NewQdrantVectorStore 创建Qdrant向量存储
func NewQdrantVectorStore(opts QdrantOptions) (VectorStore, error) {
	if opts.Endpoint == "" {
		scheme := "http"
		if opts.UseTLS {
			scheme = "https"
		}
		opts.Endpoint = fmt.Sprintf("%s://localhost:6333", scheme)
	}

	if !strings.HasPrefix(opts.Endpoint, "http") {
		scheme := "http"
		if opts.UseTLS {
			scheme = "https"
		}
		opts.Endpoint = fmt.Sprintf("%s://%s", scheme, opts.Endpoint)
	}

	if opts.Distance == "" {
		opts.Distance = "Cosine"
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &qdrantVectorStore{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: strings.TrimSuffix(opts.Endpoint, "/"),
		apiKey:   opts.APIKey,
		distance: formatDistance(opts.Distance),
	}, nil
}

func formatDistance(value string) string {
	switch strings.ToLower(value) {
	case "dot", "dotproduct":
		return "Dot"
	case "euclid", "l2":
		return "Euclid"
	default:
		return "Cosine"
	}
}

func (s *qdrantVectorStore) EnsureCollection(ctx context.Context, name string, dim int) error {
	resp, err := s.doRequest(ctx, http.MethodGet, fmt.Sprintf("/collections/%s", name), nil)
	if err == nil && resp.StatusCode == http.StatusOK {
		resp.Body.Close()
		return nil
	}
	if resp != nil {
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}

	body := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     dim,
			"distance": s.distance,
		},
	}
	resp, err = s.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s", name), body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("create collection %s failed: %s", name, resp.Status)
	}

	return nil
}

func (s *qdrantVectorStore) Upsert(ctx context.Context, name string, points []IndexPoint) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]map[string]interface{}, 0, len(points))
	for _, p := range points {
		if len(p.Vector) == 0 {
			return fmt.Errorf("point %d has empty vector", p.ID)
		}
		qdrantPoints = append(qdrantPoints, map[string]interface{}{
			"id":     p.ID,
			"vector": p.Vector,
			"payload": map[string]interface{}{
				"text":        p.Payload.Text,
				"file_path":   p.Payload.FilePath,
				"file_name":   p.Payload.FileName,
				"source":      p.Payload.Source,
				"module":      p.Payload.Module,
				"chunk_index": p.Payload.ChunkIndex,
			},
		})
	}

	payload := map[string]interface{}{"points": qdrantPoints}

	resp, err := s.doRequest(ctx, http.MethodPut, fmt.Sprintf("/collections/%s/points?wait=true", name), payload)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("qdrant upsert failed: %s %s", resp.Status, string(raw))
	}

	return nil
}

func (s *qdrantVectorStore) Search(ctx context.Context, name string, vector []float32, limit int) ([]SearchHit, error) {
	if len(vector) == 0 {
		return nil, nil
	}
	if limit == 0 {
		limit = 5
	}

	body := map[string]interface{}{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vectors": false,
	}

	resp, err := s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/search", name), body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("qdrant search failed: %s %s", resp.Status, string(raw))
	}

	var searchResp struct {
		Result []struct {
			ID      interface{}  `json:"id"`
			Score   float64      `json:"score"`
			Payload ChunkPayload `json:"payload"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, err
	}

	hits := make([]SearchHit, 0, len(searchResp.Result))
	for _, item := range searchResp.Result {
		hits = append(hits, SearchHit{
			Payload: item.Payload,
			Score:   item.Score,
		})
	}

	return hits, nil
}

func (s *qdrantVectorStore) Count(ctx context.Context, name string) (int64, error) {
	body := map[string]interface{}{"exact": true}

	resp, err := s.doRequest(ctx, http.MethodPost, fmt.Sprintf("/collections/%s/points/count", name), body)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("qdrant count failed: %s %s", resp.Status, string(raw))
	}

	var countResp struct {
		Result struct {
			Count int64 `json:"count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&countResp); err != nil {
		return 0, err
	}

	return countResp.Result.Count, nil
}

func (s *qdrantVectorStore) Ready() bool {
	return s.client != nil
}

func (s *qdrantVectorStore) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.endpoint+path, reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}

	return s.client.Do(req)
}
