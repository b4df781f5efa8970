package knowledge

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQdrantStore(t *testing.T, handler http.Handler) VectorStore {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	store, err := NewQdrantVectorStore(QdrantOptions{Endpoint: server.URL})
	require.NoError(t, err)
	return store
}

// TestQdrantEnsureCollectionExisting 测试集合已存在时跳过创建
func TestQdrantEnsureCollectionExisting(t *testing.T) {
	var putCalled bool
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusOK)
		case http.MethodPut:
			putCalled = true
			w.WriteHeader(http.StatusOK)
		}
	}))

	require.NoError(t, store.EnsureCollection(context.Background(), "docs", 1536))
	assert.False(t, putCalled)
}

// TestQdrantEnsureCollectionCreates 测试缺失集合时按维度创建
func TestQdrantEnsureCollectionCreates(t *testing.T) {
	var created map[string]interface{}
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			w.WriteHeader(http.StatusNotFound)
		case http.MethodPut:
			require.Equal(t, "/collections/docs", r.URL.Path)
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			w.WriteHeader(http.StatusOK)
		}
	}))

	require.NoError(t, store.EnsureCollection(context.Background(), "docs", 1536))

	vectors, ok := created["vectors"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(1536), vectors["size"])
	assert.Equal(t, "Cosine", vectors["distance"])
}

// TestQdrantUpsert 测试向量点写入的请求体格式
func TestQdrantUpsert(t *testing.T) {
	var body map[string]interface{}
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/collections/docs/points", r.URL.Path)
		require.Equal(t, "true", r.URL.Query().Get("wait"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusOK)
	}))

	points := []IndexPoint{{
		ID:     7,
		Vector: []float32{0.5, 0.25},
		Payload: ChunkPayload{
			Text:       "gazebo worlds",
			FilePath:   "docs/module2/sim.md",
			FileName:   "sim.md",
			Source:     "Physical AI & Humanoid Robotics Textbook",
			Module:     "Module 2: Gazebo & Unity",
			ChunkIndex: 3,
		},
	}}
	require.NoError(t, store.Upsert(context.Background(), "docs", points))

	sent, ok := body["points"].([]interface{})
	require.True(t, ok)
	require.Len(t, sent, 1)

	point := sent[0].(map[string]interface{})
	assert.Equal(t, float64(7), point["id"])
	payload := point["payload"].(map[string]interface{})
	assert.Equal(t, "gazebo worlds", payload["text"])
	assert.Equal(t, "sim.md", payload["file_name"])
	assert.Equal(t, "Module 2: Gazebo & Unity", payload["module"])
	assert.Equal(t, float64(3), payload["chunk_index"])
}

// TestQdrantUpsertRejectsEmptyVector 测试空向量点被拒绝
func TestQdrantUpsertRejectsEmptyVector(t *testing.T) {
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	}))

	err := store.Upsert(context.Background(), "docs", []IndexPoint{{ID: 1}})
	assert.Error(t, err)
}

// TestQdrantSearch 测试检索结果解析
func TestQdrantSearch(t *testing.T) {
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docs/points/search", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, float64(5), req["limit"])
		assert.Equal(t, true, req["with_payload"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": []map[string]interface{}{
				{
					"id":    0,
					"score": 0.91,
					"payload": map[string]interface{}{
						"text":        "ros topics",
						"file_name":   "intro.md",
						"module":      "Module 1: ROS 2",
						"chunk_index": 0,
					},
				},
				{
					"id":    4,
					"score": 0.72,
					"payload": map[string]interface{}{
						"text":      "isaac sim",
						"file_name": "isaac.md",
					},
				},
			},
		})
	}))

	hits, err := store.Search(context.Background(), "docs", []float32{0.1, 0.2}, 5)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, "ros topics", hits[0].Payload.Text)
	assert.Equal(t, "Module 1: ROS 2", hits[0].Payload.Module)
	assert.InDelta(t, 0.91, hits[0].Score, 1e-9)
	assert.Equal(t, "isaac.md", hits[1].Payload.FileName)
}

// TestQdrantSearchErrorStatus 测试非2xx响应转为错误
func TestQdrantSearchErrorStatus(t *testing.T) {
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "collection not found", http.StatusNotFound)
	}))

	_, err := store.Search(context.Background(), "missing", []float32{0.1}, 5)
	assert.Error(t, err)
}

// TestQdrantCount 测试点数统计
func TestQdrantCount(t *testing.T) {
	store := newTestQdrantStore(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/collections/docs/points/count", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, true, req["exact"])

		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{"count": 1523},
		})
	}))

	count, err := store.Count(context.Background(), "docs")
	require.NoError(t, err)
	assert.Equal(t, int64(1523), count)
}

// TestQdrantAPIKeyHeader 测试api-key请求头透传
func TestQdrantAPIKeyHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "secret", r.Header.Get("api-key"))
		json.NewEncoder(w).Encode(map[string]interface{}{
			"result": map[string]interface{}{"count": 0},
		})
	}))
	defer server.Close()

	store, err := NewQdrantVectorStore(QdrantOptions{Endpoint: server.URL, APIKey: "secret"})
	require.NoError(t, err)

	_, err = store.Count(context.Background(), "docs")
	require.NoError(t, err)
}
