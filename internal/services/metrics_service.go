package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsService 业务指标采集
type MetricsService struct {
	chatRequests     prometheus.Counter
	chatFailures     prometheus.Counter
	translations     prometheus.Counter
	translationHits  prometheus.Counter
	ingestedChunks   *prometheus.CounterVec
	retrievedContext prometheus.Histogram
}

// NewMetricsService 注册并返回指标采集服务
func NewMetricsService() *MetricsService {
	return &MetricsService{
		chatRequests: promauto.NewCounter(prometheus.CounterOpts{
			Name: "textbook_rag_chat_requests_total",
			Help: "Total chat requests handled.",
		}),
		chatFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "textbook_rag_chat_failures_total",
			Help: "Total chat requests that ended in an error response.",
		}),
		translations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "textbook_rag_translation_requests_total",
			Help: "Total translation requests.",
		}),
		translationHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "textbook_rag_translation_cache_hits_total",
			Help: "Translation requests served from cache.",
		}),
		ingestedChunks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "textbook_rag_ingested_chunks_total",
			Help: "Corpus chunks processed during ingestion, by status.",
		}, []string{"status"}),
		retrievedContext: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "textbook_rag_retrieved_contexts",
			Help:    "Number of contexts returned per retrieval.",
			Buckets: prometheus.LinearBuckets(0, 1, 8),
		}),
	}
}

func (m *MetricsService) IncChatRequest()  { m.chatRequests.Inc() }
func (m *MetricsService) IncChatFailure()  { m.chatFailures.Inc() }
func (m *MetricsService) IncTranslation()  { m.translations.Inc() }
func (m *MetricsService) IncCacheHit()     { m.translationHits.Inc() }
func (m *MetricsService) ObserveContexts(n int) {
	m.retrievedContext.Observe(float64(n))
}

// CountIngestedChunk status取值：indexed 或 embed_failed
func (m *MetricsService) CountIngestedChunk(status string) {
	m.ingestedChunks.WithLabelValues(status).Inc()
}
