package translation

import (
	"context"
	"strings"

	"github.com/aihub/textbook-rag/internal/logger"
	"go.uber.org/zap"
)

const (
	// maxSingleRequest 单次翻译请求的字符上限，超过则分句翻译
	maxSingleRequest = 4500

	// sentenceDelimiter 分句分隔符
	// 按字面". "切分是服务端请求大小限制下的近似做法，
	// 对缩写、小数等会误切，此处保持既有行为
	sentenceDelimiter = ". "
)

// Metrics 翻译指标采集，可为nil
type Metrics interface {
	IncTranslation()
	IncCacheHit()
}

// Service 翻译后处理服务，结果按原文全文记忆化
type Service struct {
	translator Translator
	cache      Cache
	sourceLang string
	targetLang string
	metrics    Metrics
	logger     *zap.Logger
}

// NewService 创建翻译服务
func NewService(translator Translator, cache Cache, sourceLang, targetLang string) *Service {
	if sourceLang == "" {
		sourceLang = "en"
	}
	if targetLang == "" {
		targetLang = "ur"
	}
	return &Service{
		translator: translator,
		cache:      cache,
		sourceLang: sourceLang,
		targetLang: targetLang,
		logger:     logger.GetLogger(),
	}
}

// WithMetrics 挂接指标采集
func (s *Service) WithMetrics(metrics Metrics) *Service {
	s.metrics = metrics
	return s
}

// Translate 尽力而为的翻译：任何失败都返回原文
func (s *Service) Translate(ctx context.Context, text string) string {
	if text == "" {
		return text
	}

	if s.metrics != nil {
		s.metrics.IncTranslation()
	}

	if cached, ok := s.cache.Get(ctx, text); ok {
		if s.metrics != nil {
			s.metrics.IncCacheHit()
		}
		return cached
	}

	translated, err := s.translate(ctx, text)
	if err != nil {
		s.logger.Warn("translation failed, returning original text", zap.Error(err))
		return text
	}

	s.cache.Set(ctx, text, translated)
	return translated
}

func (s *Service) translate(ctx context.Context, text string) (string, error) {
	if len(text) <= maxSingleRequest {
		return s.translator.Translate(ctx, text, s.sourceLang, s.targetLang)
	}

	// 长文本分句独立翻译后重新拼接
	sentences := strings.Split(text, sentenceDelimiter)
	translated := make([]string, 0, len(sentences))

	for _, sentence := range sentences {
		if strings.TrimSpace(sentence) == "" {
			continue
		}
		result, err := s.translator.Translate(ctx, sentence, s.sourceLang, s.targetLang)
		if err != nil {
			return "", err
		}
		translated = append(translated, result)
	}

	return strings.Join(translated, sentenceDelimiter), nil
}
