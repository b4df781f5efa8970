package translation

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Translator 外部翻译服务客户端
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

const googleTranslateEndpoint = "https://translate.googleapis.com/translate_a/single"

// googleTranslator 调用Google Translate的免费web端点
type googleTranslator struct {
	client   *http.Client
	endpoint string
}

// NewGoogleTranslator 创建Google翻译客户端
func NewGoogleTranslator(timeout time.Duration) Translator {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &googleTranslator{
		client:   &http.Client{Timeout: timeout},
		endpoint: googleTranslateEndpoint,
	}
}

func (t *googleTranslator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	params := url.Values{}
	params.Set("client", "gtx")
	params.Set("sl", sourceLang)
	params.Set("tl", targetLang)
	params.Set("dt", "t")
	params.Set("q", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return "", err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate request failed: %s", resp.Status)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// 响应是嵌套数组：[[["译文","原文",...],...],...]
	segments := gjson.GetBytes(raw, "0.#.0")
	if !segments.Exists() {
		return "", fmt.Errorf("unexpected translate response")
	}

	var builder strings.Builder
	for _, seg := range segments.Array() {
		builder.WriteString(seg.String())
	}

	translated := builder.String()
	if translated == "" {
		return "", fmt.Errorf("empty translation result")
	}
	return translated, nil
}
