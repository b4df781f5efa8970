package knowledge

import (
	"fmt"
	"strings"
)

// Chunk 表示分块后的文本片段
// Index 是片段在所属文档内的发射顺序，从0开始
type Chunk struct {
	Index int
	Text  string
}

// Chunker 按词窗口切分文本
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker 创建分块器
// overlap 必须严格小于 size，否则窗口步长退化为非正数
func NewChunker(chunkSize, overlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", overlap)
	}
	if overlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be less than chunk size %d", overlap, chunkSize)
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
	}, nil
}

// Split 将文本切分为带重叠的词窗口
// 纯空白窗口被丢弃且不占用Index
func (c *Chunker) Split(text string) []Chunk {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}

	step := c.chunkSize - c.chunkOverlap

	var chunks []Chunk
	for start := 0; start < len(words); start += step {
		end := start + c.chunkSize
		if end > len(words) {
			end = len(words)
		}

		chunkText := strings.Join(words[start:end], " ")
		if strings.TrimSpace(chunkText) != "" {
			chunks = append(chunks, Chunk{
				Index: len(chunks),
				Text:  chunkText,
			})
		}

		if end == len(words) {
			break
		}
	}

	return chunks
}
