package knowledge

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// makeWords 生成n个可区分的词
func makeWords(n int) []string {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return words
}

// TestChunkerSplitOverlapWindows 测试带重叠的词窗口切分
func TestChunkerSplitOverlapWindows(t *testing.T) {
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)

	words := makeWords(2500)
	chunks := chunker.Split(strings.Join(words, " "))

	// 2500词、窗口1000、步长800：偏移0、800、1600，共3块
	require.Len(t, chunks, 3)

	first := strings.Fields(chunks[0].Text)
	assert.Len(t, first, 1000)
	assert.Equal(t, "w0", first[0])
	assert.Equal(t, "w999", first[999])

	second := strings.Fields(chunks[1].Text)
	assert.Equal(t, "w800", second[0])
	assert.Equal(t, "w1799", second[999])

	// 末块只剩900词
	third := strings.Fields(chunks[2].Text)
	assert.Len(t, third, 900)
	assert.Equal(t, "w1600", third[0])
	assert.Equal(t, "w2499", third[899])

	for i, chunk := range chunks {
		assert.Equal(t, i, chunk.Index)
	}
}

// TestChunkerSplitShortDocument 测试短文档单块输出
func TestChunkerSplitShortDocument(t *testing.T) {
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)

	chunks := chunker.Split("hello world foo bar")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world foo bar", chunks[0].Text)
	assert.Equal(t, 0, chunks[0].Index)
}

// TestChunkerSplitNormalizesWhitespace 测试空白归一化
func TestChunkerSplitNormalizesWhitespace(t *testing.T) {
	chunker, err := NewChunker(10, 2)
	require.NoError(t, err)

	chunks := chunker.Split("  alpha\n\nbeta\tgamma  ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "alpha beta gamma", chunks[0].Text)
}

// TestChunkerSplitEmpty 测试空文本返回空结果
func TestChunkerSplitEmpty(t *testing.T) {
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)

	assert.Empty(t, chunker.Split(""))
	assert.Empty(t, chunker.Split("   \n\t  "))
}

// TestChunkerExactWindowBoundary 测试文档长度正好等于窗口时不产生空尾块
func TestChunkerExactWindowBoundary(t *testing.T) {
	chunker, err := NewChunker(1000, 200)
	require.NoError(t, err)

	words := makeWords(1000)
	chunks := chunker.Split(strings.Join(words, " "))
	require.Len(t, chunks, 1)
	assert.Len(t, strings.Fields(chunks[0].Text), 1000)
}

// TestNewChunkerRejectsInvalidConfig 测试非法切分参数被拒绝
func TestNewChunkerRejectsInvalidConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 100, -5},
		{"overlap equals size", 100, 100},
		{"overlap exceeds size", 100, 150},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChunker(tc.size, tc.overlap)
			assert.Error(t, err)
		})
	}
}
