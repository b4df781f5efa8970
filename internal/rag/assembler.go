package rag

import (
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

const (
	// HistoryWindow 注入提示词的最近历史轮数，控制token预算
	HistoryWindow = 5

	// contextSeparator 上下文片段之间的分隔符
	contextSeparator = "\n\n---\n\n"
)

const systemPrompt = `You are an expert AI assistant for the Physical AI & Humanoid Robotics textbook.
Your role is to help students learn about robotics, ROS 2, simulation, NVIDIA Isaac, and Vision-Language-Action systems.

Guidelines:
1. Answer questions based on the provided textbook context
2. Be clear, concise, and educational
3. Use examples when helpful
4. If the context doesn't contain the answer, say so honestly
5. Reference specific modules or sections when relevant
6. For code questions, provide practical examples
7. Encourage hands-on learning`

// Turn 历史对话中的一轮
type Turn struct {
	Role    string
	Content string
}

// BuildMessages 组装生成模型的消息序列
//
// query 始终使用用户的原始问题文本：个性化增强只作用于检索，
// 展示给模型的问题保持未增强版本。
func BuildMessages(query string, contexts []Context, history []Turn, selectedText string) []openai.ChatCompletionMessage {
	system := systemPrompt
	if selectedText != "" {
		system += fmt.Sprintf("\n\nThe user has selected this specific text from the book:\n%s\n\nAnswer their question with this context in mind.", selectedText)
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: system},
	}

	// 只保留最近HistoryWindow轮，更早的轮次直接丢弃
	start := 0
	if len(history) > HistoryWindow {
		start = len(history) - HistoryWindow
	}
	for _, turn := range history[start:] {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}

	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: fmt.Sprintf("Context from the textbook:\n%s\n\nQuestion: %s", formatContexts(contexts), query),
	})

	return messages
}

func formatContexts(contexts []Context) string {
	blocks := make([]string, 0, len(contexts))
	for _, ctx := range contexts {
		name := ctx.FileName
		if name == "" {
			name = "Unknown"
		}
		blocks = append(blocks, fmt.Sprintf("Source: %s\n%s", name, ctx.Text))
	}
	return strings.Join(blocks, contextSeparator)
}
