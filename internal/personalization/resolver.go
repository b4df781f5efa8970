package personalization

import (
	"fmt"
)

// 背景等级从低到高排序，未识别的取值回退到intermediate
var levels = []string{"beginner", "intermediate", "advanced"}

const defaultLevelIndex = 1 // intermediate

// adjustment 每档等级的回答风格参数
type adjustment struct {
	Tone          string
	Details       string
	Examples      string
	Prerequisites string
}

var adjustments = map[string]adjustment{
	"beginner": {
		Tone:          "simple",
		Details:       "minimal",
		Examples:      "many",
		Prerequisites: "explained",
	},
	"intermediate": {
		Tone:          "balanced",
		Details:       "moderate",
		Examples:      "some",
		Prerequisites: "referenced",
	},
	"advanced": {
		Tone:          "technical",
		Details:       "comprehensive",
		Examples:      "few",
		Prerequisites: "assumed",
	},
}

// Resolve 归并两个背景等级为一个生效等级
// 取两者中较低的一档：任一短板都会阻碍理解
func Resolve(softwareBackground, hardwareBackground string) string {
	swIdx := levelIndex(softwareBackground)
	hwIdx := levelIndex(hardwareBackground)
	if hwIdx < swIdx {
		return levels[hwIdx]
	}
	return levels[swIdx]
}

func levelIndex(level string) int {
	for i, l := range levels {
		if l == level {
			return i
		}
	}
	// 不认识的等级不报错，静默归一化到intermediate
	return defaultLevelIndex
}

// PersonalizePrompt 用个性化指令增强原始问题
// 返回值作为检索和生成使用的增强查询，提示词展示仍用原始问题
func PersonalizePrompt(originalQuery, softwareBackground, hardwareBackground string) string {
	userLevel := Resolve(softwareBackground, hardwareBackground)
	adj := adjustments[userLevel]

	prompt := fmt.Sprintf(`
PERSONALIZATION CONTEXT:
- User's software background: %s
- User's hardware background: %s
- Response style: %s
- Technical details: %s
- Code examples: %s
- Prerequisites: %s

USER QUERY: %s

Please adapt your response to match the user's background level. `,
		softwareBackground,
		hardwareBackground,
		adj.Tone,
		adj.Details,
		adj.Examples,
		adj.Prerequisites,
		originalQuery,
	)

	switch userLevel {
	case "beginner":
		prompt += `
For beginners:
- Explain technical terms in simple language
- Provide step-by-step instructions
- Include many practical examples
- Avoid assuming prior knowledge
- Use analogies when helpful`
	case "intermediate":
		prompt += `
For intermediate users:
- Balance theory with practice
- Reference prerequisites but don't over-explain
- Provide moderate technical depth
- Focus on practical application`
	default: // advanced
		prompt += `
For advanced users:
- Use technical terminology freely
- Provide comprehensive details
- Focus on edge cases and optimization
- Assume strong foundational knowledge
- Reference research papers if relevant`
	}

	return prompt
}

// ChapterIntro 个性化章节引导语
type ChapterIntro struct {
	Greeting string `json:"greeting"`
	Message  string `json:"message"`
	Tip      string `json:"tip"`
}

// GetChapterIntro 按生效等级生成章节引导语，与检索无关
func GetChapterIntro(chapterTitle, softwareBackground, hardwareBackground string) ChapterIntro {
	switch Resolve(softwareBackground, hardwareBackground) {
	case "beginner":
		return ChapterIntro{
			Greeting: fmt.Sprintf("Welcome to **%s**! 👋", chapterTitle),
			Message:  "This chapter is customized for your background. We'll explain concepts step-by-step with plenty of examples.",
			Tip:      "💡 Don't worry if some terms are new - we'll explain everything as we go!",
		}
	case "advanced":
		return ChapterIntro{
			Greeting: fmt.Sprintf("**%s** ⚡", chapterTitle),
			Message:  "Advanced content ahead. We'll dive deep into technical details and edge cases.",
			Tip:      "💡 This chapter assumes strong foundational knowledge.",
		}
	default:
		return ChapterIntro{
			Greeting: fmt.Sprintf("**%s** 🚀", chapterTitle),
			Message:  "This content is tailored to your experience level. We'll balance theory with practical implementation.",
			Tip:      "💡 Feel free to skip sections you're already familiar with.",
		}
	}
}
