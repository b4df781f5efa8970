package knowledge

import (
	"strings"

	"github.com/aihub/textbook-rag/internal/logger"
	"go.uber.org/zap"
)

// moduleMapping 路径标记到教材模块的映射，按顺序匹配，首个命中生效
type moduleMapping struct {
	Marker string
	Module string
}

var moduleMappings = []moduleMapping{
	{Marker: "module1", Module: "Module 1: ROS 2"},
	{Marker: "module2", Module: "Module 2: Gazebo & Unity"},
	{Marker: "module3", Module: "Module 3: NVIDIA Isaac"},
	{Marker: "module4", Module: "Module 4: Vision-Language-Action"},
}

// ClassifyModule 根据文件路径推断教材模块
// 未命中任何标记时返回空串并记录告警，而不是静默留空
func ClassifyModule(path string) (string, bool) {
	for _, m := range moduleMappings {
		// 子串包含即命中，与历史语料目录布局保持一致
		if strings.Contains(path, m.Marker) {
			return m.Module, true
		}
	}

	logger.Warn("document path matched no module marker",
		zap.String("path", path))
	return "", false
}
