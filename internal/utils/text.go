package utils

import (
	"encoding/json"
	"strings"

	"k8s.io/klog/v2"
)

// NormalizeGenerated 清理模型输出：去掉首尾空白，若整体被 ``` 代码块包裹则取出内容
func NormalizeGenerated(content string) string {
	text := strings.TrimSpace(content)
	if !strings.HasPrefix(text, "```") || !strings.HasSuffix(text, "```") || len(text) < 6 {
		return text
	}

	inner := text[3 : len(text)-3]
	// 第一行可能是语言标识，如 ```markdown
	if idx := strings.IndexByte(inner, '\n'); idx >= 0 {
		firstLine := strings.TrimSpace(inner[:idx])
		if firstLine == "" || !strings.ContainsAny(firstLine, " \t") {
			inner = inner[idx+1:]
		}
	}
	klog.V(6).Infof("[NormalizeGenerated] 去除代码块包裹")
	return strings.TrimSpace(inner)
}

// ToJSON 序列化为字符串，失败时返回空串
func ToJSON(v any) string {
	jsonData, err := json.Marshal(v)
	if err != nil {
		klog.Errorf("JSON序列化失败: %v", err)
		return ""
	}
	return string(jsonData)
}
