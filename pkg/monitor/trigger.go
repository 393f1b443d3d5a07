package monitor

import "strings"

// DetectTrigger 检查是否触发（任意一行包含关键词，忽略大小写）
// 只做大小写折叠，不做全角/半角或变音符号归一化；
// 空关键词是任意行的子串，有行即触发
func DetectTrigger(lines []string, keyword string) bool {
	kw := strings.ToLower(keyword)
	for _, line := range lines {
		if strings.Contains(strings.ToLower(line), kw) {
			return true
		}
	}
	return false
}
