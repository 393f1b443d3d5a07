package monitor

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 标签格式示例:
//
//	┌─────────────────┐
//	│ fafa    2532    │  <- 2532 是编号
//	│ れんくんママ      │
//	│ ID: 41   ¥300   │  <- 41 是 ID
//	└─────────────────┘
var (
	// ID 两种写法: "ID: 41" / "ID:41" / "ID：41" 和 "ID 41"
	idColonPattern = regexp.MustCompile(`(?i)id[:：]\s*(\d+)`)
	idSpacePattern = regexp.MustCompile(`(?i)id\s+(\d+)`)

	// 编号为 1-4 位独立数字
	serialPattern = regexp.MustCompile(`\b\d{1,4}\b`)
)

// 编号取值范围
const (
	serialMin = 1
	serialMax = 9999
)

// DefaultSerialMarkers 默认的编号标记关键词
var DefaultSerialMarkers = []string{"mtk", "yeye"}

// Extractor 从 OCR 文本中提取商品记录
type Extractor struct {
	// Markers 编号标记关键词，编号只在这些关键词附近查找，
	// 不在 ID 行中查找，避免把 ID 误识别为编号
	Markers []string
	// Now 时钟，测试中注入固定时间
	Now func() time.Time
}

// NewExtractor 创建提取器
// markers 为空时使用默认标记关键词
func NewExtractor(markers []string) *Extractor {
	if len(markers) == 0 {
		markers = DefaultSerialMarkers
	}
	return &Extractor{
		Markers: markers,
		Now:     time.Now,
	}
}

// Extract 从一帧画面的 OCR 文本中提取所有商品记录（支持多个标签）
//
// fullText 为该帧的完整文本，原样写入每条记录的 RawText；
// lines 为按屏幕顺序排列的逐行文本，提取在 lines 上进行。
// 日期和时间戳取提取时刻的本地时间，不从画面文本提取。
func (e *Extractor) Extract(fullText string, lines []string) []*ProductRecord {
	now := e.now()
	timestamp := now.Format("20060102_150405")
	labelDate := now.Format("01-02")

	uniqueIDs := e.extractIDs(lines)
	uniqueSerials := e.extractSerials(lines)

	var records []*ProductRecord

	// 按出现顺序逐位配对，编号不足的 ID 配 unknown
	for i, productID := range uniqueIDs {
		serialNumber := Unknown
		if i < len(uniqueSerials) {
			serialNumber = uniqueSerials[i]
		}
		records = append(records, &ProductRecord{
			ProductID:    productID,
			SerialNumber: serialNumber,
			LabelDate:    labelDate,
			RawText:      fullText,
			Timestamp:    timestamp,
		})
	}

	// 没有 ID 但有编号时，每个编号单独成一条记录
	if len(uniqueIDs) == 0 {
		for _, serialNumber := range uniqueSerials {
			records = append(records, &ProductRecord{
				ProductID:    Unknown,
				SerialNumber: serialNumber,
				LabelDate:    labelDate,
				RawText:      fullText,
				Timestamp:    timestamp,
			})
		}
	}

	return records
}

// extractIDs 提取所有 ID，按首次出现顺序去重
// 冒号写法的匹配整体先于空格写法
func (e *Extractor) extractIDs(lines []string) []string {
	joined := strings.Join(lines, " ")

	var allIDs []string
	for _, pattern := range []*regexp.Regexp{idColonPattern, idSpacePattern} {
		for _, m := range pattern.FindAllStringSubmatch(joined, -1) {
			allIDs = append(allIDs, m[1])
		}
	}

	return dedupeKeepOrder(allIDs)
}

// extractSerials 提取所有编号候选
//
// 对每一行、每个标记关键词，按固定优先级查找 1-4 位数字:
//  1. 关键词右侧（取第一个）
//  2. 关键词左侧（取最后一个，最靠近关键词）
//  3. 上一行（取第一个）
//  4. 下一行（取第一个）
//
// 任一步找到即停止，该行不再尝试其余关键词。
// 候选按首次出现顺序去重，数值必须在 [1, 9999] 内。
func (e *Extractor) extractSerials(lines []string) []string {
	var candidates []string

	for i, line := range lines {
		// pos 是 lineLower 中的字节偏移，大小写折叠可能改变字节长度，
		// 切片必须也在 lineLower 上做（数字不受折叠影响，语义不变）
		lineLower := strings.ToLower(line)
		for _, marker := range e.Markers {
			markerLower := strings.ToLower(marker)
			pos := strings.Index(lineLower, markerLower)
			if pos < 0 {
				continue
			}

			// 1. 关键词右侧
			after := lineLower[pos+len(markerLower):]
			if num := serialPattern.FindString(after); num != "" {
				candidates = append(candidates, num)
				break
			}

			// 2. 关键词左侧，取最靠近关键词的
			if pos > 0 {
				before := lineLower[:pos]
				if nums := serialPattern.FindAllString(before, -1); len(nums) > 0 {
					candidates = append(candidates, nums[len(nums)-1])
					break
				}
			}

			// 3. 上一行
			if i > 0 {
				if num := serialPattern.FindString(lines[i-1]); num != "" {
					candidates = append(candidates, num)
					break
				}
			}

			// 4. 下一行
			if i < len(lines)-1 {
				if num := serialPattern.FindString(lines[i+1]); num != "" {
					candidates = append(candidates, num)
					break
				}
			}
		}
	}

	return filterSerials(candidates)
}

// filterSerials 去重并过滤数值范围外的候选
func filterSerials(candidates []string) []string {
	seen := make(map[string]struct{}, len(candidates))
	var serials []string
	for _, s := range candidates {
		if _, ok := seen[s]; ok {
			continue
		}
		value, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if value < serialMin || value > serialMax {
			continue
		}
		seen[s] = struct{}{}
		serials = append(serials, s)
	}
	return serials
}

// dedupeKeepOrder 去重并保持首次出现顺序
func dedupeKeepOrder(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	var out []string
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// now 返回注入的时钟或系统时间
func (e *Extractor) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}
