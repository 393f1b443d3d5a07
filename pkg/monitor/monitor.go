package monitor

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/liveshot/livemonitor/internal/logger"
)

// 状态输出间隔（周期数）
const statusEvery = 10

// Monitor 直播画面监控器
// 各协作方由调用方构造后注入，Monitor 自身不做惰性初始化
type Monitor struct {
	// Capture 截取监控区域
	Capture CaptureFunc
	// Recognizer 文字识别器
	Recognizer Recognizer
	// Extractor 商品记录提取器
	Extractor *Extractor
	// Keyword 触发关键词
	Keyword string
	// Index 去重索引
	Index DuplicateIndex
	// Saver 截图保存器
	Saver Saver
	// Classifier 可选款式分类器，nil 时跳过分类
	Classifier Classifier
	// Journal 可选截图流水记录，nil 时跳过
	Journal Journal
	// Interval 检测间隔
	Interval time.Duration
	// LogsDir OCR 日志与运行日志目录，空字符串关闭文件日志
	LogsDir string

	// 运行统计
	startTime  time.Time
	cycleCount int
	savedCount int
	savedByID  map[string]int
}

// New 创建监控器
func New(capture CaptureFunc, recognizer Recognizer, extractor *Extractor, keyword string, index DuplicateIndex, saver Saver) *Monitor {
	return &Monitor{
		Capture:    capture,
		Recognizer: recognizer,
		Extractor:  extractor,
		Keyword:    keyword,
		Index:      index,
		Saver:      saver,
		Interval:   time.Second,
		savedByID:  make(map[string]int),
	}
}

// RunOnce 执行一次检测周期，返回本周期保存成功的记录
//
// 未触发或未提取到记录返回空结果，不是错误；
// 单条记录的保存失败只影响该条记录，不中断同帧的其他记录。
func (m *Monitor) RunOnce() ([]*ProductRecord, error) {
	img, err := m.Capture()
	if err != nil {
		return nil, fmt.Errorf("截图失败: %w", err)
	}

	fullText, lines, err := m.Recognizer.RecognizeLines(img)
	if err != nil {
		return nil, fmt.Errorf("识别失败: %w", err)
	}

	m.appendOCRLog(fullText, lines)

	if len(lines) == 0 {
		return nil, nil
	}

	if !DetectTrigger(lines, m.Keyword) {
		return nil, nil
	}

	logger.Info("检测到触发关键词: %s", m.Keyword)
	for i, line := range lines {
		logger.Debug("  %d. %s", i+1, line)
	}

	records := m.Extractor.Extract(fullText, lines)
	if len(records) == 0 {
		logger.Warn("触发后未能提取 ID 和编号, 完整文本: %s", fullText)
		return nil, nil
	}

	logger.Info("发现 %d 个标签", len(records))

	var saved []*ProductRecord
	for _, rec := range records {
		saved = m.processRecord(img, rec, saved)
	}

	if len(saved) > 0 {
		logger.Info("本次保存 %d 张截图", len(saved))
	}

	return saved, nil
}

// processRecord 处理单条记录: 去重 → 分类 → 保存 → 流水
// 任何失败只跳过当前记录
func (m *Monitor) processRecord(img image.Image, rec *ProductRecord, saved []*ProductRecord) []*ProductRecord {
	detail := fmt.Sprintf("ID: %s | 日期: %s | 编号: %s", rec.ProductID, rec.LabelDate, rec.SerialNumber)

	// unknown 字段是合法可保存值，只提醒不拦截
	if rec.ProductID == Unknown || rec.SerialNumber == Unknown {
		logger.Warn("记录存在未识别字段: %s", detail)
	}

	dup, err := m.Index.Exists(rec.ProductID, rec.LabelDate, rec.SerialNumber)
	if err != nil {
		logger.Error("去重检查失败: %s: %v", detail, err)
		return saved
	}
	if dup {
		logger.Info("%s → 跳过(重复)", detail)
		return saved
	}

	if m.Classifier != nil {
		category, confidence, err := m.Classifier.Predict(img)
		if err != nil {
			logger.Warn("款式分类失败: %v", err)
		} else if category != "" && category != Unknown {
			rec.StyleCategory = category
			logger.Info("%s | 款式: %s (%.2f)", detail, category, confidence)
		}
	}

	path, err := m.Saver.Save(img, rec.ProductID, rec.LabelDate, rec.SerialNumber)
	if err != nil {
		logger.Error("保存失败: %s: %v", detail, err)
		return saved
	}
	rec.Filepath = path

	if m.Journal != nil {
		if err := m.Journal.Record(rec); err != nil {
			logger.Warn("写入截图流水失败: %v", err)
		}
	}

	logger.Info("%s → 已保存 %s", detail, path)
	return append(saved, rec)
}

// Run 持续运行监控，直到 stop 关闭
// 单个周期的失败只记日志，循环继续
func (m *Monitor) Run(stop <-chan struct{}) {
	m.startTime = time.Now()
	if m.savedByID == nil {
		m.savedByID = make(map[string]int)
	}

	logger.Info("开始监控 (间隔 %.1f 秒, 关键词 %s)", m.Interval.Seconds(), m.Keyword)

	for {
		select {
		case <-stop:
			m.finish()
			return
		default:
		}

		m.cycleCount++

		saved, err := m.RunOnce()
		if err != nil {
			logger.Error("检测出错: %v", err)
		}
		m.savedCount += len(saved)
		for _, rec := range saved {
			m.savedByID[rec.ProductID]++
		}

		if m.cycleCount%statusEvery == 0 {
			m.logStatus()
		}

		select {
		case <-stop:
			m.finish()
			return
		case <-time.After(m.Interval):
		}
	}
}

// logStatus 输出运行状态，附带进程资源占用
func (m *Monitor) logStatus() {
	detail := fmt.Sprintf("已检测 %d 次, 保存 %d 张", m.cycleCount, m.savedCount)

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if mem, err := proc.MemoryInfo(); err == nil && mem != nil {
			detail += fmt.Sprintf(", 内存 %.1fMB", float64(mem.RSS)/1024/1024)
		}
		if cpu, err := proc.CPUPercent(); err == nil {
			detail += fmt.Sprintf(", CPU %.1f%%", cpu)
		}
	}

	logger.Info("%s", detail)
}

// finish 停止时输出统计并写运行日志
func (m *Monitor) finish() {
	endTime := time.Now()
	duration := endTime.Sub(m.startTime)

	logger.Info("监控已停止")
	logger.Info("总计检测 %d 次, 保存 %d 张截图, 运行时长 %s", m.cycleCount, m.savedCount, formatDuration(duration))

	if err := m.writeSessionLog(m.startTime, endTime); err != nil {
		logger.Warn("写入运行日志失败: %v", err)
	}
}

// writeSessionLog 追加一段运行摘要到按日期命名的日志文件
func (m *Monitor) writeSessionLog(start, end time.Time) error {
	if m.LogsDir == "" {
		return nil
	}
	if err := os.MkdirAll(m.LogsDir, 0755); err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(strings.Repeat("=", 50) + "\n")
	fmt.Fprintf(&b, "开始时间: %s\n", start.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "结束时间: %s\n", end.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "运行时长: %s\n", formatDuration(end.Sub(start)))
	fmt.Fprintf(&b, "检测次数: %d\n", m.cycleCount)
	fmt.Fprintf(&b, "保存截图: %d 张\n", m.savedCount)
	if len(m.savedByID) > 0 {
		b.WriteString("保存详情:\n")
		for _, id := range sortedKeys(m.savedByID) {
			fmt.Fprintf(&b, "  - ID_%s: %d 张\n", id, m.savedByID[id])
		}
	}
	b.WriteString(strings.Repeat("=", 50) + "\n\n")

	logPath := filepath.Join(m.LogsDir, start.Format("2006-01-02")+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.WriteString(b.String())
	return err
}

// appendOCRLog 追加一帧的识别结果到 OCR 日志
// 日志失败不影响主流程
func (m *Monitor) appendOCRLog(fullText string, lines []string) {
	if m.LogsDir == "" || len(lines) == 0 {
		return
	}
	if err := os.MkdirAll(m.LogsDir, 0755); err != nil {
		return
	}

	logPath := filepath.Join(m.LogsDir, "ocr_"+time.Now().Format("20060102")+".log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return
	}
	defer f.Close()

	var b strings.Builder
	b.WriteString(strings.Repeat("=", 60) + "\n")
	fmt.Fprintf(&b, "[%s] OCR 识别结果\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "完整文本:\n%s\n逐行识别:\n", fullText)
	for i, line := range lines {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, line)
	}

	f.WriteString(b.String())
}

// formatDuration 格式化时长
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	switch {
	case days > 0:
		return fmt.Sprintf("%d天 %d小时 %d分钟 %d秒", days, hours, minutes, seconds)
	case hours > 0:
		return fmt.Sprintf("%d小时 %d分钟 %d秒", hours, minutes, seconds)
	case minutes > 0:
		return fmt.Sprintf("%d分钟 %d秒", minutes, seconds)
	default:
		return fmt.Sprintf("%d秒", seconds)
	}
}

// sortedKeys 返回排序后的键列表
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
