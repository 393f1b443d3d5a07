// Package monitor 实现直播画面监控的核心流程
//
// 一次检测周期: 截图 → 识别 → 触发检查 → 提取 → 去重 → 保存
// 所有步骤在调用方 goroutine 内同步完成，周期之间不重叠。
package monitor

import "image"

// Unknown 未能解析出 ID 或编号时的占位值
// 占位值仍是合法的可保存值，按原样参与去重和存储路径
const Unknown = "unknown"

// ProductRecord 从一帧画面中提取出的商品记录
type ProductRecord struct {
	// ProductID 商品 ID（纯数字或 unknown）
	ProductID string `json:"product_id"`
	// SerialNumber 编号（1-4 位数字或 unknown）
	SerialNumber string `json:"serial_number"`
	// LabelDate 提取时的本地日期，MM-DD 格式，不从画面文本提取
	LabelDate string `json:"label_date"`
	// RawText 该帧的完整 OCR 文本，同帧的所有记录共享
	RawText string `json:"raw_text"`
	// Timestamp 提取时间戳 YYYYMMDD_HHMMSS，同帧的所有记录相同
	Timestamp string `json:"timestamp"`
	// Filepath 保存后的文件路径，保存成功前为空，只赋值一次
	Filepath string `json:"filepath,omitempty"`
	// StyleCategory 可选分类器给出的款式类别
	StyleCategory string `json:"style_category,omitempty"`
}

// CaptureFunc 截取一帧监控区域画面
type CaptureFunc func() (image.Image, error)

// Recognizer 文字识别器
// 返回的行序与屏幕阅读顺序一致，置信度过滤由识别器完成
type Recognizer interface {
	RecognizeLines(img image.Image) (fullText string, lines []string, err error)
}

// DuplicateIndex 已保存截图的存在性索引
// 身份由 (商品 ID, 日期, 编号) 三元组定义，不比较图片内容
type DuplicateIndex interface {
	Exists(productID, labelDate, serialNumber string) (bool, error)
}

// Saver 截图保存器，返回最终保存路径
type Saver interface {
	Save(img image.Image, productID, labelDate, serialNumber string) (string, error)
}

// Classifier 可选的款式分类器
// 未配置时监控流程不受任何影响
type Classifier interface {
	Predict(img image.Image) (category string, confidence float64, err error)
}

// Journal 可选的截图流水记录
type Journal interface {
	Record(rec *ProductRecord) error
}
