package ocr

import (
	"fmt"
	"image"
	"strings"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	goocr "github.com/getcharzp/go-ocr"

	"github.com/liveshot/livemonitor/internal/logger"
)

// TextRecognizer OCR 识别器
// 由调用方显式创建并持有，不提供全局惰性单例
type TextRecognizer struct {
	engine goocr.Engine
	config Config
	mu     sync.Mutex
}

// NewTextRecognizer 创建新的 OCR 识别器
func NewTextRecognizer(config Config) (*TextRecognizer, error) {
	ocrConfig := goocr.Config{
		OnnxRuntimeLibPath: config.OnnxRuntimeLibPath,
		DetModelPath:       config.DetModelPath,
		RecModelPath:       config.RecModelPath,
		DictPath:           config.DictPath,
	}

	engine, err := goocr.NewPaddleOcrEngine(ocrConfig)
	if err != nil {
		return nil, fmt.Errorf("创建 OCR 引擎失败: %w", err)
	}

	logger.Info("OCR 引擎初始化成功")

	return &TextRecognizer{
		engine: engine,
		config: config,
	}, nil
}

// Recognize 识别图像中的所有文字，按引擎返回的阅读顺序排列
// 置信度低于 MinConfidence 的结果已被过滤
func (r *TextRecognizer) Recognize(img image.Image) ([]OcrResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	startTime := time.Now()

	results, err := r.engine.RunOCR(r.preprocess(img))
	if err != nil {
		elapsed := float64(time.Since(startTime).Milliseconds())
		logger.LogEvent("OCR", false, elapsed, "识别失败")
		return nil, fmt.Errorf("OCR 识别失败: %w", err)
	}

	ocrResults := make([]OcrResult, 0, len(results))
	for _, result := range results {
		if float64(result.Score) < r.config.MinConfidence {
			continue
		}
		ocrResults = append(ocrResults, convertResult(result))
	}

	elapsed := float64(time.Since(startTime).Milliseconds())
	logger.LogEvent("OCR", true, elapsed, fmt.Sprintf("识别到 %d 个文本", len(ocrResults)))

	return ocrResults, nil
}

// RecognizeLines 识别图像并返回完整文本与逐行文本
// 行顺序与屏幕上的阅读顺序一致；完整文本为各行按换行符拼接
func (r *TextRecognizer) RecognizeLines(img image.Image) (fullText string, lines []string, err error) {
	results, err := r.Recognize(img)
	if err != nil {
		return "", nil, err
	}

	for _, result := range results {
		text := strings.TrimSpace(result.Text)
		if text != "" {
			lines = append(lines, text)
		}
	}

	return strings.Join(lines, "\n"), lines, nil
}

// preprocess 识别前的图像预处理
// 监控区域缩放后的小图直接识别效果差，先放大到最小高度
func (r *TextRecognizer) preprocess(img image.Image) image.Image {
	if r.config.MinHeight <= 0 {
		return img
	}
	if img.Bounds().Dy() >= r.config.MinHeight {
		return img
	}
	return imaging.Resize(img, 0, r.config.MinHeight, imaging.Lanczos)
}

// Close 释放资源
func (r *TextRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.engine != nil {
		r.engine.Destroy()
		r.engine = nil
	}
	return nil
}

// convertResult 转换 go-ocr 结果为 OcrResult
func convertResult(result goocr.RecResult) OcrResult {
	// go-ocr RecResult: Box [4]int{x1, y1, x2, y2}, Text string, Score float32
	box := result.Box

	return OcrResult{
		Text:       result.Text,
		Confidence: float64(result.Score),
		Position: Point{
			X: (box[0] + box[2]) / 2,
			Y: (box[1] + box[3]) / 2,
		},
	}
}
