// Package classify 基于 ONNX 分类模型识别截图中的商品款式
//
// 分类是可选环节: 未配置模型时监控流程完全不受影响，
// 分类失败或置信度不足只会让记录缺少款式字段，不影响保存。
package classify

import (
	"fmt"
	"image"
	"math"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/liveshot/livemonitor/internal/logger"
)

// Config 分类器配置
type Config struct {
	// ModelPath ONNX 模型路径
	ModelPath string
	// Categories 类别名列表，顺序与模型输出维度一致
	Categories []string
	// InputSize 模型输入边长（正方形）
	InputSize int
	// MinConfidence 低于该置信度时返回 unknown
	MinConfidence float64
}

// StyleClassifier 款式分类器
type StyleClassifier struct {
	net    gocv.Net
	config Config
	mu     sync.Mutex
}

// New 加载模型并创建分类器
func New(config Config) (*StyleClassifier, error) {
	if _, err := os.Stat(config.ModelPath); err != nil {
		return nil, fmt.Errorf("分类模型不存在: %s", config.ModelPath)
	}
	if len(config.Categories) == 0 {
		return nil, fmt.Errorf("分类器缺少类别配置")
	}
	if config.InputSize <= 0 {
		config.InputSize = 224
	}

	net := gocv.ReadNetFromONNX(config.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("加载分类模型失败: %s", config.ModelPath)
	}

	logger.Info("款式分类器加载成功: %s (%d 个类别)", config.ModelPath, len(config.Categories))

	return &StyleClassifier{net: net, config: config}, nil
}

// Predict 对一帧画面做款式分类
// 置信度低于 MinConfidence 时返回 unknown
func (c *StyleClassifier) Predict(img image.Image) (string, float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mat, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return "", 0, fmt.Errorf("图像转换失败: %w", err)
	}
	defer mat.Close()

	size := c.config.InputSize
	blob := gocv.BlobFromImage(mat, 1.0/255.0, image.Pt(size, size),
		gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	c.net.SetInput(blob, "")
	output := c.net.Forward("")
	defer output.Close()

	scores := make([]float64, 0, len(c.config.Categories))
	for i := 0; i < output.Cols() && i < len(c.config.Categories); i++ {
		scores = append(scores, float64(output.GetFloatAt(0, i)))
	}
	if len(scores) == 0 {
		return "", 0, fmt.Errorf("模型输出为空")
	}

	probs := softmax(scores)
	best := 0
	for i, p := range probs {
		if p > probs[best] {
			best = i
		}
	}

	category := c.config.Categories[best]
	confidence := probs[best]
	if confidence < c.config.MinConfidence {
		return "unknown", confidence, nil
	}
	return category, confidence, nil
}

// Close 释放模型资源
func (c *StyleClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.net.Close()
}

// softmax 将原始得分归一化为概率
func softmax(scores []float64) []float64 {
	max := scores[0]
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	var sum float64
	probs := make([]float64, len(scores))
	for i, s := range scores {
		probs[i] = math.Exp(s - max)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}
