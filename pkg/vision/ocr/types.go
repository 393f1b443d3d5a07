// Package ocr 提供基于 PaddleOCR 的文字识别功能
package ocr

import (
	"os"
	"path/filepath"
	"runtime"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// OcrResult OCR 识别结果
type OcrResult struct {
	// Text 识别的文字内容
	Text string `json:"text"`
	// Confidence 识别置信度 (0-1)
	Confidence float64 `json:"confidence"`
	// Position 文字中心位置
	Position Point `json:"position"`
}

// Config OCR 配置
type Config struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string
	// DetModelPath 检测模型路径
	DetModelPath string
	// RecModelPath 识别模型路径
	RecModelPath string
	// DictPath 字典文件路径
	DictPath string
	// CPUThreads CPU 线程数
	CPUThreads int
	// MinConfidence 置信度阈值，低于该值的识别结果被丢弃
	MinConfidence float64
	// MinHeight 识别前将过小的图像放大到该高度（0 表示不放大）
	MinHeight int
}

// DefaultConfig 默认配置
func DefaultConfig() Config {
	return Config{
		OnnxRuntimeLibPath: defaultOnnxRuntimePath(),
		DetModelPath:       defaultModelPath("det.onnx"),
		RecModelPath:       defaultModelPath("rec.onnx"),
		DictPath:           defaultModelPath("dict.txt"),
		CPUThreads:         4,
		MinConfidence:      0.3,
	}
}

// IsAvailable 检查 OCR 功能是否可用（模型文件是否存在）
func (c Config) IsAvailable() bool {
	return fileExists(c.OnnxRuntimeLibPath) &&
		fileExists(c.DetModelPath) &&
		fileExists(c.RecModelPath) &&
		fileExists(c.DictPath)
}

// executableDir 获取可执行文件所在目录
func executableDir() string {
	execPath, err := os.Executable()
	if err != nil {
		return "."
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return "."
	}
	return filepath.Dir(execPath)
}

// defaultOnnxRuntimePath 获取默认的 ONNX Runtime 库路径
func defaultOnnxRuntimePath() string {
	execDir := executableDir()

	var paths []string
	switch runtime.GOOS {
	case "darwin":
		paths = []string{
			filepath.Join(execDir, "libonnxruntime.dylib"),
			"models/lib/onnxruntime_arm64.dylib",
			"models/lib/onnxruntime_amd64.dylib",
		}
	case "windows":
		paths = []string{
			filepath.Join(execDir, "onnxruntime.dll"),
			"models/lib/onnxruntime.dll",
		}
	default:
		paths = []string{
			filepath.Join(execDir, "libonnxruntime.so"),
			"models/lib/onnxruntime_arm64.so",
			"models/lib/onnxruntime_amd64.so",
		}
	}

	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[len(paths)-1]
}

// defaultModelPath 获取默认的模型路径
func defaultModelPath(filename string) string {
	execDir := executableDir()

	paths := []string{
		filepath.Join(execDir, "models", "paddle_weights", filename),
		filepath.Join("models", "paddle_weights", filename),
	}

	for _, p := range paths {
		if fileExists(p) {
			return p
		}
	}
	return paths[0]
}

// fileExists 检查文件是否存在
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
