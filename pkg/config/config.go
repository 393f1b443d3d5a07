// Package config 提供监控配置的加载与默认值
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// RegionConfig 屏幕监控区域（像素坐标）
type RegionConfig struct {
	Left   int `mapstructure:"left"`
	Top    int `mapstructure:"top"`
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// MonitorConfig 监控行为配置
type MonitorConfig struct {
	// Interval 检测间隔（秒）
	Interval float64 `mapstructure:"interval"`
	// TriggerKeyword 触发关键词（任意一行包含即触发）
	TriggerKeyword string `mapstructure:"trigger_keyword"`
	// SerialMarkers 编号标记关键词，编号只在这些关键词附近查找
	SerialMarkers []string `mapstructure:"serial_markers"`
}

// OCRConfig OCR 引擎配置
type OCRConfig struct {
	// OnnxRuntimeLibPath ONNX Runtime 动态库路径
	OnnxRuntimeLibPath string `mapstructure:"onnxruntime_lib_path"`
	// DetModelPath 检测模型路径
	DetModelPath string `mapstructure:"det_model_path"`
	// RecModelPath 识别模型路径
	RecModelPath string `mapstructure:"rec_model_path"`
	// DictPath 字典文件路径
	DictPath string `mapstructure:"dict_path"`
	// CPUThreads CPU 线程数
	CPUThreads int `mapstructure:"cpu_threads"`
	// MinConfidence 置信度阈值，低于该值的识别行被丢弃
	MinConfidence float64 `mapstructure:"min_confidence"`
	// MinHeight 识别前将过小的区域放大到该高度（0 表示不放大）
	MinHeight int `mapstructure:"min_height"`
}

// StorageConfig 截图存储配置
type StorageConfig struct {
	// SaveDir 截图保存根目录
	SaveDir string `mapstructure:"save_dir"`
	// Format 图片格式: png 或 jpg
	Format string `mapstructure:"format"`
	// Quality JPEG 质量 1-100
	Quality int `mapstructure:"quality"`
}

// ClassifierConfig 可选的款式分类器配置
type ClassifierConfig struct {
	Enabled bool `mapstructure:"enabled"`
	// ModelPath ONNX 分类模型路径
	ModelPath string `mapstructure:"model_path"`
	// Categories 类别名称列表，顺序与模型输出一致
	Categories []string `mapstructure:"categories"`
	// InputSize 模型输入尺寸（正方形边长）
	InputSize int `mapstructure:"input_size"`
	// MinConfidence 低于该置信度返回 unknown
	MinConfidence float64 `mapstructure:"min_confidence"`
}

// JournalConfig 截图流水库配置
type JournalConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `mapstructure:"level"`
	// Dir 日志目录（OCR 日志和运行日志）
	Dir string `mapstructure:"dir"`
}

// Config 完整配置
type Config struct {
	MonitorRegion RegionConfig     `mapstructure:"monitor_region"`
	Monitor       MonitorConfig    `mapstructure:"monitor"`
	OCR           OCRConfig        `mapstructure:"ocr"`
	Storage       StorageConfig    `mapstructure:"storage"`
	Classifier    ClassifierConfig `mapstructure:"classifier"`
	Journal       JournalConfig    `mapstructure:"journal"`
	Log           LogConfig        `mapstructure:"log"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		MonitorRegion: RegionConfig{
			Left:   100,
			Top:    100,
			Width:  400,
			Height: 800,
		},
		Monitor: MonitorConfig{
			Interval:       1.0,
			TriggerKeyword: "fafa",
			SerialMarkers:  []string{"mtk", "yeye"},
		},
		OCR: OCRConfig{
			CPUThreads:    4,
			MinConfidence: 0.3,
			MinHeight:     0,
		},
		Storage: StorageConfig{
			SaveDir: "./screenshots",
			Format:  "png",
			Quality: 95,
		},
		Classifier: ClassifierConfig{
			Enabled:       false,
			InputSize:     224,
			MinConfidence: 0.5,
		},
		Journal: JournalConfig{
			Enabled: false,
			Path:    "./captures.db",
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "./logs",
		},
	}
}

// Load 加载配置文件
// path 为空时在当前目录查找 config.yaml；文件不存在时返回默认配置
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// 配置文件不存在不是错误，使用默认配置
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return Default(), nil
		}
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return Default(), fmt.Errorf("解析配置失败: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}

	return cfg, nil
}

// setDefaults 将默认值写入 viper，缺失的配置项落到默认值
func setDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("monitor_region.left", d.MonitorRegion.Left)
	v.SetDefault("monitor_region.top", d.MonitorRegion.Top)
	v.SetDefault("monitor_region.width", d.MonitorRegion.Width)
	v.SetDefault("monitor_region.height", d.MonitorRegion.Height)

	v.SetDefault("monitor.interval", d.Monitor.Interval)
	v.SetDefault("monitor.trigger_keyword", d.Monitor.TriggerKeyword)
	v.SetDefault("monitor.serial_markers", d.Monitor.SerialMarkers)

	v.SetDefault("ocr.cpu_threads", d.OCR.CPUThreads)
	v.SetDefault("ocr.min_confidence", d.OCR.MinConfidence)
	v.SetDefault("ocr.min_height", d.OCR.MinHeight)

	v.SetDefault("storage.save_dir", d.Storage.SaveDir)
	v.SetDefault("storage.format", d.Storage.Format)
	v.SetDefault("storage.quality", d.Storage.Quality)

	v.SetDefault("classifier.enabled", d.Classifier.Enabled)
	v.SetDefault("classifier.input_size", d.Classifier.InputSize)
	v.SetDefault("classifier.min_confidence", d.Classifier.MinConfidence)

	v.SetDefault("journal.enabled", d.Journal.Enabled)
	v.SetDefault("journal.path", d.Journal.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.dir", d.Log.Dir)
}

// Validate 校验并规范化配置
func (c *Config) Validate() error {
	if c.MonitorRegion.Width <= 0 || c.MonitorRegion.Height <= 0 {
		return fmt.Errorf("监控区域尺寸无效: %dx%d", c.MonitorRegion.Width, c.MonitorRegion.Height)
	}
	if c.Monitor.Interval <= 0 {
		return fmt.Errorf("检测间隔必须大于 0: %v", c.Monitor.Interval)
	}
	if c.Monitor.TriggerKeyword == "" {
		return fmt.Errorf("触发关键词不能为空")
	}
	if len(c.Monitor.SerialMarkers) == 0 {
		c.Monitor.SerialMarkers = Default().Monitor.SerialMarkers
	}

	c.Storage.Format = strings.ToLower(c.Storage.Format)
	switch c.Storage.Format {
	case "png", "jpg", "jpeg":
	default:
		return fmt.Errorf("不支持的图片格式: %s", c.Storage.Format)
	}
	if c.Storage.Quality <= 0 || c.Storage.Quality > 100 {
		c.Storage.Quality = Default().Storage.Quality
	}

	if c.Classifier.Enabled && c.Classifier.ModelPath == "" {
		return fmt.Errorf("启用分类器时必须配置 model_path")
	}

	return nil
}
