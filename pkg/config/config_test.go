package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Monitor.TriggerKeyword != "fafa" {
		t.Errorf("默认触发关键词应为 fafa, 实际为 %s", cfg.Monitor.TriggerKeyword)
	}
	if cfg.Monitor.Interval != 1.0 {
		t.Errorf("默认检测间隔应为 1.0, 实际为 %v", cfg.Monitor.Interval)
	}
	if len(cfg.Monitor.SerialMarkers) != 2 {
		t.Errorf("默认编号标记应有 2 个, 实际为 %v", cfg.Monitor.SerialMarkers)
	}
	if cfg.Storage.Format != "png" {
		t.Errorf("默认图片格式应为 png, 实际为 %s", cfg.Storage.Format)
	}
	if cfg.Storage.Quality != 95 {
		t.Errorf("默认 JPEG 质量应为 95, 实际为 %d", cfg.Storage.Quality)
	}
	if cfg.OCR.MinConfidence != 0.3 {
		t.Errorf("默认置信度阈值应为 0.3, 实际为 %v", cfg.OCR.MinConfidence)
	}

	t.Logf("默认配置: %+v", cfg)
}

func TestLoadNonExistent(t *testing.T) {
	// 加载不存在的配置应返回默认值且不报错
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("加载不存在的配置不应报错: %v", err)
	}
	if cfg.Monitor.TriggerKeyword != "fafa" {
		t.Errorf("应返回默认配置")
	}
	t.Logf("加载不存在的配置返回默认值: OK")
}

func TestLoadFromFile(t *testing.T) {
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, "config.yaml")

	yaml := `
monitor_region:
  left: 10
  top: 20
  width: 300
  height: 600
monitor:
  interval: 0.5
  trigger_keyword: hello
  serial_markers:
    - abc
storage:
  save_dir: /tmp/shots
  format: JPG
  quality: 80
`
	if err := os.WriteFile(configFile, []byte(yaml), 0644); err != nil {
		t.Fatalf("写入测试配置失败: %v", err)
	}

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("加载配置失败: %v", err)
	}

	if cfg.MonitorRegion.Left != 10 || cfg.MonitorRegion.Top != 20 {
		t.Errorf("监控区域坐标不匹配: %+v", cfg.MonitorRegion)
	}
	if cfg.Monitor.Interval != 0.5 {
		t.Errorf("检测间隔不匹配: 期望 0.5, 实际 %v", cfg.Monitor.Interval)
	}
	if cfg.Monitor.TriggerKeyword != "hello" {
		t.Errorf("触发关键词不匹配: %s", cfg.Monitor.TriggerKeyword)
	}
	if len(cfg.Monitor.SerialMarkers) != 1 || cfg.Monitor.SerialMarkers[0] != "abc" {
		t.Errorf("编号标记不匹配: %v", cfg.Monitor.SerialMarkers)
	}
	// 格式应被规范化为小写
	if cfg.Storage.Format != "jpg" {
		t.Errorf("图片格式应规范化为 jpg, 实际为 %s", cfg.Storage.Format)
	}
	if cfg.Storage.Quality != 80 {
		t.Errorf("质量不匹配: %d", cfg.Storage.Quality)
	}

	// 未配置的项应落到默认值
	if cfg.OCR.MinConfidence != 0.3 {
		t.Errorf("缺省置信度阈值应为 0.3, 实际为 %v", cfg.OCR.MinConfidence)
	}
	if cfg.Log.Level != "INFO" {
		t.Errorf("缺省日志级别应为 INFO, 实际为 %s", cfg.Log.Level)
	}

	t.Logf("加载的配置: %+v", cfg)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"默认配置合法", func(c *Config) {}, false},
		{"区域宽度为 0", func(c *Config) { c.MonitorRegion.Width = 0 }, true},
		{"间隔为负", func(c *Config) { c.Monitor.Interval = -1 }, true},
		{"触发关键词为空", func(c *Config) { c.Monitor.TriggerKeyword = "" }, true},
		{"非法图片格式", func(c *Config) { c.Storage.Format = "bmp" }, true},
		{"jpeg 格式合法", func(c *Config) { c.Storage.Format = "jpeg" }, false},
		{"分类器缺模型路径", func(c *Config) { c.Classifier.Enabled = true }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateNormalizesQuality(t *testing.T) {
	cfg := Default()
	cfg.Storage.Quality = 0
	if err := cfg.Validate(); err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if cfg.Storage.Quality != 95 {
		t.Errorf("非法质量值应回落到默认 95, 实际为 %d", cfg.Storage.Quality)
	}

	cfg.Storage.Quality = 101
	if err := cfg.Validate(); err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if cfg.Storage.Quality != 95 {
		t.Errorf("超出范围的质量值应回落到默认 95, 实际为 %d", cfg.Storage.Quality)
	}
}

func TestValidateFillsSerialMarkers(t *testing.T) {
	cfg := Default()
	cfg.Monitor.SerialMarkers = nil
	if err := cfg.Validate(); err != nil {
		t.Fatalf("校验失败: %v", err)
	}
	if len(cfg.Monitor.SerialMarkers) != 2 {
		t.Errorf("空编号标记应回落到默认值, 实际为 %v", cfg.Monitor.SerialMarkers)
	}
}
