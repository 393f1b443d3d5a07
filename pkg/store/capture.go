package store

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
)

// EncodeFunc 将图像按指定格式写入路径
type EncodeFunc func(img image.Image, path, format string, quality int) error

// CaptureStore 截图保存器
// 路径布局: {Root}/ID_{商品ID}/{MM-DD}/{编号}.{png|jpg}
type CaptureStore struct {
	// Root 保存根目录
	Root string
	// Format 保存格式: png / jpg / jpeg
	Format string
	// Quality jpg 质量 (1-100)
	Quality int
	// Encode 图像编码函数
	Encode EncodeFunc
}

// NewCaptureStore 创建截图保存器
func NewCaptureStore(root, format string, quality int, encode EncodeFunc) *CaptureStore {
	return &CaptureStore{
		Root:    root,
		Format:  format,
		Quality: quality,
		Encode:  encode,
	}
}

// Save 保存一张截图，返回最终路径
// 目录不存在时自动创建，文件名成分中的非法字符替换为下划线
func (s *CaptureStore) Save(img image.Image, productID, labelDate, serialNumber string) (string, error) {
	dir := filepath.Join(s.Root, "ID_"+sanitizeName(productID), sanitizeName(labelDate))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建保存目录失败: %w", err)
	}

	ext := "png"
	if s.Format == "jpg" || s.Format == "jpeg" {
		ext = "jpg"
	}

	path := filepath.Join(dir, sanitizeName(serialNumber)+"."+ext)
	if err := s.Encode(img, path, s.Format, s.Quality); err != nil {
		return "", fmt.Errorf("保存截图失败: %w", err)
	}

	return path, nil
}
