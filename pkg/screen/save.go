package screen

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
)

// SaveImage 将图像编码写入文件
// format: "png" 或 "jpg"/"jpeg"；quality 仅对 JPEG 生效（1-100，默认 95）
func SaveImage(img image.Image, path, format string, quality int) error {
	if img == nil {
		return fmt.Errorf("图像为空")
	}
	if quality <= 0 || quality > 100 {
		quality = 95
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建图片文件失败: %w", err)
	}
	defer f.Close()

	switch format {
	case "png", "":
		// PNG 无损压缩
		enc := png.Encoder{CompressionLevel: png.DefaultCompression}
		if err := enc.Encode(f, img); err != nil {
			return fmt.Errorf("PNG 编码失败: %w", err)
		}
	case "jpg", "jpeg":
		if err := jpeg.Encode(f, img, &jpeg.Options{Quality: quality}); err != nil {
			return fmt.Errorf("JPEG 编码失败: %w", err)
		}
	default:
		return fmt.Errorf("不支持的图像格式: %s", format)
	}

	return nil
}
