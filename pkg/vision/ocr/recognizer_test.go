package ocr

import (
	"image"
	"image/color"
	"image/draw"
	"os"
	"strings"
	"testing"

	goocr "github.com/getcharzp/go-ocr"
	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
)

var labelFont *truetype.Font

// loadLabelFont 加载可绘制数字和字母的字体
func loadLabelFont() *truetype.Font {
	if labelFont != nil {
		return labelFont
	}

	fontPaths := []string{
		// macOS
		"/System/Library/Fonts/STHeiti Medium.ttc",
		"/System/Library/Fonts/PingFang.ttc",
		"/Library/Fonts/Arial Unicode.ttf",
		// Windows
		"C:\\Windows\\Fonts\\msyh.ttc",
		"C:\\Windows\\Fonts\\simhei.ttf",
		// Linux
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/droid/DroidSansFallbackFull.ttf",
		"/usr/share/fonts/opentype/noto/NotoSansCJK-Regular.ttc",
	}

	for _, path := range fontPaths {
		fontBytes, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		f, err := truetype.Parse(fontBytes)
		if err != nil {
			continue
		}
		labelFont = f
		return f
	}
	return nil
}

// drawLabelText 在图像上绘制文字
func drawLabelText(img *image.RGBA, x, y int, text string, fontSize float64, col color.Color) bool {
	f := loadLabelFont()
	if f == nil {
		return false
	}

	c := freetype.NewContext()
	c.SetDPI(72)
	c.SetFont(f)
	c.SetFontSize(fontSize)
	c.SetClip(img.Bounds())
	c.SetDst(img)
	c.SetSrc(image.NewUniform(col))
	c.SetHinting(font.HintingFull)

	pt := freetype.Pt(x, y+int(c.PointToFixed(fontSize)>>6))
	if _, err := c.DrawString(text, pt); err != nil {
		return false
	}
	return true
}

// makeLabelImage 生成一张模拟商品标签的白底黑字图片
func makeLabelImage(t *testing.T, lines []string) image.Image {
	rgba := image.NewRGBA(image.Rect(0, 0, 400, 60+40*len(lines)))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)

	for i, line := range lines {
		if !drawLabelText(rgba, 20, 20+40*i, line, 28, color.Black) {
			t.Skip("系统字体不可用, 跳过测试")
		}
	}
	return rgba
}

// setupRecognizer 创建识别器，模型不可用时跳过测试
func setupRecognizer(t *testing.T) *TextRecognizer {
	config := DefaultConfig()
	if !config.IsAvailable() {
		t.Skipf("OCR 模型文件不可用, 跳过测试 (det: %s)", config.DetModelPath)
	}

	r, err := NewTextRecognizer(config)
	if err != nil {
		t.Fatalf("创建 OCR 识别器失败: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return r
}

func TestRecognizeLines(t *testing.T) {
	r := setupRecognizer(t)
	img := makeLabelImage(t, []string{"fafa 2532", "ID: 41"})

	fullText, lines, err := r.RecognizeLines(img)
	if err != nil {
		t.Fatalf("识别失败: %v", err)
	}

	t.Logf("识别到 %d 行: %q", len(lines), lines)
	if len(lines) == 0 {
		t.Fatal("白底黑字图片应识别出文本")
	}

	joined := strings.ToLower(fullText)
	if !strings.Contains(joined, "2532") {
		t.Errorf("识别结果应包含编号 2532, 实际: %s", fullText)
	}
	if !strings.Contains(joined, "41") {
		t.Errorf("识别结果应包含 ID 41, 实际: %s", fullText)
	}
}

func TestRecognizeFiltersLowConfidence(t *testing.T) {
	config := DefaultConfig()
	if !config.IsAvailable() {
		t.Skipf("OCR 模型文件不可用, 跳过测试")
	}
	// 阈值拉满时应过滤掉所有结果
	config.MinConfidence = 1.01

	r, err := NewTextRecognizer(config)
	if err != nil {
		t.Fatalf("创建 OCR 识别器失败: %v", err)
	}
	defer r.Close()

	img := makeLabelImage(t, []string{"ID: 41"})
	results, err := r.Recognize(img)
	if err != nil {
		t.Fatalf("识别失败: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("阈值 1.01 应过滤所有结果, 实际 %d 条", len(results))
	}
}

func TestPreprocessUpscalesSmallImage(t *testing.T) {
	r := &TextRecognizer{config: Config{MinHeight: 100}}

	small := image.NewRGBA(image.Rect(0, 0, 200, 50))
	out := r.preprocess(small)
	if out.Bounds().Dy() != 100 {
		t.Errorf("放大后高度 = %d, 期望 100", out.Bounds().Dy())
	}
	// 等比缩放
	if out.Bounds().Dx() != 400 {
		t.Errorf("放大后宽度 = %d, 期望 400", out.Bounds().Dx())
	}

	big := image.NewRGBA(image.Rect(0, 0, 200, 150))
	if out := r.preprocess(big); out != big {
		t.Error("高度足够的图像不应缩放")
	}
}

func TestConvertResult(t *testing.T) {
	res := convertResult(goocr.RecResult{
		Text:  "fafa",
		Score: 0.95,
		Box:   [4]int{10, 20, 110, 60},
	})

	if res.Text != "fafa" {
		t.Errorf("文本 = %s, 期望 fafa", res.Text)
	}
	if res.Position.X != 60 || res.Position.Y != 40 {
		t.Errorf("中心位置 = (%d, %d), 期望 (60, 40)", res.Position.X, res.Position.Y)
	}
}
