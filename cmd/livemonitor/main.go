package main

import (
	"flag"
	"fmt"
	"image"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/liveshot/livemonitor/internal/logger"
	"github.com/liveshot/livemonitor/pkg/config"
	"github.com/liveshot/livemonitor/pkg/journal"
	"github.com/liveshot/livemonitor/pkg/monitor"
	"github.com/liveshot/livemonitor/pkg/screen"
	"github.com/liveshot/livemonitor/pkg/store"
	"github.com/liveshot/livemonitor/pkg/vision/classify"
	"github.com/liveshot/livemonitor/pkg/vision/ocr"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	// 命令行参数
	var (
		configPath  = flag.String("config", "", "配置文件路径 (默认当前目录 config.yaml)")
		showVersion = flag.Bool("version", false, "显示版本信息")
		showHelp    = flag.Bool("help", false, "显示帮助信息")
	)

	flag.Parse()

	// 显示版本
	if *showVersion {
		printVersion()
		return
	}

	// 显示帮助
	if *showHelp {
		printHelp()
		return
	}

	// 加载配置
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("[ERROR] 加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.SetLevel(logger.ParseLevel(cfg.Log.Level))
	if cfg.Log.Dir != "" {
		logPath := filepath.Join(cfg.Log.Dir, "monitor_"+time.Now().Format("20060102")+".log")
		if err := logger.SetFile(logPath); err != nil {
			fmt.Printf("[WARN] 日志文件初始化失败: %v\n", err)
		}
	}

	// 打印启动信息
	fmt.Println("========================================")
	fmt.Printf("  Live Monitor v%s\n", Version)
	fmt.Println("========================================")
	fmt.Printf("监控区域: (%d, %d) %dx%d\n",
		cfg.MonitorRegion.Left, cfg.MonitorRegion.Top,
		cfg.MonitorRegion.Width, cfg.MonitorRegion.Height)
	fmt.Printf("触发关键词: %s\n", cfg.Monitor.TriggerKeyword)
	fmt.Printf("保存目录: %s\n", cfg.Storage.SaveDir)
	fmt.Println()

	// macOS 屏幕录制权限检查
	if runtime.GOOS == "darwin" && !screen.CheckScreenRecordingPermission() {
		fmt.Println("[WARN] ========== 缺少权限 ==========")
		fmt.Println(screen.PermissionInstructions())
		fmt.Println("[WARN] ==================================")
		screen.OpenScreenRecordingSettings()
		os.Exit(1)
	}

	// 子命令
	switch flag.Arg(0) {
	case "select":
		runSelect()
	case "test":
		runTest(cfg)
	case "", "run":
		runMonitor(cfg)
	default:
		fmt.Printf("[ERROR] 未知命令: %s\n", flag.Arg(0))
		printHelp()
		os.Exit(1)
	}
}

// runMonitor 启动持续监控
func runMonitor(cfg *config.Config) {
	recognizer, err := newRecognizer(cfg)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	m := monitor.New(
		regionCapture(cfg),
		recognizer,
		monitor.NewExtractor(cfg.Monitor.SerialMarkers),
		cfg.Monitor.TriggerKeyword,
		store.NewFSIndex(cfg.Storage.SaveDir),
		store.NewCaptureStore(cfg.Storage.SaveDir, cfg.Storage.Format, cfg.Storage.Quality, screen.SaveImage),
	)
	m.Interval = time.Duration(cfg.Monitor.Interval * float64(time.Second))
	m.LogsDir = cfg.Log.Dir

	// 可选的款式分类器
	if cfg.Classifier.Enabled {
		c, err := classify.New(classify.Config{
			ModelPath:     cfg.Classifier.ModelPath,
			Categories:    cfg.Classifier.Categories,
			InputSize:     cfg.Classifier.InputSize,
			MinConfidence: cfg.Classifier.MinConfidence,
		})
		if err != nil {
			fmt.Printf("[WARN] 款式分类器加载失败, 跳过分类: %v\n", err)
		} else {
			defer c.Close()
			m.Classifier = c
		}
	}

	// 可选的截图流水库
	if cfg.Journal.Enabled {
		j, err := journal.Open(cfg.Journal.Path)
		if err != nil {
			fmt.Printf("[WARN] 截图流水库打开失败, 跳过流水: %v\n", err)
		} else {
			defer j.Close()
			m.Journal = j
		}
	}

	fmt.Println("[INFO] 监控已启动, 按 Ctrl+C 停止")

	// 等待中断信号
	stop := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println()
		fmt.Println("[INFO] 正在停止...")
		close(stop)
	}()

	m.Run(stop)
	fmt.Println("[INFO] 已退出")
}

// runSelect 交互式选择监控区域
// 依次读取鼠标在左上角和右下角的位置，输出配置片段
func runSelect() {
	w, h := screen.GetScreenSize()
	fmt.Printf("屏幕尺寸: %dx%d (共 %d 个显示器)\n", w, h, screen.GetDisplayCount())
	fmt.Println()

	left, top := capturePoint("请将鼠标移到监控区域的 左上角")
	right, bottom := capturePoint("请将鼠标移到监控区域的 右下角")

	if right <= left || bottom <= top {
		fmt.Println("[ERROR] 右下角必须在左上角的右下方")
		os.Exit(1)
	}

	fmt.Println()
	fmt.Println("将以下内容写入 config.yaml:")
	fmt.Println()
	fmt.Println("monitor_region:")
	fmt.Printf("  left: %d\n", left)
	fmt.Printf("  top: %d\n", top)
	fmt.Printf("  width: %d\n", right-left)
	fmt.Printf("  height: %d\n", bottom-top)
}

// capturePoint 倒计时后读取鼠标位置
func capturePoint(prompt string) (int, int) {
	fmt.Println(prompt)
	for i := 3; i > 0; i-- {
		fmt.Printf("  %d...\n", i)
		time.Sleep(time.Second)
	}
	x, y := screen.GetMousePos()
	fmt.Printf("  已记录: (%d, %d)\n\n", x, y)
	return x, y
}

// runTest 截取一次监控区域并打印识别和提取结果
func runTest(cfg *config.Config) {
	recognizer, err := newRecognizer(cfg)
	if err != nil {
		fmt.Printf("[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer recognizer.Close()

	img, err := regionCapture(cfg)()
	if err != nil {
		fmt.Printf("[ERROR] 截图失败: %v\n", err)
		os.Exit(1)
	}

	fullText, lines, err := recognizer.RecognizeLines(img)
	if err != nil {
		fmt.Printf("[ERROR] 识别失败: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("识别到 %d 行文本:\n", len(lines))
	for i, line := range lines {
		fmt.Printf("  %d. %s\n", i+1, line)
	}

	if monitor.DetectTrigger(lines, cfg.Monitor.TriggerKeyword) {
		fmt.Printf("\n✓ 检测到触发关键词: %s\n", cfg.Monitor.TriggerKeyword)
	} else {
		fmt.Printf("\n✗ 未检测到触发关键词: %s\n", cfg.Monitor.TriggerKeyword)
	}

	records := monitor.NewExtractor(cfg.Monitor.SerialMarkers).Extract(fullText, lines)
	if len(records) == 0 {
		fmt.Println("未提取到商品记录")
		return
	}
	fmt.Printf("提取到 %d 条商品记录:\n", len(records))
	for _, rec := range records {
		fmt.Printf("  ID: %s | 日期: %s | 编号: %s\n", rec.ProductID, rec.LabelDate, rec.SerialNumber)
	}
}

// newRecognizer 按配置创建 OCR 识别器，配置缺省时回退到默认模型路径
func newRecognizer(cfg *config.Config) (*ocr.TextRecognizer, error) {
	ocrConfig := ocr.DefaultConfig()
	if cfg.OCR.OnnxRuntimeLibPath != "" {
		ocrConfig.OnnxRuntimeLibPath = cfg.OCR.OnnxRuntimeLibPath
	}
	if cfg.OCR.DetModelPath != "" {
		ocrConfig.DetModelPath = cfg.OCR.DetModelPath
	}
	if cfg.OCR.RecModelPath != "" {
		ocrConfig.RecModelPath = cfg.OCR.RecModelPath
	}
	if cfg.OCR.DictPath != "" {
		ocrConfig.DictPath = cfg.OCR.DictPath
	}
	if cfg.OCR.CPUThreads > 0 {
		ocrConfig.CPUThreads = cfg.OCR.CPUThreads
	}
	if cfg.OCR.MinConfidence > 0 {
		ocrConfig.MinConfidence = cfg.OCR.MinConfidence
	}
	ocrConfig.MinHeight = cfg.OCR.MinHeight

	if !ocrConfig.IsAvailable() {
		return nil, fmt.Errorf("OCR 模型文件不完整, 请检查 models 目录或配置中的模型路径")
	}

	return ocr.NewTextRecognizer(ocrConfig)
}

// regionCapture 返回截取配置区域的截图函数
func regionCapture(cfg *config.Config) monitor.CaptureFunc {
	r := cfg.MonitorRegion
	return func() (image.Image, error) {
		return screen.CaptureRegion(r.Left, r.Top, r.Width, r.Height)
	}
}

// printVersion 打印版本信息
func printVersion() {
	fmt.Printf("Live Monitor v%s\n", Version)
	fmt.Printf("Build Time: %s\n", BuildTime)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}

// printHelp 打印帮助信息
func printHelp() {
	fmt.Println("Live Monitor - 直播画面商品标签监控工具")
	fmt.Println()
	fmt.Println("用法:")
	fmt.Println("  livemonitor [选项] [命令]")
	fmt.Println()
	fmt.Println("命令:")
	fmt.Println("  run     启动持续监控 (默认)")
	fmt.Println("  select  交互式选择监控区域")
	fmt.Println("  test    截取一次并打印识别结果")
	fmt.Println()
	fmt.Println("选项:")
	fmt.Println("  -config string  配置文件路径 (默认当前目录 config.yaml)")
	fmt.Println("  -version        显示版本信息")
	fmt.Println("  -help           显示帮助信息")
	fmt.Println()
	fmt.Println("示例:")
	fmt.Println("  # 选择监控区域并写入配置")
	fmt.Println("  livemonitor select")
	fmt.Println()
	fmt.Println("  # 验证识别效果")
	fmt.Println("  livemonitor test")
	fmt.Println()
	fmt.Println("  # 启动监控")
	fmt.Println("  livemonitor -config config.yaml run")
}
