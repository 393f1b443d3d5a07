// Package journal 用 SQLite 记录每张已保存截图的流水
//
// 流水只追加不修改，供事后核对用，
// 去重判断不依赖流水，始终以保存目录的文件布局为准。
package journal

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/liveshot/livemonitor/pkg/monitor"
)

const schema = `
CREATE TABLE IF NOT EXISTS captures (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	product_id TEXT NOT NULL,
	serial_number TEXT NOT NULL,
	label_date TEXT NOT NULL,
	timestamp TEXT NOT NULL,
	filepath TEXT NOT NULL,
	style_category TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_captures_product ON captures(product_id, label_date);
`

// Journal 截图流水记录
type Journal struct {
	db *sql.DB
}

// Entry 一条流水记录
type Entry struct {
	ID            int64
	ProductID     string
	SerialNumber  string
	LabelDate     string
	Timestamp     string
	Filepath      string
	StyleCategory string
	CreatedAt     string
}

// Open 打开或创建流水数据库
func Open(path string) (*Journal, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("创建流水目录失败: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("打开流水数据库失败: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化流水表失败: %w", err)
	}

	return &Journal{db: db}, nil
}

// Record 追加一条流水
func (j *Journal) Record(rec *monitor.ProductRecord) error {
	_, err := j.db.Exec(
		`INSERT INTO captures (product_id, serial_number, label_date, timestamp, filepath, style_category, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ProductID, rec.SerialNumber, rec.LabelDate, rec.Timestamp,
		rec.Filepath, rec.StyleCategory,
		time.Now().Format("2006-01-02 15:04:05"),
	)
	if err != nil {
		return fmt.Errorf("写入流水失败: %w", err)
	}
	return nil
}

// Recent 返回最近的 n 条流水，按写入时间倒序
func (j *Journal) Recent(n int) ([]Entry, error) {
	rows, err := j.db.Query(
		`SELECT id, product_id, serial_number, label_date, timestamp, filepath, style_category, created_at
		 FROM captures ORDER BY id DESC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("查询流水失败: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ProductID, &e.SerialNumber, &e.LabelDate,
			&e.Timestamp, &e.Filepath, &e.StyleCategory, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("读取流水失败: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// CountByProduct 统计某商品在某日的保存数量
func (j *Journal) CountByProduct(productID, labelDate string) (int, error) {
	var count int
	err := j.db.QueryRow(
		`SELECT COUNT(*) FROM captures WHERE product_id = ? AND label_date = ?`,
		productID, labelDate).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("统计流水失败: %w", err)
	}
	return count, nil
}

// Close 关闭数据库
func (j *Journal) Close() error {
	return j.db.Close()
}
