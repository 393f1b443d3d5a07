package journal

import (
	"path/filepath"
	"testing"

	"github.com/liveshot/livemonitor/pkg/monitor"
)

func testRecord(productID, serial string) *monitor.ProductRecord {
	return &monitor.ProductRecord{
		ProductID:    productID,
		SerialNumber: serial,
		LabelDate:    "08-26",
		RawText:      "fafa 2532\nID: 41",
		Timestamp:    "20260826_120000",
		Filepath:     filepath.Join("ID_"+productID, "08-26", serial+".png"),
	}
}

func TestJournalRecordAndRecent(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "captures.db"))
	if err != nil {
		t.Fatalf("打开流水数据库失败: %v", err)
	}
	defer j.Close()

	if err := j.Record(testRecord("41", "2532")); err != nil {
		t.Fatalf("写入流水失败: %v", err)
	}
	if err := j.Record(testRecord("42", "100")); err != nil {
		t.Fatalf("写入流水失败: %v", err)
	}

	entries, err := j.Recent(10)
	if err != nil {
		t.Fatalf("查询流水失败: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("流水条数 = %d, 期望 2", len(entries))
	}

	// 倒序: 最后写入的在前
	if entries[0].ProductID != "42" || entries[0].SerialNumber != "100" {
		t.Errorf("最新流水 = %s/%s, 期望 42/100", entries[0].ProductID, entries[0].SerialNumber)
	}
	if entries[1].ProductID != "41" {
		t.Errorf("第二条流水 ID = %s, 期望 41", entries[1].ProductID)
	}
	if entries[0].LabelDate != "08-26" {
		t.Errorf("日期 = %s, 期望 08-26", entries[0].LabelDate)
	}
}

func TestJournalCountByProduct(t *testing.T) {
	j, err := Open(filepath.Join(t.TempDir(), "captures.db"))
	if err != nil {
		t.Fatalf("打开流水数据库失败: %v", err)
	}
	defer j.Close()

	for _, serial := range []string{"1", "2", "3"} {
		if err := j.Record(testRecord("41", serial)); err != nil {
			t.Fatalf("写入流水失败: %v", err)
		}
	}
	if err := j.Record(testRecord("42", "9")); err != nil {
		t.Fatalf("写入流水失败: %v", err)
	}

	count, err := j.CountByProduct("41", "08-26")
	if err != nil {
		t.Fatalf("统计流水失败: %v", err)
	}
	if count != 3 {
		t.Errorf("ID 41 保存数量 = %d, 期望 3", count)
	}

	count, _ = j.CountByProduct("41", "08-27")
	if count != 0 {
		t.Errorf("其他日期保存数量 = %d, 期望 0", count)
	}
}

func TestJournalCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "nested", "captures.db")

	j, err := Open(path)
	if err != nil {
		t.Fatalf("打开流水数据库失败: %v", err)
	}
	defer j.Close()

	if err := j.Record(testRecord("41", "1")); err != nil {
		t.Fatalf("写入流水失败: %v", err)
	}
}
