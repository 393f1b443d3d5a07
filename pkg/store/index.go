package store

import (
	"fmt"
	"os"
	"path/filepath"
)

// 已保存截图可能的扩展名，两种都算已存在
var indexExtensions = []string{".png", ".jpg"}

// FSIndex 以保存目录的路径布局作为去重索引
// 不在内存中缓存，存在性以当下的文件系统状态为准
type FSIndex struct {
	// Root 截图保存根目录
	Root string
}

// NewFSIndex 创建文件系统去重索引
func NewFSIndex(root string) *FSIndex {
	return &FSIndex{Root: root}
}

// Exists 检查 (商品 ID, 日期, 编号) 对应的截图是否已保存
// 不区分保存格式，png 或 jpg 任一存在即视为重复
func (x *FSIndex) Exists(productID, labelDate, serialNumber string) (bool, error) {
	dir := filepath.Join(x.Root, "ID_"+sanitizeName(productID), sanitizeName(labelDate))
	base := sanitizeName(serialNumber)

	for _, ext := range indexExtensions {
		_, err := os.Stat(filepath.Join(dir, base+ext))
		if err == nil {
			return true, nil
		}
		if !os.IsNotExist(err) {
			return false, fmt.Errorf("检查截图是否存在失败: %w", err)
		}
	}
	return false, nil
}

// MemIndex 内存去重索引，测试和试运行用
type MemIndex struct {
	seen map[string]struct{}
}

// NewMemIndex 创建内存去重索引
func NewMemIndex() *MemIndex {
	return &MemIndex{seen: make(map[string]struct{})}
}

// Exists 检查三元组是否已记录
func (x *MemIndex) Exists(productID, labelDate, serialNumber string) (bool, error) {
	_, ok := x.seen[memKey(productID, labelDate, serialNumber)]
	return ok, nil
}

// Add 记录一个三元组
func (x *MemIndex) Add(productID, labelDate, serialNumber string) {
	x.seen[memKey(productID, labelDate, serialNumber)] = struct{}{}
}

func memKey(productID, labelDate, serialNumber string) string {
	return productID + "|" + labelDate + "|" + serialNumber
}
