// Package store 管理截图的落盘与去重索引
//
// 目录结构固定为 {根目录}/ID_{商品ID}/{MM-DD}/{编号}.{png|jpg}，
// 去重不依赖内存状态或数据库，直接以该路径布局为索引，
// 程序重启后去重结果保持一致。
package store

import "strings"

// invalidNameChars 文件名中需要替换的字符
const invalidNameChars = `<>:"/\|?*`

// sanitizeName 替换路径成分中的非法字符为下划线
// 去重查询与保存使用同一套替换规则，保证查到的就是会写入的
func sanitizeName(name string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(invalidNameChars, r) {
			return '_'
		}
		return r
	}, name)
}
