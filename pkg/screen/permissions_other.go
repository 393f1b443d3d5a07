//go:build !darwin

package screen

// CheckScreenRecordingPermission 检查屏幕录制权限
// 非 macOS 系统不需要特殊权限
func CheckScreenRecordingPermission() bool {
	return true
}

// OpenScreenRecordingSettings 打开屏幕录制设置页面
func OpenScreenRecordingSettings() {
	// 非 macOS 不需要
}

// PermissionInstructions 权限说明
func PermissionInstructions() string {
	return ""
}
