//go:build darwin

package screen

/*
#cgo CFLAGS: -x objective-c
#cgo LDFLAGS: -framework Cocoa -framework CoreGraphics
#import <Cocoa/Cocoa.h>
#import <CoreGraphics/CoreGraphics.h>

// 检查屏幕录制权限
// 没有权限时 CGWindowListCopyWindowInfo 拿不到其他进程的窗口名称
int checkScreenRecordingPermission() {
    if (@available(macOS 10.15, *)) {
        CFArrayRef windowList = CGWindowListCopyWindowInfo(
            kCGWindowListOptionOnScreenOnly | kCGWindowListExcludeDesktopElements,
            kCGNullWindowID
        );

        if (windowList == NULL) {
            return 0;
        }

        CFIndex count = CFArrayGetCount(windowList);
        int hasNames = 0;

        for (CFIndex i = 0; i < count; i++) {
            CFDictionaryRef window = (CFDictionaryRef)CFArrayGetValueAtIndex(windowList, i);
            CFStringRef name = (CFStringRef)CFDictionaryGetValue(window, kCGWindowName);
            if (name != NULL && CFStringGetLength(name) > 0) {
                hasNames = 1;
                break;
            }
        }

        CFRelease(windowList);

        return (count == 0 || hasNames) ? 1 : 0;
    }
    return 1; // 旧版本不需要
}

// 打开系统偏好设置 - 屏幕录制
void openScreenRecordingPreferences() {
    NSString *urlString = @"x-apple.systempreferences:com.apple.preference.security?Privacy_ScreenCapture";
    [[NSWorkspace sharedWorkspace] openURL:[NSURL URLWithString:urlString]];
}
*/
import "C"

// CheckScreenRecordingPermission 检查屏幕录制权限（不触发弹窗）
func CheckScreenRecordingPermission() bool {
	return C.checkScreenRecordingPermission() == 1
}

// OpenScreenRecordingSettings 打开屏幕录制设置页面
func OpenScreenRecordingSettings() {
	C.openScreenRecordingPreferences()
}

// PermissionInstructions 权限说明
func PermissionInstructions() string {
	return "需要屏幕录制权限才能截取直播画面:\n" +
		"  系统偏好设置 > 安全性与隐私 > 隐私 > 屏幕录制\n" +
		"授权后需要重启应用才能生效。"
}
