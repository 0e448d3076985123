// level.go 重导出 xlevel 的级别类型与常量，使用注册表 API 时无需额外导入。
package xlog

import "github.com/omeyang/logkit/pkg/log/xlevel"

// Level 日志级别，数值越大越严重。别名指向 xlevel.Level。
type Level = xlevel.Level

const (
	LevelTrace = xlevel.LevelTrace
	LevelDebug = xlevel.LevelDebug
	LevelInfo  = xlevel.LevelInfo
	LevelWarn  = xlevel.LevelWarn
	LevelError = xlevel.LevelError
	LevelFatal = xlevel.LevelFatal
	LevelOff   = xlevel.LevelOff
)

// ParseLevel 解析字符串为日志级别，语义见 xlevel.ParseLevel：
// 大小写不敏感，"warning" 是 Warn 的别名，无法识别的输入返回
// (LevelInfo, 非 nil 错误)。
func ParseLevel(s string) (Level, error) {
	return xlevel.ParseLevel(s)
}
