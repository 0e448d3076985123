package xlevel

import (
	"fmt"
	"strings"
)

// Level 日志级别，数值越大越严重。
type Level int8

// 级别常量，秩连续且全序。
const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
	LevelOff
)

// Levels 返回全部级别，按秩升序。
// 返回新切片，调用方可自由修改。
func Levels() []Level {
	return []Level{LevelTrace, LevelDebug, LevelInfo, LevelWarn, LevelError, LevelFatal, LevelOff}
}

// String 返回级别的大写名称。
// 非法数值返回 "LEVEL(n)" 形式，便于诊断。
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	case LevelOff:
		return "OFF"
	default:
		return fmt.Sprintf("LEVEL(%d)", int8(l))
	}
}

// Valid 报告级别是否为已定义的档位。
func (l Level) Valid() bool {
	return l >= LevelTrace && l <= LevelOff
}

// Enabled 报告级别是否达到阈值 min（l >= min）。
// 阈值为 Off 时任何记录级别都不通过。
func (l Level) Enabled(min Level) bool {
	return l >= min
}

// Severe 报告级别是否属于错误档位（Error 或 Fatal）。
// xchannel 据此选择错误输出流。
func (l Level) Severe() bool {
	return l == LevelError || l == LevelFatal
}

// MarshalText 实现 encoding.TextMarshaler 接口。
//
// 支持配置序列化场景（YAML/JSON）。
func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("xlevel: invalid level %d", int8(l))
	}
	return []byte(l.String()), nil
}

// UnmarshalText 实现 encoding.TextUnmarshaler 接口。
//
// 与 [ParseLevel] 不同，无法识别的输入返回错误且不修改接收者，
// 类型边界保持严格；宽松降级由配置面自行选择。
func (l *Level) UnmarshalText(data []byte) error {
	parsed, err := ParseLevel(string(data))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// ParseLevel 解析字符串为日志级别。
// 支持 trace/debug/info/warn/warning/error/fatal/off（大小写不敏感，
// 自动 TrimSpace）。"warning" 是 Warn 的别名。
//
// 无法识别的输入返回 (LevelInfo, 非 nil 错误)：需要严格校验的调用方
// 检查错误，接受宽松默认的调用方直接使用返回值。
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return LevelTrace, nil
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	case "fatal":
		return LevelFatal, nil
	case "off":
		return LevelOff, nil
	default:
		return LevelInfo, fmt.Errorf("xlevel: unknown level %q", s)
	}
}
