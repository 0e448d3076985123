package xchannel

import (
	"fmt"
	"strings"

	"github.com/omeyang/logkit/pkg/log/xrecord"
	"github.com/omeyang/logkit/pkg/util/xjson"
)

// DefaultDateLayout 默认时间戳版式（ISO-8601，毫秒精度）
const DefaultDateLayout = "2006-01-02T15:04:05.000Z07:00"

// Format 控制台/文件文本格式的封闭和类型
//
// 变体为 [Preset]、[Template]、[FormatFunc]。标记方法不导出，
// 包外无法新增变体。
type Format interface {
	isFormat()
}

// Preset 具名格式预设
type Preset int

const (
	// PresetSimple 默认预设：`{时间戳} [{级别}] {名称}: {消息}`
	PresetSimple Preset = iota
	// PresetDetailed 在 Simple 之上把名称加方括号，并追加错误与格式化参数
	PresetDetailed
	// PresetCompact 省略时间戳：`[{级别}] {名称}: {消息}`
	PresetCompact
	// PresetJSON 单行 JSON 对象：{timestamp, level, logger, message, args}
	PresetJSON
)

// String 返回预设的配置名
func (p Preset) String() string {
	switch p {
	case PresetSimple:
		return "SIMPLE"
	case PresetDetailed:
		return "DETAILED"
	case PresetCompact:
		return "COMPACT"
	case PresetJSON:
		return "JSON"
	default:
		return fmt.Sprintf("PRESET(%d)", int(p))
	}
}

// ParsePreset 解析预设名（大小写不敏感，容忍首尾空白）
//
// 无法识别时返回 PresetSimple 和一个非 nil 错误。
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "simple":
		return PresetSimple, nil
	case "detailed":
		return PresetDetailed, nil
	case "compact":
		return PresetCompact, nil
	case "json":
		return PresetJSON, nil
	default:
		return PresetSimple, fmt.Errorf("xchannel: unknown format preset %q", s)
	}
}

// Template 占位符模板格式
//
// 支持 {timestamp} {level} {logger} {message} {args} 五个占位符，
// 未出现的占位符被忽略，不认识的文本原样保留。
type Template string

// FormatFunc 完全自定义的格式化函数
//
// 函数收到的记录已经过预格式化反解（如适用），返回值即输出行。
type FormatFunc func(rec xrecord.Record) string

func (Preset) isFormat()     {}
func (Template) isFormat()   {}
func (FormatFunc) isFormat() {}

// jsonLine PresetJSON 的输出结构
type jsonLine struct {
	Timestamp string   `json:"timestamp"`
	Level     string   `json:"level"`
	Logger    string   `json:"logger"`
	Message   string   `json:"message"`
	Args      []string `json:"args,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// renderer 把记录渲染为输出行
//
// 零值不可用，经 newRenderer 构造：nil 格式回落到 PresetSimple，
// 空版式回落到 DefaultDateLayout，nil 参数格式化器回落到
// xrecord.FormatArg。
type renderer struct {
	format Format
	layout string
	argf   xrecord.ArgFormatter
}

func newRenderer(format Format, layout string, argf xrecord.ArgFormatter) renderer {
	if format == nil {
		format = PresetSimple
	}
	if layout == "" {
		layout = DefaultDateLayout
	}
	if argf == nil {
		argf = xrecord.FormatArg
	}
	return renderer{format: format, layout: layout, argf: argf}
}

func (r renderer) render(rec xrecord.Record) string {
	switch f := r.format.(type) {
	case Preset:
		return r.renderPreset(f, rec)
	case Template:
		return r.renderTemplate(string(f), rec)
	case FormatFunc:
		return f(rec)
	default:
		// 封闭和类型下不可达，保底按默认预设渲染
		return r.renderPreset(PresetSimple, rec)
	}
}

func (r renderer) renderPreset(p Preset, rec xrecord.Record) string {
	ts := rec.Time.Format(r.layout)
	lvl := rec.Level.String()

	switch p {
	case PresetCompact:
		return fmt.Sprintf("[%s] %s: %s", lvl, rec.LogName, rec.Message)
	case PresetDetailed:
		var b strings.Builder
		fmt.Fprintf(&b, "%s [%s] [%s] %s", ts, lvl, rec.LogName, rec.Message)
		if rec.Err != nil {
			b.WriteString(" error: ")
			b.WriteString(rec.Err.Error())
		}
		if len(rec.Args) > 0 {
			b.WriteString(" [")
			b.WriteString(strings.Join(xrecord.FormatArgs(rec.Args, r.argf), ", "))
			b.WriteString("]")
		}
		return b.String()
	case PresetJSON:
		line := jsonLine{
			Timestamp: ts,
			Level:     lvl,
			Logger:    rec.LogName,
			Message:   rec.Message,
			Args:      xrecord.FormatArgs(rec.Args, r.argf),
		}
		if rec.Err != nil {
			line.Error = rec.Err.Error()
		}
		return xjson.Display(line)
	default:
		return fmt.Sprintf("%s [%s] %s: %s", ts, lvl, rec.LogName, rec.Message)
	}
}

func (r renderer) renderTemplate(tpl string, rec xrecord.Record) string {
	replacer := strings.NewReplacer(
		"{timestamp}", rec.Time.Format(r.layout),
		"{level}", rec.Level.String(),
		"{logger}", rec.LogName,
		"{message}", rec.Message,
		"{args}", strings.Join(xrecord.FormatArgs(rec.Args, r.argf), ", "),
	)
	return replacer.Replace(tpl)
}
